package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// BrokerConn is satisfied by *amqp091.Connection.
type BrokerConn interface {
	IsClosed() bool
}

type HealthHandler struct {
	Storage        Pinger
	RabbitMQ       BrokerConn
	MailConfigured bool
	ProspectCount  func() int
	StartTime      time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Prospects    int               `json:"prospects"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(storage Pinger, rabbitMQ BrokerConn, mailConfigured bool, count func() int) *HealthHandler {
	return &HealthHandler{
		Storage:        storage,
		RabbitMQ:       rabbitMQ,
		MailConfigured: mailConfigured,
		ProspectCount:  count,
		StartTime:      time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	// Check Storage
	if h.Storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := h.Storage.Ping(ctx)
		cancel()
		if err != nil {
			deps["storage"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["storage"] = "healthy"
		}
	} else {
		deps["storage"] = "not configured"
	}

	// Check RabbitMQ
	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.MailConfigured {
		deps["mail"] = "configured"
	} else {
		deps["mail"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	count := 0
	if h.ProspectCount != nil {
		count = h.ProspectCount()
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Prospects:    count,
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Event types double as routing keys.
const (
	EventProspectLogged  = "prospect.logged"
	EventStatusChanged   = "prospect.status_changed"
	EventProspectRemoved = "prospect.removed"
)

type ProspectEvent struct {
	Type           string    `json:"type"`
	ProspectID     string    `json:"prospect_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name,omitempty"`
	Company        string    `json:"company"`
	Email          string    `json:"email"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishProspectEvent(ctx context.Context, event ProspectEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		event.Type,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}

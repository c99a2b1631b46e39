package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/prospector/internal/entity"
)

// Notifier avisa o vendedor quando uma reunião foi marcada.
type Notifier interface {
	NotifyMeetingSet(ctx context.Context, event ProspectEvent) error
}

// Consumer is the subset of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Notifier Notifier
}

func NewWorker(ch Consumer, notifier Notifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

// Start consome a fila até ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Worker encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				log.Println("⚠️ Canal do RabbitMQ fechado, worker parando")
				return nil
			}
			if err := w.HandleMessage(ctx, d.Body); err != nil {
				log.Printf("❌ [WORKER] %s", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

// HandleMessage processa um evento. Malformed bodies and failed notifications
// return an error so the delivery is dead-lettered.
func (w *Worker) HandleMessage(ctx context.Context, body []byte) error {
	var event ProspectEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("JSON inválido: %w", err)
	}

	switch event.Type {
	case EventStatusChanged:
		if event.Status != string(entity.StatusMeetingSet) || event.PreviousStatus == event.Status {
			return nil
		}
		if w.Notifier == nil {
			log.Printf("📅 Reunião marcada com %s (%s), sem notificador configurado", event.FirstName, event.Company)
			return nil
		}
		if err := w.Notifier.NotifyMeetingSet(ctx, event); err != nil {
			return fmt.Errorf("falha ao notificar reunião de %s: %w", event.ProspectID, err)
		}
		log.Printf("✅ [WORKER] Notificação de reunião enviada: %s (%s)", event.FirstName, event.Company)
		return nil

	case EventProspectLogged, EventProspectRemoved:
		log.Printf("📥 [WORKER] %s: %s %s (%s)", event.Type, event.FirstName, event.LastName, event.Company)
		return nil

	default:
		log.Printf("⚠️ Evento desconhecido: %s. Apenas logando.", event.Type)
		return nil
	}
}

package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.prospects"
	QueueName    = "q.prospect-notifications"
	DLQName      = "q.prospect-notifications.dlq"
	DLXName      = "ex.prospects.dlx" // Dead Letter Exchange
	BindingKey   = "prospect.#"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// NewRabbitMQ conecta via URL amqp:// e declara a topologia.
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar topologia: %w", err)
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(DLXName, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return err
	}

	if err := ch.QueueBind(DLQName, BindingKey, DLXName, false, nil); err != nil {
		return err
	}

	// Nack sem requeue vai para a DLX mantendo a routing key original
	args := amqp.Table{
		"x-dead-letter-exchange": DLXName,
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, args); err != nil {
		return err
	}

	return ch.QueueBind(QueueName, BindingKey, ExchangeName, false, nil)
}

func (r *RabbitMQ) Close() {
	if r.Ch != nil {
		r.Ch.Close()
	}
	if r.Conn != nil {
		r.Conn.Close()
	}
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WelcomeEmailPayload is what ingestion drops on the queue for a fresh lead
// with a usable email. Sending happens in the worker, never inside the
// ingestion request.
type WelcomeEmailPayload struct {
	LeadID string `json:"lead_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Origin string `json:"origin"` // manual, import, webhook, feed
}

type WelcomeEmailQueueInterface interface {
	PublishWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishWelcomeEmail(ctx context.Context, payload WelcomeEmailPayload) error {

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal welcome email payload: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish welcome email: %v", err)
	}

	return nil
}

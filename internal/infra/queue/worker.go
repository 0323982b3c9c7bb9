package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// WelcomeMailer is the contract the worker needs from the mail layer.
type WelcomeMailer interface {
	SendWelcome(to, name string) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  WelcomeMailer
}

func NewWorker(ch *amqp.Channel, mailer WelcomeMailer) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual is safer)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ [WORKER] failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload WelcomeEmailPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] malformed welcome email payload: %s", err)
				// Poison message. Reject without requeue so it goes to the DLQ.
				d.Nack(false, false)
				continue
			}

			log.Printf("📧 [WORKER] sending welcome email to %s (lead=%s origin=%s)",
				payload.Email, payload.LeadID, payload.Origin)

			if err := w.Mailer.SendWelcome(payload.Email, payload.Name); err != nil {
				log.Printf("❌ [WORKER] welcome email failed: %s", err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Welcome email worker waiting on queue '%s'", queueName)
	<-forever
}

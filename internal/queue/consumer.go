// Package queue also contains the background consumer that drains the
// mail.send queue and hands each job to the SMTP mailer.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Deliverer is satisfied by the SMTP mailer.  Declared here so the
// consumer does not import the mailer package (which imports this one for
// the event type).
type Deliverer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, to, subject, text, html string) error

func (f DelivererFunc) Send(ctx context.Context, to, subject, text, html string) error {
	return f(ctx, to, subject, text, html)
}

// StartMailConsumer connects to RabbitMQ, declares the durable mail.send
// queue and consumes it forever, delivering each message through d.  It
// runs a reconnect loop with exponential backoff and is meant to be
// launched in its own goroutine; it never returns under normal operation.
// Failed deliveries are nacked without requeue so one broken recipient
// cannot wedge the queue.
func StartMailConsumer(url string, d Deliverer) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("mail-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, d); err != nil {
			log.Printf("mail-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, d Deliverer) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("mail-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(MailQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(MailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for msg := range msgs {
		var ev MailRequestedEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			log.Printf("mail-consumer: bad payload: %v", err)
			_ = msg.Nack(false, false)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := d.Send(ctx, ev.To, ev.Subject, ev.Text, ev.HTML)
		cancel()
		if err != nil {
			log.Printf("mail-consumer: delivery to %s failed: %v", ev.To, err)
			_ = msg.Nack(false, false)
			continue
		}
		_ = msg.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

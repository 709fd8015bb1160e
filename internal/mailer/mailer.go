// Package mailer sends transactional mail (verification and password reset
// links).  Delivery is best effort by contract: callers log failures and
// never roll back state that was already committed.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/queue"
)

// Mail is one outbound message.
type Mail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers or enqueues outbound mail.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// New picks the delivery strategy from configuration: a broker-backed
// publisher when RABBITMQ_URL is set, otherwise inline SMTP delivery (which
// itself degrades to logging when SMTP is not configured).
func New(cfg config.Config) Mailer {
	if cfg.RabbitURL != "" {
		return &QueueMailer{URL: cfg.RabbitURL}
	}
	return &SMTPMailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
	}
}

// VerificationMail builds the account verification message for a link.
func VerificationMail(email, link string) Mail {
	return Mail{
		To:      email,
		Subject: "Your Verification Link",
		Text:    "Click the following link to verify your account: " + link,
		HTML:    fmt.Sprintf(`<p>Click the following link to verify your account:</p><a href=%q target="_blank">Click here</a>`, link),
	}
}

// ResetMail builds the password reset message for a link.
func ResetMail(email, link string) Mail {
	return Mail{
		To:      email,
		Subject: "Your Password Reset Link",
		Text:    "Click the following link to reset your password: " + link,
		HTML:    fmt.Sprintf(`<p>Click the following link to reset your password:</p><a href=%q target="_blank">Click here</a>`, link),
	}
}

// SMTPMailer delivers mail synchronously over SMTP.  When no host is
// configured it logs the message instead, which keeps local development
// working without a relay.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
}

// Send delivers one message.  The context bounds nothing here: net/smtp
// has no context support, so delivery relies on the relay's own timeouts.
func (s *SMTPMailer) Send(_ context.Context, m Mail) error {
	if s.Host == "" {
		log.Printf("mailer: no SMTP host configured, mail to %s (%s) logged only", m.To, m.Subject)
		return nil
	}

	msg := []byte("From: " + s.User + "\r\n" +
		"To: " + m.To + "\r\n" +
		"Subject: " + m.Subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" + m.HTML + "\r\n")

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.User, []string{m.To}, msg)
}

// QueueMailer publishes mail jobs to RabbitMQ instead of delivering them
// inline.  The background consumer (internal/queue) performs delivery, so
// a slow relay never blocks a request.
type QueueMailer struct {
	URL string
}

// Send publishes one MailRequestedEvent.  Messages are persistent so they
// survive broker restarts.
func (q *QueueMailer) Send(ctx context.Context, m Mail) error {
	conn, err := amqp.Dial(q.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent).  Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queue.MailQueueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(queue.MailRequestedEvent{
		To:          m.To,
		Subject:     m.Subject,
		Text:        m.Text,
		HTML:        m.HTML,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.MailQueueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

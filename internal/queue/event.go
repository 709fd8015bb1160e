// Package queue defines message payloads exchanged over the message broker.
package queue

// MailQueueName is the queue carrying outbound mail jobs.
const MailQueueName = "mail.send"

// MailRequestedEvent is published whenever a flow needs to send an email
// (verification links, password reset links).  The consumer owns actual
// delivery; publishers never wait for the SMTP round trip.
type MailRequestedEvent struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Text        string `json:"text"`
	HTML        string `json:"html"`
	RequestedAt string `json:"requested_at"`
}

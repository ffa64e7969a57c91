package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"wellspring/internal/domain"
)

// NATS subjects for donation events and message-attach retries.
const (
	SubjectDonations    = "wells.donations"
	SubjectMessageRetry = "wells.messages.retry"
)

// NATSPublisher publishes events to a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// DonationRecorded publishes the settled-donation event.
func (p *NATSPublisher) DonationRecorded(_ context.Context, evt DonationRecorded) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: encode donation: %w", err)
	}
	return p.conn.Publish(SubjectDonations, data)
}

// MessageRetry queues a message for asynchronous re-attachment.
func (p *NATSPublisher) MessageRetry(_ context.Context, msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("events: encode message: %w", err)
	}
	return p.conn.Publish(SubjectMessageRetry, data)
}

// SubscribeMessageRetry attaches a handler to the message retry subject.
// The returned subscription stays active until unsubscribed or the
// connection closes.
func SubscribeMessageRetry(conn *nats.Conn, handle func(domain.Message)) (*nats.Subscription, error) {
	return conn.Subscribe(SubjectMessageRetry, func(m *nats.Msg) {
		var msg domain.Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			return
		}
		handle(msg)
	})
}

var _ Publisher = (*NATSPublisher)(nil)

package infrastructure

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// MessagePublisher defines the interface for publishing messages to a message bus
type MessagePublisher interface {
	// Publish publishes a message to the specified subject
	Publish(ctx context.Context, subject string, data []byte) error
}

// NoopMessagePublisher drops every message. Used when NATS is not configured.
type NoopMessagePublisher struct{}

// NewNoopMessagePublisher creates a new no-op message publisher
func NewNoopMessagePublisher() *NoopMessagePublisher {
	return &NoopMessagePublisher{}
}

// Publish does nothing with the message
func (n *NoopMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	log.WithField("subject", subject).Trace("Dropping event, NATS disabled")
	return nil
}

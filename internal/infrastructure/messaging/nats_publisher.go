// Package messaging delivers outbox events to NATS.
//
// Subjects follow "coinvault.events.<event_type>", e.g.
// "coinvault.events.wallet.credited". Delivery is at-least-once; consumers
// must dedupe on the event id.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/avelora/coinvault/internal/application/ports"
	"github.com/avelora/coinvault/internal/domain/events"
)

// Compile-time check
var _ ports.EventPublisher = (*NATSPublisher)(nil)

const subjectPrefix = "coinvault.events."

// Config holds the NATS connection settings.
type Config struct {
	URL  string
	Name string
}

// DefaultConfig returns settings for local development.
func DefaultConfig() Config {
	return Config{URL: nats.DefaultURL, Name: "coinvault"}
}

// NATSPublisher implements ports.EventPublisher on a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to NATS with reconnect enabled.
func NewNATSPublisher(cfg Config) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish delivers one domain event.
func (p *NATSPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize event %s: %w", event.EventType(), err)
	}
	return p.publish(event.EventType(), payload)
}

// PublishBatch delivers several events; the first failure aborts the batch.
func (p *NATSPublisher) PublishBatch(ctx context.Context, eventsList []events.DomainEvent) error {
	for _, event := range eventsList {
		if err := p.Publish(ctx, event); err != nil {
			return fmt.Errorf("publish event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// PublishMessage delivers a raw outbox message. Used by the relay, which
// already holds the serialized payload.
func (p *NATSPublisher) PublishMessage(ctx context.Context, msg ports.OutboxMessage) error {
	return p.publish(msg.EventType, msg.Payload)
}

func (p *NATSPublisher) publish(eventType string, payload []byte) error {
	if err := p.conn.Publish(subjectPrefix+eventType, payload); err != nil {
		return fmt.Errorf("publish to %s%s: %w", subjectPrefix, eventType, err)
	}
	return nil
}

// Ping reports whether the connection is currently up. Used by readiness
// probes; NATS reconnects on its own, so a failure here is transient.
func (p *NATSPublisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats connection is down (status %s)", p.conn.Status())
	}
	return nil
}

// Close drains the connection so queued messages flush before shutdown.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

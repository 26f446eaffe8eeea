// Package ports - event publishing contracts.
//
// The write path never publishes directly: the engine saves events to the
// outbox inside the store transaction, and a background relay delivers them.
// EventPublisher abstracts the broker for the relay and for tests.
//
// Pattern: Transactional Outbox + Publisher
package ports

import (
	"context"
	"time"

	"github.com/avelora/coinvault/internal/domain/events"
	"github.com/google/uuid"
)

// EventPublisher is the contract for delivering domain events to subscribers.
//
// Delivery is at-least-once; consumers must be idempotent.
type EventPublisher interface {
	// Publish delivers a single event.
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch delivers several events in one call. If any event fails,
	// the whole batch fails.
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// OutboxMessage is one persisted event awaiting delivery.
type OutboxMessage struct {
	ID          uuid.UUID
	EventType   string
	AggregateID uuid.UUID
	Payload     []byte
	CreatedAt   time.Time
}

// OutboxRepository is the contract for the Transactional Outbox pattern.
//
// Save runs inside the same store transaction as the business operation, so
// "ledger committed" and "event queued" are a single atomic fact. The relay
// polls FindUnpublished and marks each message published or failed.
type OutboxRepository interface {
	// Save stores an event in the outbox table.
	// Must run in the same transaction as the business operation.
	Save(ctx context.Context, event events.DomainEvent) error

	// FindUnpublished returns messages not yet delivered, oldest first.
	FindUnpublished(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkPublished records a successful delivery.
	MarkPublished(ctx context.Context, messageID uuid.UUID) error

	// MarkFailed records a delivery failure with the reason.
	// The message stays eligible for a later retry.
	MarkFailed(ctx context.Context, messageID uuid.UUID, reason string) error
}

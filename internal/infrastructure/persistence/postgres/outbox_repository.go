// Package postgres - OutboxRepository for the Transactional Outbox pattern.
//
// The engine saves events in the same transaction as the balance movement;
// a background relay polls unpublished rows and delivers them to the broker.
// Events are therefore exactly as durable as the ledger itself.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelora/coinvault/internal/application/ports"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/events"
)

// Compile-time check
var _ ports.OutboxRepository = (*OutboxRepository)(nil)

// OutboxRepository implements ports.OutboxRepository.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates the repository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Save stores an event in the outbox. Must run inside the same unit-of-work
// transaction as the business operation it describes.
func (r *OutboxRepository) Save(ctx context.Context, event events.DomainEvent) error {
	q := querierFrom(ctx, r.pool)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize event %s: %w", event.EventType(), err)
	}

	query := `
		INSERT INTO outbox (id, event_type, aggregate_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, 'PENDING', $5)
	`

	_, err = q.Exec(ctx, query,
		event.EventID(),
		event.EventType(),
		event.AggregateID(),
		payload,
		event.OccurredAt(),
	)
	if err != nil {
		return fmt.Errorf("save event to outbox: %w", mapStoreError(err))
	}

	return nil
}

// FindUnpublished returns undelivered messages oldest-first. SKIP LOCKED
// lets several relay instances poll without stepping on each other.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		SELECT id, event_type, aggregate_id, payload, created_at
		FROM outbox
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("find unpublished events: %w", mapStoreError(err))
	}
	defer rows.Close()

	var messages []ports.OutboxMessage
	for rows.Next() {
		var msg ports.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.EventType, &msg.AggregateID, &msg.Payload, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", mapStoreError(err))
	}

	return messages, nil
}

// MarkPublished records a successful delivery.
func (r *OutboxRepository) MarkPublished(ctx context.Context, messageID uuid.UUID) error {
	q := querierFrom(ctx, r.pool)

	query := `
		UPDATE outbox
		SET status = 'PUBLISHED', published_at = $2
		WHERE id = $1 AND status = 'PENDING'
	`

	result, err := q.Exec(ctx, query, messageID, time.Now())
	if err != nil {
		return fmt.Errorf("mark event published: %w", mapStoreError(err))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("outbox message %s not pending: %w", messageID, domainErrors.ErrEntityNotFound)
	}

	return nil
}

// MarkFailed records a delivery failure. The row stays retryable; the relay
// resets it to PENDING on the next sweep.
func (r *OutboxRepository) MarkFailed(ctx context.Context, messageID uuid.UUID, reason string) error {
	q := querierFrom(ctx, r.pool)

	query := `
		UPDATE outbox
		SET status = 'FAILED',
		    failed_at = $2,
		    last_error = $3,
		    retry_count = retry_count + 1
		WHERE id = $1
	`

	if _, err := q.Exec(ctx, query, messageID, time.Now(), reason); err != nil {
		return fmt.Errorf("mark event failed: %w", mapStoreError(err))
	}

	return nil
}

// RequeueFailed flips FAILED messages under the retry cap back to PENDING.
// Called periodically by the relay.
func (r *OutboxRepository) RequeueFailed(ctx context.Context, maxRetries int) (int64, error) {
	q := querierFrom(ctx, r.pool)

	query := `
		UPDATE outbox
		SET status = 'PENDING', failed_at = NULL, last_error = NULL
		WHERE status = 'FAILED' AND retry_count < $1
	`

	result, err := q.Exec(ctx, query, maxRetries)
	if err != nil {
		return 0, fmt.Errorf("requeue failed events: %w", mapStoreError(err))
	}

	return result.RowsAffected(), nil
}

// CleanupPublished deletes delivered messages older than the retention
// window. Maintenance only; never touches PENDING or FAILED rows.
func (r *OutboxRepository) CleanupPublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	q := querierFrom(ctx, r.pool)

	cutoff := time.Now().Add(-olderThan)

	result, err := q.Exec(ctx, "DELETE FROM outbox WHERE status = 'PUBLISHED' AND published_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup published events: %w", mapStoreError(err))
	}

	return result.RowsAffected(), nil
}

package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/avelora/coinvault/internal/application/ports"
)

// MessagePublisher is what the relay needs from the broker side: delivery of
// already-serialized outbox messages.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, msg ports.OutboxMessage) error
}

// FailedRequeuer is implemented by outbox repositories that can move FAILED
// messages back to PENDING for another delivery attempt.
type FailedRequeuer interface {
	RequeueFailed(ctx context.Context, maxRetries int) (int64, error)
}

// RelayConfig tunes the outbox relay loop.
type RelayConfig struct {
	PollInterval    time.Duration
	BatchSize       int
	MaxRetries      int
	RequeueInterval time.Duration
}

// DefaultRelayConfig returns the standard relay settings.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		PollInterval:    time.Second,
		BatchSize:       100,
		MaxRetries:      5,
		RequeueInterval: time.Minute,
	}
}

// OutboxRelay polls the outbox and delivers pending messages to the broker.
// It is the second half of the Transactional Outbox pattern: the engine
// writes events with the ledger, the relay delivers them afterwards.
//
// Multiple relay instances are safe: FindUnpublished uses SKIP LOCKED.
type OutboxRelay struct {
	outbox    ports.OutboxRepository
	publisher MessagePublisher
	cfg       RelayConfig
	logger    *slog.Logger
}

// NewOutboxRelay creates the relay.
func NewOutboxRelay(outbox ports.OutboxRepository, publisher MessagePublisher, cfg RelayConfig, logger *slog.Logger) *OutboxRelay {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultRelayConfig().PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultRelayConfig().BatchSize
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run polls until the context is cancelled. Intended to run in its own
// goroutine next to the HTTP server.
func (r *OutboxRelay) Run(ctx context.Context) {
	r.logger.InfoContext(ctx, "outbox relay started",
		slog.Duration("poll_interval", r.cfg.PollInterval),
		slog.Int("batch_size", r.cfg.BatchSize),
	)

	poll := time.NewTicker(r.cfg.PollInterval)
	defer poll.Stop()

	var requeue <-chan time.Time
	if r.cfg.RequeueInterval > 0 {
		t := time.NewTicker(r.cfg.RequeueInterval)
		defer t.Stop()
		requeue = t.C
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-poll.C:
			if err := r.DeliverBatch(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox poll failed", slog.String("error", err.Error()))
			}
		case <-requeue:
			r.requeueFailed(ctx)
		}
	}
}

// DeliverBatch publishes one batch of pending messages. Exported so tests
// and one-shot maintenance commands can drive the relay without the loop.
func (r *OutboxRelay) DeliverBatch(ctx context.Context) error {
	messages, err := r.outbox.FindUnpublished(ctx, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if err := r.publisher.PublishMessage(ctx, msg); err != nil {
			r.logger.WarnContext(ctx, "event delivery failed",
				slog.String("message_id", msg.ID.String()),
				slog.String("event_type", msg.EventType),
				slog.String("error", err.Error()),
			)
			if markErr := r.outbox.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
				r.logger.ErrorContext(ctx, "mark failed errored",
					slog.String("message_id", msg.ID.String()),
					slog.String("error", markErr.Error()),
				)
			}
			continue
		}

		if err := r.outbox.MarkPublished(ctx, msg.ID); err != nil {
			// The message will be delivered again; consumers dedupe on id.
			r.logger.ErrorContext(ctx, "mark published errored",
				slog.String("message_id", msg.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}

// requeueFailed gives FAILED messages under the retry cap another chance.
func (r *OutboxRelay) requeueFailed(ctx context.Context) {
	requeuer, ok := r.outbox.(FailedRequeuer)
	if !ok {
		return
	}

	count, err := requeuer.RequeueFailed(ctx, r.cfg.MaxRetries)
	if err != nil {
		r.logger.ErrorContext(ctx, "requeue failed errored", slog.String("error", err.Error()))
		return
	}
	if count > 0 {
		r.logger.InfoContext(ctx, "requeued failed events", slog.Int64("count", count))
	}
}

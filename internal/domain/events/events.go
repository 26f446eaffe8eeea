// Package events defines domain events that represent significant business occurrences.
// Events are immutable facts about what happened in the past.
//
// Events are written to the outbox table inside the same store transaction as
// the ledger movement and relayed to subscribers afterwards. Idempotent
// replays of an operation emit no events: the gate returns the cached record
// before the engine runs.
//
// Pattern: Domain Events (Observer Pattern foundation)
package events

import (
	"time"

	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events.
// All events must have an ID, timestamp, and type.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID // ID of the entity that raised this event
}

// BaseEvent provides common fields for all events.
// Embedded in specific event types to avoid duplication (DRY).
type BaseEvent struct {
	eventID     uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID uuid.UUID
}

func newBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		occurredAt:  time.Now(),
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID {
	return e.eventID
}

func (e BaseEvent) EventType() string {
	return e.eventType
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

func (e BaseEvent) AggregateID() uuid.UUID {
	return e.aggregateID
}

// Event Types (constants for type checking)
const (
	EventTypeWalletCredited       = "wallet.credited"
	EventTypeWalletDebited        = "wallet.debited"
	EventTypeTransactionCompleted = "transaction.completed"
)

// ===== Wallet Events =====

// WalletCredited is raised when funds are added to a wallet.
// Consumers might send notifications or refresh read models.
type WalletCredited struct {
	BaseEvent
	UserID        uuid.UUID           `json:"user_id"`
	AssetTypeID   int32               `json:"asset_type_id"`
	Amount        valueobjects.Amount `json:"amount"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	BalanceAfter  valueobjects.Amount `json:"balance_after"`
}

func NewWalletCredited(
	userID uuid.UUID,
	assetTypeID int32,
	amount valueobjects.Amount,
	transactionID uuid.UUID,
	balanceAfter valueobjects.Amount,
) *WalletCredited {
	return &WalletCredited{
		BaseEvent:     newBaseEvent(EventTypeWalletCredited, transactionID),
		UserID:        userID,
		AssetTypeID:   assetTypeID,
		Amount:        amount,
		TransactionID: transactionID,
		BalanceAfter:  balanceAfter,
	}
}

// WalletDebited is raised when funds are removed from a wallet.
type WalletDebited struct {
	BaseEvent
	UserID        uuid.UUID           `json:"user_id"`
	AssetTypeID   int32               `json:"asset_type_id"`
	Amount        valueobjects.Amount `json:"amount"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	BalanceAfter  valueobjects.Amount `json:"balance_after"`
}

func NewWalletDebited(
	userID uuid.UUID,
	assetTypeID int32,
	amount valueobjects.Amount,
	transactionID uuid.UUID,
	balanceAfter valueobjects.Amount,
) *WalletDebited {
	return &WalletDebited{
		BaseEvent:     newBaseEvent(EventTypeWalletDebited, transactionID),
		UserID:        userID,
		AssetTypeID:   assetTypeID,
		Amount:        amount,
		TransactionID: transactionID,
		BalanceAfter:  balanceAfter,
	}
}

// ===== Transaction Events =====

// TransactionCompleted is raised when a transaction completes successfully.
// This might trigger webhooks to game services, analytics updates, etc.
type TransactionCompleted struct {
	BaseEvent
	TransactionID uuid.UUID           `json:"transaction_id"`
	UserID        uuid.UUID           `json:"user_id"`
	Kind          string              `json:"kind"`
	AssetCode     string              `json:"asset_code"`
	Amount        valueobjects.Amount `json:"amount"`
	CompletedAt   time.Time           `json:"completed_at"`
}

func NewTransactionCompleted(
	transactionID, userID uuid.UUID,
	kind string,
	assetCode string,
	amount valueobjects.Amount,
) *TransactionCompleted {
	return &TransactionCompleted{
		BaseEvent:     newBaseEvent(EventTypeTransactionCompleted, transactionID),
		TransactionID: transactionID,
		UserID:        userID,
		Kind:          kind,
		AssetCode:     assetCode,
		Amount:        amount,
		CompletedAt:   time.Now(),
	}
}

// EventStore is a simple in-memory collector for events raised during one
// engine run. The engine drains it into the outbox before commit.
type EventStore struct {
	events []DomainEvent
}

// NewEventStore creates a new event store.
func NewEventStore() *EventStore {
	return &EventStore{
		events: make([]DomainEvent, 0),
	}
}

// Add appends an event to the store.
func (s *EventStore) Add(event DomainEvent) {
	s.events = append(s.events, event)
}

// GetAll returns all collected events.
func (s *EventStore) GetAll() []DomainEvent {
	return s.events
}

// Clear removes all events from the store.
func (s *EventStore) Clear() {
	s.events = make([]DomainEvent, 0)
}

// Count returns the number of events in the store.
func (s *EventStore) Count() int {
	return len(s.events)
}

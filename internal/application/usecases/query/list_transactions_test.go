package query

import (
	"context"
	"errors"
	"testing"

	"github.com/avelora/coinvault/internal/application/dtos"
	"github.com/avelora/coinvault/internal/domain/entities"
	domainErrors "github.com/avelora/coinvault/internal/domain/errors"
	"github.com/avelora/coinvault/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// TestListTransactions_Page checks the happy-path page assembly
func TestListTransactions_Page(t *testing.T) {
	userID := uuid.New()
	var gotLimit, gotOffset int
	repo := &mockTransactionRepo{
		listByUserFunc: func(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
			gotLimit, gotOffset = limit, offset
			tx, _ := entities.NewTransaction("k1", entities.TransactionKindTopUp, userID, 1, valueobjects.MustAmount("10.00"), nil)
			return []*entities.Transaction{tx}, nil
		},
		countByUserFunc: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			return 7, nil
		},
	}
	uc := NewListTransactionsUseCase(repo)

	page, err := uc.Execute(context.Background(), dtos.ListTransactionsQuery{
		UserID: userID.String(),
		Limit:  5,
		Offset: 10,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	if gotLimit != 5 || gotOffset != 10 {
		t.Errorf("repository window = (%d, %d), want (5, 10)", gotLimit, gotOffset)
	}
	if len(page.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(page.Items))
	}
	if page.Total != 7 {
		t.Errorf("Total = %d, want 7", page.Total)
	}
	if page.Limit != 5 || page.Offset != 10 {
		t.Errorf("page window = (%d, %d), want (5, 10)", page.Limit, page.Offset)
	}
}

// TestListTransactions_DefaultLimit checks that a zero limit picks the default
func TestListTransactions_DefaultLimit(t *testing.T) {
	var gotLimit int
	repo := &mockTransactionRepo{
		listByUserFunc: func(ctx context.Context, uid uuid.UUID, limit, offset int) ([]*entities.Transaction, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	uc := NewListTransactionsUseCase(repo)

	page, err := uc.Execute(context.Background(), dtos.ListTransactionsQuery{
		UserID: uuid.New().String(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}

	if gotLimit != defaultPageLimit {
		t.Errorf("limit = %d, want %d", gotLimit, defaultPageLimit)
	}
	if page.Items == nil {
		t.Error("Items must be non-nil even for an empty page")
	}
}

// TestListTransactions_InvalidWindow checks rejection of bad page windows
func TestListTransactions_InvalidWindow(t *testing.T) {
	uc := NewListTransactionsUseCase(&mockTransactionRepo{})
	userID := uuid.New().String()

	tests := []struct {
		name  string
		query dtos.ListTransactionsQuery
	}{
		{"malformed user id", dtos.ListTransactionsQuery{UserID: "nope"}},
		{"negative limit", dtos.ListTransactionsQuery{UserID: userID, Limit: -1}},
		{"oversized limit", dtos.ListTransactionsQuery{UserID: userID, Limit: maxPageLimit + 1}},
		{"negative offset", dtos.ListTransactionsQuery{UserID: userID, Offset: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.query)

			if !errors.Is(err, domainErrors.ErrInvalidArgument) {
				t.Errorf("Execute() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

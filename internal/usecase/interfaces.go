package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/olek/paywire/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Create inserts a new account and assigns its identity.
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetByIDsForUpdate acquires exclusive row locks in the order of ids and
	// returns the locked state. Locks are released when tx ends.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	// AdjustBalance applies a signed delta to an already-locked account and
	// returns the resulting balance. Fails with domain.ErrBalanceInvariant
	// if the result would be negative.
	AdjustBalance(ctx context.Context, tx Transaction, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	// ListByAccount returns entries where the account is sender or receiver,
	// newest first.
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error)
	// ListInconsistent returns IDs of ledger rows violating the fee
	// invariants for the given commission rate.
	ListInconsistent(ctx context.Context, rate decimal.Decimal) ([]string, error)
}

// OutboxRepository defines data access for staged events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs for ledger rows and events.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

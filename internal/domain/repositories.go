package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountRepository defines the account store contract.
// Balance changes always travel through Save with a fully-formed Account
// value; the store performs no partial-field patches.
type AccountRepository interface {
	// GetByID retrieves an account by its unique identifier.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByNumber retrieves an account by its account number.
	// Returns ErrAccountNotFound if the account doesn't exist.
	GetByNumber(ctx context.Context, number string) (*Account, error)

	// Save upserts the account and returns the persisted form.
	Save(ctx context.Context, account *Account) (*Account, error)

	// Lock acquires a lock on the account for the duration of the transaction
	// and returns the locked snapshot. Must be called within a transaction
	// context. Returns ErrUnavailable if the lock wait exceeds its bound.
	Lock(ctx context.Context, id uuid.UUID) (*Account, error)

	// ListByUser returns all accounts owned by the given user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Account, error)
}

// TransactionRepository defines the append-only transaction log contract.
// Records are immutable once appended; there is no update or delete.
// All listings are ordered by posting timestamp descending.
type TransactionRepository interface {
	// Append persists a new transaction record, assigning identity and
	// timestamp if absent, and returns the persisted form.
	Append(ctx context.Context, transaction *Transaction) (*Transaction, error)

	// ListByAccount returns every transaction posted against the account.
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]Transaction, error)

	// ListByAccountBetween returns transactions posted within the inclusive
	// [start, end] range, optionally filtered by type (nil means all types).
	ListByAccountBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time, txType *TransactionType) ([]Transaction, error)

	// ListLastN returns the n most recent transactions for the account.
	ListLastN(ctx context.Context, accountID uuid.UUID, n int) ([]Transaction, error)
}

// UserRepository defines the read-only user lookup used for actor and
// ownership references.
type UserRepository interface {
	// GetByID retrieves a user by its unique identifier.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// TransactionManager defines the unit-of-work boundary. The service layer
// uses it without being coupled to a specific database implementation.
type TransactionManager interface {
	// WithTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back and no write
	// performed inside it survives. Otherwise the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher publishes domain events to external systems (e.g. RabbitMQ).
type EventPublisher interface {
	PublishTransactionPosted(ctx context.Context, transaction *Transaction) error
}

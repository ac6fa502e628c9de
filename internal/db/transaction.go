package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/ledger-service/internal/domain"
)

// pgLockNotAvailable is the SQLSTATE raised when a lock wait exceeds
// lock_timeout.
const pgLockNotAvailable = "55P03"

// txKey is the key type for storing a transaction in context.
type txKey struct{}

// TransactionManager implements domain.TransactionManager using PostgreSQL.
// Every unit of work runs with a bounded lock wait so that contended rows
// surface as a retryable condition instead of hanging the caller.
type TransactionManager struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTransactionManager creates a new TransactionManager.
// lockTimeout bounds row-lock waits within each transaction; zero or negative
// falls back to 3 seconds.
func NewTransactionManager(pool *pgxpool.Pool, lockTimeout time.Duration) *TransactionManager {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &TransactionManager{
		pool:        pool,
		lockTimeout: lockTimeout,
	}
}

// WithTransaction executes fn within a database transaction.
// If fn returns an error, the transaction is rolled back and nothing written
// inside it survives. Otherwise the transaction is committed.
// The transaction is stored in the context and picked up by the repositories.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			// Rollback failure must not override the original error.
			fmt.Printf("failed to rollback transaction: %v\n", err)
		}
	}()

	// SET LOCAL scopes the bound to this transaction only.
	timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", tm.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, timeout); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// getTx retrieves the transaction from context.
// If no transaction is found, returns nil.
func getTx(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// mapLockError translates a lock_timeout expiry into domain.ErrUnavailable.
func mapLockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return domain.ErrUnavailable
	}
	return err
}

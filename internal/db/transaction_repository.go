package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. The table is append-only: no update or delete statement exists
// in this package, which is what makes the log auditable.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool: pool,
	}
}

const transactionColumns = `id, account_id, type, amount::text, description, user_id, created_at`

// listOrder breaks timestamp ties by id so repeated reads return
// equal-timestamp rows (a transfer's two legs) in the same order. Ids are
// random, so which leg comes first is arbitrary but fixed.
const listOrder = ` ORDER BY created_at DESC, id DESC`

// Append persists a new transaction record, assigning identity and timestamp
// if absent.
func (r *TransactionRepository) Append(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	record := *transaction
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO transactions (id, account_id, type, amount, description, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	args := []any{
		record.ID,
		record.AccountID,
		string(record.Type),
		record.Amount.StringFixed(domain.AmountScale),
		record.Description,
		record.UserID,
		record.CreatedAt,
	}

	var err error
	if tx := getTx(ctx); tx != nil {
		_, err = tx.Exec(ctx, query, args...)
	} else {
		_, err = r.pool.Exec(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	return &record, nil
}

// ListByAccount returns every transaction posted against the account, most
// recent first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1` + listOrder
	return r.list(ctx, query, accountID)
}

// ListByAccountBetween returns transactions posted within the inclusive
// [start, end] range, optionally narrowed to one type.
func (r *TransactionRepository) ListByAccountBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time, txType *domain.TransactionType) ([]domain.Transaction, error) {
	if txType != nil {
		query := `
			SELECT ` + transactionColumns + `
			FROM transactions
			WHERE account_id = $1 AND created_at BETWEEN $2 AND $3 AND type = $4` + listOrder
		return r.list(ctx, query, accountID, start, end, string(*txType))
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1 AND created_at BETWEEN $2 AND $3` + listOrder
	return r.list(ctx, query, accountID, start, end)
}

// ListLastN returns the n most recent transactions for the account.
func (r *TransactionRepository) ListLastN(ctx context.Context, accountID uuid.UUID, n int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = $1` + listOrder + `
		LIMIT $2`
	return r.list(ctx, query, accountID, n)
}

// list runs a multi-row transaction query.
func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	var rows pgx.Rows
	var err error
	if tx := getTx(ctx); tx != nil {
		rows, err = tx.Query(ctx, query, args...)
	} else {
		rows, err = r.pool.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	return transactions, nil
}

// scanTransaction scans one transaction row.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var txType string
	var amount string

	err := row.Scan(
		&transaction.ID,
		&transaction.AccountID,
		&txType,
		&amount,
		&transaction.Description,
		&transaction.UserID,
		&transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	transaction.Type = domain.TransactionType(txType)
	transaction.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return &transaction, nil
}

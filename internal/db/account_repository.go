package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool: pool,
	}
}

const accountColumns = `id, number, name, type, balance::text, user_id, created_at, updated_at`

// GetByID retrieves an account by its unique identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`
	return r.queryOne(ctx, query, id)
}

// GetByNumber retrieves an account by its account number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE number = $1
	`
	return r.queryOne(ctx, query, number)
}

// Lock acquires a pessimistic lock on the account row for the duration of the
// transaction and returns the locked snapshot. Must be called within a
// transaction context; the lock wait is bounded by the transaction manager's
// lock_timeout and surfaces as domain.ErrUnavailable when exceeded.
func (r *AccountRepository) Lock(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	return r.queryOne(ctx, query, id)
}

// Save upserts the account as a full row and returns the persisted form.
// There are no partial-field patches: the caller always provides the complete
// account value, which keeps lost updates impossible to express.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (id, number, name, type, balance, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET number     = EXCLUDED.number,
		    name       = EXCLUDED.name,
		    type       = EXCLUDED.type,
		    balance    = EXCLUDED.balance,
		    user_id    = EXCLUDED.user_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + accountColumns + `

	`

	var row pgx.Row
	args := []any{
		account.ID,
		account.Number,
		account.Name,
		string(account.Type),
		account.Balance.StringFixed(domain.AmountScale),
		account.UserID,
		account.CreatedAt,
		account.UpdatedAt,
	}
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query, args...)
	} else {
		row = r.pool.QueryRow(ctx, query, args...)
	}

	saved, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return saved, nil
}

// ListByUser returns all accounts owned by the given user, oldest first.
func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at
	`

	var rows pgx.Rows
	var err error
	if tx := getTx(ctx); tx != nil {
		rows, err = tx.Query(ctx, query, userID)
	} else {
		rows, err = r.pool.Query(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	return accounts, nil
}

// queryOne runs a single-row account query with the shared error mapping.
func (r *AccountRepository) queryOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var row pgx.Row
	if tx := getTx(ctx); tx != nil {
		row = tx.QueryRow(ctx, query, arg)
	} else {
		row = r.pool.QueryRow(ctx, query, arg)
	}

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		if mapped := mapLockError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// scanAccount scans one account row, converting the numeric balance from its
// text form into a decimal.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	var accountType string
	var balance string

	err := row.Scan(
		&account.ID,
		&account.Number,
		&account.Name,
		&accountType,
		&balance,
		&account.UserID,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Type = domain.AccountType(accountType)
	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance %q: %w", balance, err)
	}

	return &account, nil
}

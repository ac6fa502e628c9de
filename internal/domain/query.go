package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QueryService provides read-only access to an account's transaction history.
// It never mutates state. Every query resolves the account first so that a
// missing account yields ErrAccountNotFound instead of an empty history.
type QueryService struct {
	accounts AccountRepository
	log      TransactionRepository
}

// NewQueryService creates a new QueryService.
func NewQueryService(accounts AccountRepository, log TransactionRepository) *QueryService {
	return &QueryService{
		accounts: accounts,
		log:      log,
	}
}

// History returns the full transaction history of the account, most recent
// first.
func (s *QueryService) History(ctx context.Context, accountID uuid.UUID) ([]Transaction, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	transactions, err := s.log.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// HistoryWindow returns the account's transactions posted within the
// inclusive [start, end] range, most recent first. A non-nil txType narrows
// the result to that type.
func (s *QueryService) HistoryWindow(ctx context.Context, accountID uuid.UUID, start, end time.Time, txType *TransactionType) ([]Transaction, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	transactions, err := s.log.ListByAccountBetween(ctx, accountID, start, end, txType)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions in window: %w", err)
	}
	return transactions, nil
}

// LastN returns the n most recent transactions of the account.
func (s *QueryService) LastN(ctx context.Context, accountID uuid.UUID, n int) ([]Transaction, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, n)
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	transactions, err := s.log.ListLastN(ctx, accountID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list last transactions: %w", err)
	}
	return transactions, nil
}

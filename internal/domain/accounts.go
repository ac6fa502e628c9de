package domain

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// accountNumberLength matches the bank's 11-digit account number format.
const accountNumberLength = 11

// AccountService handles account opening and lookup. Balances are untouched
// here; only the ledger engine mutates them.
type AccountService struct {
	accounts AccountRepository
	users    UserRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts AccountRepository, users UserRepository) *AccountService {
	return &AccountService{
		accounts: accounts,
		users:    users,
	}
}

// Open creates a new account for an existing user with a zero balance and a
// generated unique account number.
func (s *AccountService) Open(ctx context.Context, userID uuid.UUID, name string, accountType AccountType) (*Account, error) {
	if accountType != AccountTypeChecking && accountType != AccountTypeSavings {
		return nil, fmt.Errorf("unknown account type %q", accountType)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	number, err := s.generateUniqueNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account number: %w", err)
	}

	account, err := s.accounts.Save(ctx, NewAccount(user.ID, number, name, accountType))
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by its unique identifier.
func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// GetByNumber retrieves an account by its account number.
func (s *AccountService) GetByNumber(ctx context.Context, number string) (*Account, error) {
	return s.accounts.GetByNumber(ctx, number)
}

// ListByUser returns all accounts owned by the given user.
func (s *AccountService) ListByUser(ctx context.Context, userID uuid.UUID) ([]Account, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.accounts.ListByUser(ctx, userID)
}

// generateUniqueNumber draws random account numbers until one is free.
func (s *AccountService) generateUniqueNumber(ctx context.Context) (string, error) {
	for {
		number := generateAccountNumber()
		_, err := s.accounts.GetByNumber(ctx, number)
		if errors.Is(err, ErrAccountNotFound) {
			return number, nil
		}
		if err != nil {
			return "", err
		}
		// Number taken, draw again.
	}
}

// generateAccountNumber produces a random string of decimal digits.
func generateAccountNumber() string {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		digits[i] = byte('0' + rand.IntN(10))
	}
	return string(digits)
}

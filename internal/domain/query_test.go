package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/ledger-service/internal/domain"
)

type queryFixture struct {
	store   *memStore
	queries *domain.QueryService
}

func newQueryFixture() *queryFixture {
	store := newMemStore()
	return &queryFixture{
		store:   store,
		queries: domain.NewQueryService(&memAccounts{store: store}, &memLog{store: store}),
	}
}

// seedTransactions posts count alternating deposit/withdrawal records one
// minute apart, oldest first, starting at base.
func (f *queryFixture) seedTransactions(accountID uuid.UUID, base time.Time, count int) {
	for i := 0; i < count; i++ {
		txType := domain.TransactionTypeDeposit
		value := decimal.NewFromInt(int64(i + 1))
		if i%2 == 1 {
			txType = domain.TransactionTypeWithdrawal
			value = value.Neg()
		}
		f.store.log = append(f.store.log, domain.Transaction{
			ID:        uuid.New(),
			AccountID: accountID,
			Type:      txType,
			Amount:    value,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func (f *queryFixture) seedAccount() uuid.UUID {
	account := domain.NewAccount(uuid.New(), "10000000002", "query", domain.AccountTypeSavings)
	f.store.putAccount(*account)
	return account.ID
}

func assertDescending(t *testing.T, transactions []domain.Transaction) {
	t.Helper()
	for i := 1; i < len(transactions); i++ {
		if transactions[i].CreatedAt.After(transactions[i-1].CreatedAt) {
			t.Fatalf("transactions not in descending order at index %d", i)
		}
	}
}

func TestHistory(t *testing.T) {
	f := newQueryFixture()
	accountID := f.seedAccount()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.seedTransactions(accountID, base, 5)

	// Records against another account must not leak in.
	otherID := f.seedAccount()
	f.seedTransactions(otherID, base, 3)

	transactions, err := f.queries.History(context.Background(), accountID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if len(transactions) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(transactions))
	}
	assertDescending(t, transactions)
	if !transactions[0].CreatedAt.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("expected most recent first, got %v", transactions[0].CreatedAt)
	}
}

func TestHistory_AccountNotFound(t *testing.T) {
	f := newQueryFixture()

	_, err := f.queries.History(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestHistoryWindow(t *testing.T) {
	f := newQueryFixture()
	accountID := f.seedAccount()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.seedTransactions(accountID, base, 10)

	// The range is inclusive on both ends.
	start := base.Add(2 * time.Minute)
	end := base.Add(6 * time.Minute)

	transactions, err := f.queries.HistoryWindow(context.Background(), accountID, start, end, nil)
	if err != nil {
		t.Fatalf("HistoryWindow failed: %v", err)
	}
	if len(transactions) != 5 {
		t.Fatalf("expected 5 transactions in window, got %d", len(transactions))
	}
	assertDescending(t, transactions)
	for _, tx := range transactions {
		if tx.CreatedAt.Before(start) || tx.CreatedAt.After(end) {
			t.Errorf("transaction at %v outside window", tx.CreatedAt)
		}
	}
}

func TestHistoryWindow_TypeFilter(t *testing.T) {
	f := newQueryFixture()
	accountID := f.seedAccount()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.seedTransactions(accountID, base, 10)

	txType := domain.TransactionTypeWithdrawal
	transactions, err := f.queries.HistoryWindow(context.Background(), accountID, base, base.Add(time.Hour), &txType)
	if err != nil {
		t.Fatalf("HistoryWindow failed: %v", err)
	}

	if len(transactions) != 5 {
		t.Fatalf("expected 5 withdrawals, got %d", len(transactions))
	}
	for _, tx := range transactions {
		if tx.Type != domain.TransactionTypeWithdrawal {
			t.Errorf("expected only withdrawals, got %s", tx.Type)
		}
		if !tx.Amount.IsNegative() {
			t.Errorf("withdrawal amount %s is not negative", domain.FormatAmount(tx.Amount))
		}
	}
}

func TestLastN(t *testing.T) {
	f := newQueryFixture()
	accountID := f.seedAccount()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.seedTransactions(accountID, base, 25)

	transactions, err := f.queries.LastN(context.Background(), accountID, 20)
	if err != nil {
		t.Fatalf("LastN failed: %v", err)
	}

	if len(transactions) != 20 {
		t.Fatalf("expected exactly 20 transactions, got %d", len(transactions))
	}
	assertDescending(t, transactions)
	// The 5 oldest records fall off.
	if !transactions[len(transactions)-1].CreatedAt.Equal(base.Add(5 * time.Minute)) {
		t.Errorf("expected oldest returned record at +5m, got %v", transactions[len(transactions)-1].CreatedAt)
	}
}

func TestLastN_FewerThanN(t *testing.T) {
	f := newQueryFixture()
	accountID := f.seedAccount()
	f.seedTransactions(accountID, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 3)

	transactions, err := f.queries.LastN(context.Background(), accountID, 20)
	if err != nil {
		t.Fatalf("LastN failed: %v", err)
	}
	if len(transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(transactions))
	}
}

func TestLastN_InvalidLimit(t *testing.T) {
	f := newQueryFixture()
	accountID := f.seedAccount()

	for _, n := range []int{0, -1} {
		if _, err := f.queries.LastN(context.Background(), accountID, n); !errors.Is(err, domain.ErrInvalidLimit) {
			t.Errorf("LastN(%d): expected ErrInvalidLimit, got %v", n, err)
		}
	}
}

func TestLastN_AccountNotFound(t *testing.T) {
	f := newQueryFixture()

	_, err := f.queries.LastN(context.Background(), uuid.New(), 20)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

package domain_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/ledger-service/internal/domain"
)

// memStore backs the in-memory fakes used by the unit tests. A single
// instance is shared by the account, transaction and user fakes so that one
// snapshot captures the whole state.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]domain.Account
	users    map[uuid.UUID]domain.User
	log      []domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]domain.Account),
		users:    make(map[uuid.UUID]domain.User),
	}
}

func (s *memStore) putAccount(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
}

func (s *memStore) putUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *memStore) balance(id uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FormatAmount(s.accounts[id].Balance)
}

func (s *memStore) logLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.log)
}

// memAccounts implements domain.AccountRepository.
// saveErr, when set, makes Save fail to exercise rollback paths.
type memAccounts struct {
	store   *memStore
	saveErr error
}

func (r *memAccounts) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &account, nil
}

func (r *memAccounts) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, account := range r.store.accounts {
		if account.Number == number {
			a := account
			return &a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccounts) Save(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.accounts[account.ID] = *account
	saved := *account
	return &saved, nil
}

func (r *memAccounts) Lock(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	// Units of work are serialized by memTxManager, so a plain read stands in
	// for the row lock.
	return r.GetByID(ctx, id)
}

func (r *memAccounts) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Account
	for _, account := range r.store.accounts {
		if account.UserID == userID {
			out = append(out, account)
		}
	}
	slices.SortFunc(out, func(a, b domain.Account) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

// memLog implements domain.TransactionRepository.
// appendErr, when set, makes Append fail to exercise rollback paths.
type memLog struct {
	store     *memStore
	appendErr error
}

func (r *memLog) Append(_ context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if r.appendErr != nil {
		return nil, r.appendErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	record := *transaction
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.store.log = append(r.store.log, record)
	return &record, nil
}

func (r *memLog) ListByAccount(_ context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Transaction
	for _, transaction := range r.store.log {
		if transaction.AccountID == accountID {
			out = append(out, transaction)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memLog) ListByAccountBetween(_ context.Context, accountID uuid.UUID, start, end time.Time, txType *domain.TransactionType) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Transaction
	for _, transaction := range r.store.log {
		if transaction.AccountID != accountID {
			continue
		}
		if transaction.CreatedAt.Before(start) || transaction.CreatedAt.After(end) {
			continue
		}
		if txType != nil && transaction.Type != *txType {
			continue
		}
		out = append(out, transaction)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memLog) ListLastN(ctx context.Context, accountID uuid.UUID, n int) ([]domain.Transaction, error) {
	out, err := r.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// sortNewestFirst orders by timestamp descending, preserving insertion order
// for equal timestamps via a stable sort on the reversed slice.
func sortNewestFirst(transactions []domain.Transaction) {
	slices.Reverse(transactions)
	slices.SortStableFunc(transactions, func(a, b domain.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

// memUsers implements domain.UserRepository.
type memUsers struct {
	store *memStore
}

func (r *memUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user, ok := r.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

// memTxManager implements domain.TransactionManager with whole-store
// serialization and snapshot rollback, mirroring the commit-or-nothing
// behavior of a real database transaction.
type memTxManager struct {
	store *memStore
	txMu  sync.Mutex
}

func (m *memTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.store.mu.Lock()
	accountsSnap := maps.Clone(m.store.accounts)
	logSnap := slices.Clone(m.store.log)
	m.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.accounts = accountsSnap
		m.store.log = logSnap
		m.store.mu.Unlock()
		return err
	}
	return nil
}

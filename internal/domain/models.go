package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates the supported account kinds.
type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

// Account represents a bank account in the system.
// Balance is only ever mutated by the ledger engine inside a unit of work;
// everything else treats it as read-only.
type Account struct {
	ID        uuid.UUID       // Unique identifier of the account
	Number    string          // Globally unique account number
	Name      string          // Display name chosen at opening
	Type      AccountType     // CHECKING or SAVINGS
	Balance   decimal.Decimal // Current balance, fixed two-decimal scale
	UserID    uuid.UUID       // Owning user
	CreatedAt time.Time       // Timestamp when the account was created
	UpdatedAt time.Time       // Timestamp of the last balance update
}

// TransactionType enumerates the two postings a ledger operation can produce.
// A transfer posts as one of each, linked by description and timestamp.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// Transaction is an immutable ledger record posted against a single account.
// Amount is signed: positive for deposits, negative for withdrawals, so that
// replaying an account's transactions from opening sums to its balance.
type Transaction struct {
	ID          uuid.UUID       // Unique identifier of the transaction
	AccountID   uuid.UUID       // Account the transaction posted against
	Type        TransactionType // DEPOSIT or WITHDRAWAL
	Amount      decimal.Decimal // Signed amount
	Description string          // Free-text description
	UserID      *uuid.UUID      // Acting user, if any (may differ from the owner)
	CreatedAt   time.Time       // Posting timestamp
}

// Role enumerates user roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a read-only reference entity here: it owns accounts and may appear
// as the actor on a transaction. Credential management lives elsewhere.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      Role
	Blocked   bool
	CreatedAt time.Time
}

// NewAccount creates an Account with a zero balance.
func NewAccount(userID uuid.UUID, number, name string, accountType AccountType) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:        uuid.New(),
		Number:    number,
		Name:      name,
		Type:      accountType,
		Balance:   decimal.Zero,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTransaction creates a Transaction posted at the given time.
// The caller supplies the signed amount.
func NewTransaction(accountID uuid.UUID, txType TransactionType, amount decimal.Decimal, description string, actorID *uuid.UUID, postedAt time.Time) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		UserID:      actorID,
		CreatedAt:   postedAt,
	}
}

package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerService is the engine that mutates account balances. Every operation
// is a single unit of work: the balance update and the transaction record
// commit together or not at all, so replaying an account's log from opening
// always sums to its balance.
//
// The service holds no state between calls; the account store and the
// transaction log are the only shared mutable resources.
type LedgerService struct {
	accounts  AccountRepository
	log       TransactionRepository
	users     UserRepository
	txManager TransactionManager
	events    EventPublisher
	logger    zerolog.Logger
}

// NewLedgerService creates a new LedgerService.
// Pass nil for events if no events should be emitted.
func NewLedgerService(
	accounts AccountRepository,
	log TransactionRepository,
	users UserRepository,
	txManager TransactionManager,
	events EventPublisher,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		accounts:  accounts,
		log:       log,
		users:     users,
		txManager: txManager,
		events:    events,
		logger:    logger.With().Str("component", "ledger").Logger(),
	}
}

// Deposit credits amount to the account and posts a DEPOSIT transaction.
//
// Within one transaction it locks the account row, appends the transaction
// record and saves the increased balance. Returns ErrAccountNotFound if the
// account doesn't resolve and ErrInvalidAmount if amount is not positive.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, description string, actorID *uuid.UUID) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	actor := s.resolveActor(ctx, actorID)

	var posted *Transaction
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.accounts.Lock(txCtx, accountID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		posted, err = s.log.Append(txCtx, NewTransaction(account.ID, TransactionTypeDeposit, amount, description, actor, now))
		if err != nil {
			return fmt.Errorf("failed to append deposit transaction: %w", err)
		}

		account.Balance = account.Balance.Add(amount)
		account.UpdatedAt = now
		if _, err := s.accounts.Save(txCtx, account); err != nil {
			return fmt.Errorf("failed to save account balance: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(posted)
	return posted, nil
}

// Withdraw debits amount from the account and posts a WITHDRAWAL transaction
// with a negative amount.
//
// The sufficiency check runs against the locked snapshot, so for two
// concurrent withdrawals when funds cover only one, exactly one wins and the
// other observes ErrInsufficientFunds with the log and balance untouched.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, description string, actorID *uuid.UUID) (*Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	actor := s.resolveActor(ctx, actorID)

	var posted *Transaction
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.accounts.Lock(txCtx, accountID)
		if err != nil {
			return err
		}

		if account.Balance.Cmp(amount) < 0 {
			return ErrInsufficientFunds
		}

		now := time.Now().UTC()
		posted, err = s.log.Append(txCtx, NewTransaction(account.ID, TransactionTypeWithdrawal, amount.Neg(), description, actor, now))
		if err != nil {
			return fmt.Errorf("failed to append withdrawal transaction: %w", err)
		}

		account.Balance = account.Balance.Sub(amount)
		account.UpdatedAt = now
		if _, err := s.accounts.Save(txCtx, account); err != nil {
			return fmt.Errorf("failed to save account balance: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(posted)
	return posted, nil
}

// Transfer atomically moves amount from one account to another, posting a
// WITHDRAWAL on the source and a DEPOSIT on the destination. The two legs
// share description and timestamp and commit as one unit; on any failure
// neither leg survives.
//
// Both rows are locked in UUID order regardless of call order so that two
// opposing transfers can't deadlock.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal, description string, actorID *uuid.UUID) (*Transaction, *Transaction, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, nil, err
	}
	if fromID == toID {
		return nil, nil, ErrSameAccount
	}

	actor := s.resolveActor(ctx, actorID)

	var withdrawal, deposit *Transaction
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var from, to *Account
		var err error
		if fromID.String() < toID.String() {
			if from, err = s.accounts.Lock(txCtx, fromID); err != nil {
				return fmt.Errorf("failed to lock source account: %w", err)
			}
			if to, err = s.accounts.Lock(txCtx, toID); err != nil {
				return fmt.Errorf("failed to lock destination account: %w", err)
			}
		} else {
			if to, err = s.accounts.Lock(txCtx, toID); err != nil {
				return fmt.Errorf("failed to lock destination account: %w", err)
			}
			if from, err = s.accounts.Lock(txCtx, fromID); err != nil {
				return fmt.Errorf("failed to lock source account: %w", err)
			}
		}

		if from.Balance.Cmp(amount) < 0 {
			return ErrInsufficientFunds
		}

		// Both legs carry the same logical timestamp.
		now := time.Now().UTC()

		withdrawal, err = s.log.Append(txCtx, NewTransaction(from.ID, TransactionTypeWithdrawal, amount.Neg(), description, actor, now))
		if err != nil {
			return fmt.Errorf("failed to append withdrawal leg: %w", err)
		}
		deposit, err = s.log.Append(txCtx, NewTransaction(to.ID, TransactionTypeDeposit, amount, description, actor, now))
		if err != nil {
			return fmt.Errorf("failed to append deposit leg: %w", err)
		}

		from.Balance = from.Balance.Sub(amount)
		from.UpdatedAt = now
		if _, err := s.accounts.Save(txCtx, from); err != nil {
			return fmt.Errorf("failed to save source account: %w", err)
		}

		to.Balance = to.Balance.Add(amount)
		to.UpdatedAt = now
		if _, err := s.accounts.Save(txCtx, to); err != nil {
			return fmt.Errorf("failed to save destination account: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.publish(withdrawal)
	s.publish(deposit)
	return withdrawal, deposit, nil
}

// resolveActor resolves the optional acting user. An unknown actor id posts
// the transaction with no actor reference rather than failing the operation.
func (s *LedgerService) resolveActor(ctx context.Context, actorID *uuid.UUID) *uuid.UUID {
	if actorID == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, *actorID)
	if err != nil || user == nil {
		return nil
	}
	id := user.ID
	return &id
}

// publish emits a posted-transaction event after the commit, best-effort.
// Transient broker failures must not make an already-committed operation
// appear to fail, so publishing happens asynchronously.
func (s *LedgerService) publish(transaction *Transaction) {
	if s.events == nil || transaction == nil {
		return
	}
	go func(t *Transaction) {
		if err := s.events.PublishTransactionPosted(context.Background(), t); err != nil {
			s.logger.Warn().Err(err).
				Str("transaction_id", t.ID.String()).
				Msg("failed to publish transaction posted event")
		}
	}(transaction)
}

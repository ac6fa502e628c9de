package domain

import "errors"

var (
	// ErrAccountNotFound is returned when a referenced account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrUserNotFound is returned when a referenced user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientFunds is returned when the account doesn't have enough balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned when the operation amount is not a positive
	// value with at most two decimal places
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrSameAccount is returned when transfer source and destination are the same
	ErrSameAccount = errors.New("source and destination must be different accounts")

	// ErrInvalidLimit is returned when a requested result count is not positive
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrUnavailable is returned when an account lock could not be acquired within
	// the configured bound. The operation left no trace and is safe to retry.
	ErrUnavailable = errors.New("account busy, retry")
)

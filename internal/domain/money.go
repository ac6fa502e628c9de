package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountScale is the fixed number of decimal places for monetary values.
const AmountScale = 2

// ParseAmount parses a decimal string into an operation amount.
// The value must be strictly positive with at most two decimal places.
func ParseAmount(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", ErrInvalidAmount, value)
	}

	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// ValidateAmount checks that an amount is usable as an operation amount:
// strictly positive and representable at the fixed scale.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.Exponent() < -AmountScale {
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, AmountScale)
	}
	return nil
}

// FormatAmount renders an amount at the fixed scale, e.g. "100.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountScale)
}

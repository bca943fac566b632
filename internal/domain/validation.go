package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxNameLength   = 255
	MaxNoteLength   = 1000
	MaxLineCount    = 500
	MaxAmount       = "1000000000000" // 1 trillion
	MaxLineQuantity = 1000000000
	// MaxAmountScale is the number of decimal places money columns keep.
	MaxAmountScale = 4
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateName validates a required display name such as a product,
// trader or supplier name.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidation, field)
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, field, MaxNameLength)
	}

	return nil
}

// ValidateNote validates free text.
func ValidateNote(note string) error {
	if len(note) > MaxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrValidation, MaxNoteLength)
	}

	return nil
}

// ValidatePositiveAmount requires amount > 0.
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	return validateMax(amount)
}

// ValidateNonNegativeAmount requires amount >= 0.
func ValidateNonNegativeAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrNegativeAmount, field)
	}

	return validateMax(amount)
}

// ValidateQuantity requires 0 < qty <= MaxLineQuantity.
func ValidateQuantity(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if qty > MaxLineQuantity {
		return fmt.Errorf("%w: quantity exceeds %d", ErrValidation, MaxLineQuantity)
	}

	return nil
}

// ValidateLineCount requires 1..MaxLineCount lines.
func ValidateLineCount(n int) error {
	if n == 0 {
		return ErrEmptyLines
	}

	if n > MaxLineCount {
		return fmt.Errorf("%w: at most %d lines allowed", ErrValidation, MaxLineCount)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ValidateLineSubtotal requires qty * unitAmount to stay within MaxAmount.
func ValidateLineSubtotal(qty int64, unitAmount decimal.Decimal) error {
	if unitAmount.Mul(decimal.NewFromInt(qty)).GreaterThan(maxAmount) {
		return fmt.Errorf("%w: line subtotal exceeds %s", ErrValidation, MaxAmount)
	}

	return nil
}

func validateMax(amount decimal.Decimal) error {
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrValidation, MaxAmount)
	}

	if !amount.Equal(amount.Round(MaxAmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", ErrValidation, MaxAmountScale)
	}

	return nil
}

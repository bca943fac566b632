package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrTransactionTimeout  = errors.New("transaction timed out")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrInUse               = errors.New("still in use")
)

var (
	// Entity lookups
	ErrProductNotFound        = fmt.Errorf("product %w", ErrNotFound)
	ErrTraderNotFound         = fmt.Errorf("trader %w", ErrNotFound)
	ErrSaleNotFound           = fmt.Errorf("sale %w", ErrNotFound)
	ErrPurchaseNotFound       = fmt.Errorf("purchase %w", ErrNotFound)
	ErrPaymentNotFound        = fmt.Errorf("payment %w", ErrNotFound)
	ErrExpenseNotFound        = fmt.Errorf("expense %w", ErrNotFound)
	ErrFinancialEntryNotFound = fmt.Errorf("financial entry %w", ErrNotFound)

	// Deletion guards
	ErrProductInUse = fmt.Errorf("product %w: referenced by sale or purchase lines", ErrInUse)
	ErrTraderInUse  = fmt.Errorf("trader %w: has sales, payments or ledger entries", ErrInUse)

	// Input validation
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrNegativeAmount     = fmt.Errorf("%w: amount must not be negative", ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrEmptyLines         = fmt.Errorf("%w: at least one line is required", ErrValidation)
	ErrMissingTrader      = fmt.Errorf("%w: trader is required", ErrValidation)
	ErrMissingProduct     = fmt.Errorf("%w: product is required", ErrValidation)
	ErrSaleTraderMismatch = fmt.Errorf("%w: sale belongs to a different trader", ErrValidation)
)

// IsBusinessError reports whether err is a domain outcome that callers act on
// directly, as opposed to a storage or infrastructure failure.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrInUse) ||
		errors.Is(err, ErrTransactionTimeout)
}

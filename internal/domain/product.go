package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "General"

// Product is a stocked item valued at its weighted-average unit cost.
type Product struct {
	ID            string
	Name          string
	Category      string
	StockQuantity int64
	UnitPrice     decimal.Decimal
	UnitCost      decimal.Decimal
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateSale checks that qty units can leave stock.
func (p *Product) ValidateSale(qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if p.StockQuantity-qty < 0 {
		return fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, p.Name, p.StockQuantity, qty)
	}

	return nil
}

// StockValue returns quantity on hand times unit cost.
func (p *Product) StockValue() decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(p.StockQuantity))
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase is a stock receipt from a supplier.
type Purchase struct {
	ID           string
	SupplierName string
	PurchaseDate time.Time
	TotalAmount  decimal.Decimal
	Notes        string
	Lines        []*PurchaseLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseLine is one product received on a purchase.
type PurchaseLine struct {
	ID         string
	PurchaseID string
	ProductID  string
	Quantity   int64
	UnitCost   decimal.Decimal
	Subtotal   decimal.Decimal
}

// NewPurchaseLine builds a line with its subtotal.
func NewPurchaseLine(id, purchaseID, productID string, qty int64, unitCost decimal.Decimal) *PurchaseLine {
	return &PurchaseLine{
		ID:         id,
		PurchaseID: purchaseID,
		ProductID:  productID,
		Quantity:   qty,
		UnitCost:   unitCost,
		Subtotal:   unitCost.Mul(decimal.NewFromInt(qty)),
	}
}

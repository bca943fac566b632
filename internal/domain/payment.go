package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSource records how a payment entered the system.
type PaymentSource string

const (
	// PaymentSourceSale is a down payment taken when the sale was recorded.
	PaymentSourceSale PaymentSource = "sale"
	// PaymentSourceManual is a payment recorded on its own.
	PaymentSourceManual PaymentSource = "manual"
)

// Payment is money received from a trader. SaleID is empty for
// payments on account.
type Payment struct {
	ID          string
	TraderID    string
	SaleID      string
	PaymentDate time.Time
	Amount      decimal.Decimal
	Note        string
	Source      PaymentSource
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Linked reports whether the payment is applied to a sale.
func (p *Payment) Linked() bool {
	return p.SaleID != ""
}

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus describes how much of an invoice has been paid.
type SaleStatus string

const (
	SaleStatusPending SaleStatus = "pending"
	SaleStatusPartial SaleStatus = "partial"
	SaleStatusPaid    SaleStatus = "paid"
)

// Sale is an invoice issued to a trader.
type Sale struct {
	ID              string
	InvoiceNumber   string
	TraderID        string
	SaleDate        time.Time
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          SaleStatus
	Lines           []*SaleLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SaleLine is one product on an invoice. UnitCost is the product's
// average cost at the moment of sale.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	Subtotal  decimal.Decimal
	Profit    decimal.Decimal
}

// NewSaleLine prices a line and computes its profit against unitCost.
func NewSaleLine(id, saleID, productID string, qty int64, unitPrice, unitCost decimal.Decimal) *SaleLine {
	q := decimal.NewFromInt(qty)
	subtotal := unitPrice.Mul(q)

	return &SaleLine{
		ID:        id,
		SaleID:    saleID,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		UnitCost:  unitCost,
		Subtotal:  subtotal,
		Profit:    subtotal.Sub(unitCost.Mul(q)),
	}
}

// SetAmounts sets total and paid and derives remaining and status.
func (s *Sale) SetAmounts(total, paid decimal.Decimal) {
	s.TotalAmount = total
	s.PaidAmount = paid
	s.RemainingAmount = total.Sub(paid)
	s.Status = StatusFor(total, paid)
}

// AddPaid adjusts the paid amount by delta, which may be negative.
func (s *Sale) AddPaid(delta decimal.Decimal) {
	s.SetAmounts(s.TotalAmount, s.PaidAmount.Add(delta))
}

// Profit sums line profits.
func (s *Sale) Profit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Profit)
	}

	return total
}

// StatusFor derives the status of an invoice.
func StatusFor(total, paid decimal.Decimal) SaleStatus {
	switch {
	case !paid.IsPositive() && total.IsPositive():
		return SaleStatusPending
	case paid.GreaterThanOrEqual(total):
		return SaleStatusPaid
	default:
		return SaleStatusPartial
	}
}

// InvoiceNumberFor derives a human readable invoice number from a sale ID.
func InvoiceNumberFor(saleID string) string {
	suffix := saleID
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}

	return "INV-" + strings.ToUpper(suffix)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the kind of event a financial entry records.
type EntryType string

const (
	EntryTypeSale    EntryType = "sale"
	EntryTypePayment EntryType = "payment"
)

// TraderFinancialEntry is an append-only snapshot of a trader's position
// taken after a sale or payment event. Seq orders entries per store.
type TraderFinancialEntry struct {
	ID              string
	Seq             int64
	TraderID        string
	SaleID          string
	PaymentID       string
	Type            EntryType
	SaleAmount      decimal.Decimal
	PaymentAmount   decimal.Decimal
	Balance         decimal.Decimal
	TotalSales      decimal.Decimal
	TotalPayments   decimal.Decimal
	RemainingAmount decimal.Decimal
	Description     string
	CreatedAt       time.Time
}

// Totals returns the snapshot as TraderTotals.
func (e *TraderFinancialEntry) Totals() TraderTotals {
	return TraderTotals{
		TotalSales:    e.TotalSales,
		TotalPayments: e.TotalPayments,
		Balance:       e.Balance,
	}
}

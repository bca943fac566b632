package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trader is a customer who buys on credit.
// A positive Balance means the trader owes money.
type Trader struct {
	ID            string
	Name          string
	Phone         string
	Address       string
	Balance       decimal.Decimal
	TotalSales    decimal.Decimal
	TotalPayments decimal.Decimal
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Totals returns the cached running totals.
func (t *Trader) Totals() TraderTotals {
	return TraderTotals{
		TotalSales:    t.TotalSales,
		TotalPayments: t.TotalPayments,
		Balance:       t.Balance,
	}
}

// Apply stores totals on the trader.
func (t *Trader) Apply(totals TraderTotals, at time.Time) {
	t.TotalSales = totals.TotalSales
	t.TotalPayments = totals.TotalPayments
	t.Balance = totals.Balance
	t.UpdatedAt = at
}

// TraderTotals is a trader's financial position.
// Balance always equals TotalSales - TotalPayments.
type TraderTotals struct {
	TotalSales    decimal.Decimal
	TotalPayments decimal.Decimal
	Balance       decimal.Decimal
}

// NewTraderTotals builds totals with a derived balance.
func NewTraderTotals(totalSales, totalPayments decimal.Decimal) TraderTotals {
	return TraderTotals{
		TotalSales:    totalSales,
		TotalPayments: totalPayments,
		Balance:       totalSales.Sub(totalPayments),
	}
}

// AddSale returns totals after amount is added to sales. Negative amounts reverse a sale.
func (t TraderTotals) AddSale(amount decimal.Decimal) TraderTotals {
	return NewTraderTotals(t.TotalSales.Add(amount), t.TotalPayments)
}

// AddPayment returns totals after amount is added to payments.
func (t TraderTotals) AddPayment(amount decimal.Decimal) TraderTotals {
	return NewTraderTotals(t.TotalSales, t.TotalPayments.Add(amount))
}

// Consistent reports whether Balance matches the two totals.
func (t TraderTotals) Consistent() bool {
	return t.Balance.Equal(t.TotalSales.Sub(t.TotalPayments))
}

// Equal compares all three figures.
func (t TraderTotals) Equal(other TraderTotals) bool {
	return t.TotalSales.Equal(other.TotalSales) &&
		t.TotalPayments.Equal(other.TotalPayments) &&
		t.Balance.Equal(other.Balance)
}

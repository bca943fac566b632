package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost deducted from gross profit.
type Expense struct {
	ID          string
	ExpenseDate time.Time
	Description string
	Amount      decimal.Decimal
	CreatedAt   time.Time
}

// DashboardStats summarises the business.
type DashboardStats struct {
	TotalProducts  int64
	TotalTraders   int64
	TotalSales     decimal.Decimal
	TotalPurchases decimal.Decimal
	TotalExpenses  decimal.Decimal
	GrossProfit    decimal.Decimal
	NetProfit      decimal.Decimal
	TotalDebts     decimal.Decimal
	StockValue     decimal.Decimal
}

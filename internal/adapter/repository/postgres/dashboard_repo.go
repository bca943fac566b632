package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/makhzone/internal/domain"
)

const dashboardStats = `
SELECT
    (SELECT COUNT(*) FROM products),
    (SELECT COUNT(*) FROM traders),
    (SELECT COALESCE(SUM(total_amount), 0) FROM sales)::NUMERIC,
    (SELECT COALESCE(SUM(total_amount), 0) FROM purchases)::NUMERIC,
    (SELECT COALESCE(SUM(amount), 0) FROM expenses)::NUMERIC,
    (SELECT COALESCE(SUM(profit), 0) FROM sale_details)::NUMERIC,
    (SELECT COALESCE(SUM(balance), 0) FROM traders WHERE balance > 0)::NUMERIC,
    (SELECT COALESCE(SUM(stock_quantity * unit_cost), 0) FROM products)::NUMERIC
`

// DashboardRepository implements usecase.DashboardRepository.
type DashboardRepository struct {
	db Querier
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(db Querier) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats aggregates the whole store in one round trip.
func (r *DashboardRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var (
		stats                             domain.DashboardStats
		sales, purchases, expenses, gross pgtype.Numeric
		debts, stockValue                 pgtype.Numeric
	)

	err := r.db.QueryRow(ctx, dashboardStats).Scan(
		&stats.TotalProducts,
		&stats.TotalTraders,
		&sales,
		&purchases,
		&expenses,
		&gross,
		&debts,
		&stockValue,
	)
	if err != nil {
		return nil, err
	}

	stats.TotalSales = numericToDecimal(sales)
	stats.TotalPurchases = numericToDecimal(purchases)
	stats.TotalExpenses = numericToDecimal(expenses)
	stats.GrossProfit = numericToDecimal(gross)
	stats.TotalDebts = numericToDecimal(debts)
	stats.StockValue = numericToDecimal(stockValue)

	return &stats, nil
}

package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
)

// DashboardRepository implements usecase.DashboardRepository.
type DashboardRepository struct {
	store *Store
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(store *Store) *DashboardRepository {
	return &DashboardRepository{store: store}
}

// Stats aggregates committed data.
func (r *DashboardRepository) Stats(_ context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		TotalExpenses:  decimal.Zero,
		GrossProfit:    decimal.Zero,
		TotalDebts:     decimal.Zero,
		StockValue:     decimal.Zero,
	}

	r.store.read(func(st *state) {
		stats.TotalProducts = int64(len(st.products))
		stats.TotalTraders = int64(len(st.traders))

		for _, p := range st.products {
			stats.StockValue = stats.StockValue.Add(p.StockValue())
		}

		for _, s := range st.sales {
			stats.TotalSales = stats.TotalSales.Add(s.TotalAmount)
		}

		for _, lines := range st.saleLines {
			for _, l := range lines {
				stats.GrossProfit = stats.GrossProfit.Add(l.Profit)
			}
		}

		for _, p := range st.purchases {
			stats.TotalPurchases = stats.TotalPurchases.Add(p.TotalAmount)
		}

		for _, e := range st.expenses {
			stats.TotalExpenses = stats.TotalExpenses.Add(e.Amount)
		}

		for _, t := range st.traders {
			if t.Balance.IsPositive() {
				stats.TotalDebts = stats.TotalDebts.Add(t.Balance)
			}
		}
	})

	return stats, nil
}

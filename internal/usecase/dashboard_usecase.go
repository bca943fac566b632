package usecase

import (
	"context"

	"github.com/iho/makhzone/internal/domain"
)

// DashboardUseCase reports store-wide figures.
type DashboardUseCase struct {
	dashboardRepo DashboardRepository
}

// NewDashboardUseCase creates a new DashboardUseCase.
func NewDashboardUseCase(dashboardRepo DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{dashboardRepo: dashboardRepo}
}

// GetStats returns the dashboard figures. Net profit is gross profit on
// sales minus expenses.
func (uc *DashboardUseCase) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := uc.dashboardRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	stats.NetProfit = stats.GrossProfit.Sub(stats.TotalExpenses)

	return stats, nil
}

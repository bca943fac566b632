package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
)

// TraderUseCase manages traders and projects their balances.
type TraderUseCase struct {
	tx          txRunner
	traderRepo  TraderRepository
	saleRepo    SaleRepository
	paymentRepo PaymentRepository
	entryRepo   FinancialEntryRepository
	idGen       IDGenerator
	balances    balanceCache
	metrics     *metrics.Metrics
}

// NewTraderUseCase creates a new TraderUseCase. cache may be nil.
func NewTraderUseCase(
	txManager TransactionManager,
	traderRepo TraderRepository,
	saleRepo SaleRepository,
	paymentRepo PaymentRepository,
	entryRepo FinancialEntryRepository,
	idGen IDGenerator,
	cache Cache,
	cacheTTL time.Duration,
	metrics *metrics.Metrics,
) *TraderUseCase {
	return &TraderUseCase{
		tx:          newTxRunner(txManager, nil),
		traderRepo:  traderRepo,
		saleRepo:    saleRepo,
		paymentRepo: paymentRepo,
		entryRepo:   entryRepo,
		idGen:       idGen,
		balances:    newBalanceCache(cache, cacheTTL),
		metrics:     metrics,
	}
}

// WithTransactionTimeout overrides DefaultTransactionTimeout. Non-positive values are ignored.
func (uc *TraderUseCase) WithTransactionTimeout(d time.Duration) *TraderUseCase {
	uc.tx.setTimeout(d)
	return uc
}

// CreateTraderInput represents input for creating a trader.
type CreateTraderInput struct {
	Name    string
	Phone   string
	Address string
}

// CreateTrader creates a trader with zero totals.
func (uc *TraderUseCase) CreateTrader(ctx context.Context, input CreateTraderInput) (*domain.Trader, error) {
	if err := domain.ValidateName("trader name", input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateNote(input.Address); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trader := &domain.Trader{
		ID:            uc.idGen.Generate(),
		Name:          strings.TrimSpace(input.Name),
		Phone:         strings.TrimSpace(input.Phone),
		Address:       strings.TrimSpace(input.Address),
		Balance:       decimal.Zero,
		TotalSales:    decimal.Zero,
		TotalPayments: decimal.Zero,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.traderRepo.Create(ctx, trader); err != nil {
		return nil, err
	}

	return trader, nil
}

// GetTrader retrieves a trader by ID.
func (uc *TraderUseCase) GetTrader(ctx context.Context, id string) (*domain.Trader, error) {
	return uc.traderRepo.GetByID(ctx, id)
}

// UpdateTraderInput represents input for updating a trader's contact
// fields. A nil Active leaves the flag unchanged.
type UpdateTraderInput struct {
	TraderID string
	Name     string
	Phone    string
	Address  string
	Active   *bool
}

// UpdateTrader rewrites name, phone, address and the active flag. Totals
// are left to the ledger.
func (uc *TraderUseCase) UpdateTrader(ctx context.Context, input UpdateTraderInput) (*domain.Trader, error) {
	if err := domain.ValidateName("trader name", input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateNote(input.Address); err != nil {
		return nil, err
	}

	trader, err := uc.traderRepo.GetByID(ctx, input.TraderID)
	if err != nil {
		return nil, err
	}

	trader.Name = strings.TrimSpace(input.Name)
	trader.Phone = strings.TrimSpace(input.Phone)
	trader.Address = strings.TrimSpace(input.Address)
	if input.Active != nil {
		trader.Active = *input.Active
	}
	trader.UpdatedAt = time.Now().UTC()

	if err := uc.traderRepo.UpdateDetails(ctx, trader); err != nil {
		return nil, err
	}

	uc.balances.invalidate(ctx, trader.ID)

	return trader, nil
}

// DeleteTrader removes a trader with no sales, payments or ledger entries.
func (uc *TraderUseCase) DeleteTrader(ctx context.Context, id string) error {
	if err := uc.traderRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.balances.invalidate(ctx, id)

	return nil
}

// ListTraders lists traders with pagination.
func (uc *TraderUseCase) ListTraders(ctx context.Context, limit, offset int) ([]*domain.Trader, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.traderRepo.List(ctx, limit, offset)
}

// ListFinancialEntries returns a trader's ledger, newest first.
func (uc *TraderUseCase) ListFinancialEntries(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error) {
	if _, err := uc.traderRepo.GetByID(ctx, traderID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.entryRepo.ListByTrader(ctx, traderID, limit, offset)
}

// TraderBalance is a read-only view of a trader's position.
type TraderBalance struct {
	TraderID      string                       `json:"trader_id"`
	Name          string                       `json:"name"`
	Balance       decimal.Decimal              `json:"balance"`
	TotalSales    decimal.Decimal              `json:"total_sales"`
	TotalPayments decimal.Decimal              `json:"total_payments"`
	LastEntry     *domain.TraderFinancialEntry `json:"last_entry,omitempty"`
	AsOf          time.Time                    `json:"as_of"`
}

// GetTraderBalance returns the trader's cached totals and latest ledger
// snapshot. It does not modify anything.
func (uc *TraderUseCase) GetTraderBalance(ctx context.Context, traderID string) (*TraderBalance, error) {
	if cached, ok := uc.balances.get(ctx, traderID); ok {
		uc.recordCache("hit")
		return cached, nil
	}
	uc.recordCache("miss")

	trader, err := uc.traderRepo.GetByID(ctx, traderID)
	if err != nil {
		return nil, err
	}

	balance := &TraderBalance{
		TraderID:      trader.ID,
		Name:          trader.Name,
		Balance:       trader.Balance,
		TotalSales:    trader.TotalSales,
		TotalPayments: trader.TotalPayments,
		AsOf:          trader.UpdatedAt,
	}

	latest, err := uc.entryRepo.GetLatest(ctx, traderID)
	switch {
	case err == nil:
		balance.LastEntry = latest
	case !errors.Is(err, domain.ErrFinancialEntryNotFound):
		return nil, err
	}

	uc.balances.set(ctx, balance)

	// A mutation that committed after the read above may already have
	// invalidated the key, so drop what was just written if the trader moved on.
	if current, err := uc.traderRepo.GetByID(ctx, traderID); err != nil || !current.UpdatedAt.Equal(trader.UpdatedAt) {
		uc.balances.invalidate(ctx, traderID)
	}

	return balance, nil
}

// ReconciliationResult compares a trader's cached totals and ledger
// snapshot against totals replayed from sales and payments.
type ReconciliationResult struct {
	TraderID     string
	Recorded     domain.TraderTotals
	Ledger       *domain.TraderTotals
	Replayed     domain.TraderTotals
	Difference   decimal.Decimal
	IsReconciled bool
	CheckedAt    time.Time
}

// ReconcileTrader replays a trader's sales and payments inside one
// transaction and reports any drift from the recorded totals.
func (uc *TraderUseCase) ReconcileTrader(ctx context.Context, traderID string) (*ReconciliationResult, error) {
	var result *ReconciliationResult

	err := uc.tx.run(ctx, "reconcile trader", func(ctx context.Context, tx Transaction) error {
		trader, err := uc.traderRepo.GetByIDForUpdate(ctx, tx, traderID)
		if err != nil {
			return err
		}

		totalSales, paidOnSales, err := uc.saleRepo.SumByTrader(ctx, tx, traderID)
		if err != nil {
			return err
		}

		manual, err := uc.paymentRepo.SumUnlinkedByTrader(ctx, tx, traderID)
		if err != nil {
			return err
		}

		replayed := domain.NewTraderTotals(totalSales, paidOnSales.Add(manual))
		recorded := trader.Totals()

		result = &ReconciliationResult{
			TraderID:   traderID,
			Recorded:   recorded,
			Replayed:   replayed,
			Difference: recorded.Balance.Sub(replayed.Balance),
			CheckedAt:  time.Now().UTC(),
		}

		latest, err := uc.entryRepo.GetLatestTx(ctx, tx, traderID)
		switch {
		case err == nil:
			totals := latest.Totals()
			result.Ledger = &totals
		case !errors.Is(err, domain.ErrFinancialEntryNotFound):
			return err
		}

		result.IsReconciled = recorded.Consistent() &&
			recorded.Equal(replayed) &&
			(result.Ledger == nil || result.Ledger.Equal(replayed))

		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationDrift.WithLabelValues(traderID).Set(result.Difference.InexactFloat64())
	}

	return result, nil
}

// ReconciliationReport summarises a reconciliation pass over all traders.
type ReconciliationReport struct {
	TotalTraders      int
	ReconciledTraders int
	Discrepancies     []*ReconciliationResult
	CheckedAt         time.Time
}

// ReconcileAll reconciles every trader.
func (uc *TraderUseCase) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	ids, err := uc.traderRepo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalTraders:  len(ids),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, id := range ids {
		result, err := uc.ReconcileTrader(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile trader %s: %w", id, err)
		}

		if result.IsReconciled {
			report.ReconciledTraders++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	if uc.metrics != nil {
		outcome := "clean"
		if len(report.Discrepancies) > 0 {
			outcome = "drift"
		}
		uc.metrics.ReconciliationRuns.WithLabelValues(outcome).Inc()
	}

	return report, nil
}

func (uc *TraderUseCase) recordCache(result string) {
	if uc.metrics != nil {
		uc.metrics.CacheRequests.WithLabelValues("trader_balance", result).Inc()
	}
}

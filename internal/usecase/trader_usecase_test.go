package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/makhzone/internal/adapter/repository/memory"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

func TestTraderUseCase_CreateTrader(t *testing.T) {
	env := newTestEnv(t)

	trader, err := env.traders.CreateTrader(context.Background(), usecase.CreateTraderInput{
		Name:  "  Acme Traders ",
		Phone: "555-0100",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Traders", trader.Name)
	assert.True(t, trader.Active)
	requireDecimal(t, "0", trader.Balance)

	_, err = env.traders.CreateTrader(context.Background(), usecase.CreateTraderInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTraderUseCase_GetTraderBalance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	saleFor(t, env, trader.ID)

	first, err := env.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	requireDecimal(t, "300", first.TotalSales)
	requireDecimal(t, "100", first.TotalPayments)
	requireDecimal(t, "200", first.Balance)
	require.NotNil(t, first.LastEntry)

	second, err := env.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	assert.Equal(t, first.TraderID, second.TraderID)
	assert.True(t, first.Balance.Equal(second.Balance))
	assert.Equal(t, first.LastEntry.Seq, second.LastEntry.Seq)

	hits := testutil.ToFloat64(env.metrics.CacheRequests.WithLabelValues("trader_balance", "hit"))
	misses := testutil.ToFloat64(env.metrics.CacheRequests.WithLabelValues("trader_balance", "miss"))
	assert.Equal(t, float64(1), hits)
	assert.Equal(t, float64(1), misses)

	// Reads never append to the ledger.
	entries, err := env.traders.ListFinancialEntries(ctx, trader.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTraderUseCase_GetTraderBalance_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.traders.GetTraderBalance(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrTraderNotFound)

	_, err = env.traders.ListFinancialEntries(context.Background(), "missing", 10, 0)
	assert.ErrorIs(t, err, domain.ErrTraderNotFound)
}

func TestTraderUseCase_ReconcileDetectsDrift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	clean := env.trader(t, "Clean")
	drifted := env.trader(t, "Drifted")
	saleFor(t, env, clean.ID)
	saleFor(t, env, drifted.ID)

	// Corrupt the cached totals behind the coordinators' back.
	txm := memory.NewTxManager(env.store)
	tx, err := txm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, memory.NewTraderRepository(env.store).UpdateTotals(ctx, tx, drifted.ID,
		domain.NewTraderTotals(dec("310"), dec("100")), time.Now().UTC()))
	require.NoError(t, tx.Commit(ctx))

	result, err := env.traders.ReconcileTrader(ctx, drifted.ID)
	require.NoError(t, err)
	assert.False(t, result.IsReconciled)
	requireDecimal(t, "10", result.Difference)
	requireDecimal(t, "200", result.Replayed.Balance)
	require.NotNil(t, result.Ledger)
	requireDecimal(t, "200", result.Ledger.Balance)

	drift := testutil.ToFloat64(env.metrics.ReconciliationDrift.WithLabelValues(drifted.ID))
	assert.Equal(t, float64(10), drift)

	report, err := env.traders.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTraders)
	assert.Equal(t, 1, report.ReconciledTraders)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, drifted.ID, report.Discrepancies[0].TraderID)

	runs := testutil.ToFloat64(env.metrics.ReconciliationRuns.WithLabelValues("drift"))
	assert.Equal(t, float64(1), runs)
}

func TestTraderUseCase_ReconcileAll_Clean(t *testing.T) {
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	sale := saleFor(t, env, trader.ID)

	_, err := env.payments.CreatePayment(context.Background(), usecase.CreatePaymentInput{
		TraderID: trader.ID,
		SaleID:   sale.ID,
		Amount:   dec("25"),
	})
	require.NoError(t, err)

	_, err = env.sales.DeleteSale(context.Background(), sale.ID)
	require.NoError(t, err)

	report, err := env.traders.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ReconciledTraders)
	assert.Empty(t, report.Discrepancies)
}

// racingTraderRepo runs afterFirstGet once, right after the first GetByID.
type racingTraderRepo struct {
	*memory.TraderRepository
	afterFirstGet func()
}

func (r *racingTraderRepo) GetByID(ctx context.Context, id string) (*domain.Trader, error) {
	trader, err := r.TraderRepository.GetByID(ctx, id)
	if hook := r.afterFirstGet; hook != nil {
		r.afterFirstGet = nil
		hook()
	}

	return trader, err
}

func TestTraderUseCase_GetTraderBalance_DoesNotCacheStaleRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	saleFor(t, env, trader.ID)

	repo := &racingTraderRepo{
		TraderRepository: memory.NewTraderRepository(env.store),
		afterFirstGet: func() {
			_, err := env.payments.CreatePayment(ctx, usecase.CreatePaymentInput{TraderID: trader.ID, Amount: dec("40")})
			require.NoError(t, err)
		},
	}

	traders := usecase.NewTraderUseCase(
		memory.NewTxManager(env.store),
		repo,
		memory.NewSaleRepository(env.store),
		memory.NewPaymentRepository(env.store),
		memory.NewFinancialEntryRepository(env.store),
		&seqIDGenerator{},
		env.cache,
		time.Minute,
		nil,
	)

	stale, err := traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	requireDecimal(t, "200", stale.Balance)
	assert.False(t, env.cache.has("trader-balance:"+trader.ID))

	fresh, err := traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	requireDecimal(t, "160", fresh.Balance)
	assert.True(t, env.cache.has("trader-balance:"+trader.ID))
}

func TestTraderUseCase_UpdateTrader_KeepsTotals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	trader := env.trader(t, "Acme Traders")
	saleFor(t, env, trader.ID)

	_, err := env.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	require.True(t, env.cache.has("trader-balance:"+trader.ID))

	inactive := false
	updated, err := env.traders.UpdateTrader(ctx, usecase.UpdateTraderInput{
		TraderID: trader.ID,
		Name:     " Acme Wholesale ",
		Phone:    "555-0199",
		Address:  "Market street 4",
		Active:   &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Wholesale", updated.Name)
	assert.False(t, env.cache.has("trader-balance:"+trader.ID))

	stored, err := env.traders.GetTrader(ctx, trader.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0199", stored.Phone)
	assert.Equal(t, "Market street 4", stored.Address)
	assert.False(t, stored.Active)
	requireDecimal(t, "300", stored.TotalSales)
	requireDecimal(t, "100", stored.TotalPayments)
	requireDecimal(t, "200", stored.Balance)
	env.requireReconciled(t, trader.ID)

	_, err = env.traders.UpdateTrader(ctx, usecase.UpdateTraderInput{TraderID: trader.ID, Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.traders.UpdateTrader(ctx, usecase.UpdateTraderInput{TraderID: "missing", Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrTraderNotFound)
}

func TestTraderUseCase_DeleteTrader(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	idle := env.trader(t, "Idle Traders")
	require.NoError(t, env.traders.DeleteTrader(ctx, idle.ID))

	_, err := env.traders.GetTrader(ctx, idle.ID)
	assert.ErrorIs(t, err, domain.ErrTraderNotFound)
	assert.ErrorIs(t, env.traders.DeleteTrader(ctx, idle.ID), domain.ErrTraderNotFound)

	withSale := env.trader(t, "Busy Traders")
	saleFor(t, env, withSale.ID)
	assert.ErrorIs(t, env.traders.DeleteTrader(ctx, withSale.ID), domain.ErrTraderInUse)

	withPayment := env.trader(t, "Prepaid Traders")
	_, err = env.payments.CreatePayment(ctx, usecase.CreatePaymentInput{TraderID: withPayment.ID, Amount: dec("10")})
	require.NoError(t, err)
	assert.ErrorIs(t, env.traders.DeleteTrader(ctx, withPayment.ID), domain.ErrTraderInUse)
}

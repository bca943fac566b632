package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/iho/makhzone/internal/adapter/repository/postgres"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
	"github.com/iho/makhzone/internal/infrastructure/postgres"
	"github.com/iho/makhzone/internal/usecase"
)

// newTestPool connects to TEST_DATABASE_URL, migrates it and empties every table.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, postgres.RunMigrations(dbURL, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE trader_financials, payments, sale_details, sales,
		purchase_details, purchases, expenses, traders, products CASCADE`)
	require.NoError(t, err)

	return pool
}

type fixture struct {
	products  *usecase.ProductUseCase
	purchases *usecase.PurchaseUseCase
	sales     *usecase.SaleUseCase
	payments  *usecase.PaymentUseCase
	traders   *usecase.TraderUseCase
}

func newFixture(pool *pgxpool.Pool) fixture {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	txManager := repo.NewTxManager(pool)
	retrier := repo.NewRetrier(repo.WithRetryMetrics(m))
	idGen := repo.NewULIDGenerator()

	productRepo := repo.NewProductRepository(pool)
	traderRepo := repo.NewTraderRepository(pool)
	saleRepo := repo.NewSaleRepository(pool)
	paymentRepo := repo.NewPaymentRepository(pool)
	entryRepo := repo.NewFinancialEntryRepository(pool)

	return fixture{
		products:  usecase.NewProductUseCase(productRepo, idGen),
		purchases: usecase.NewPurchaseUseCase(txManager, retrier, productRepo, repo.NewPurchaseRepository(pool), idGen, m),
		sales:     usecase.NewSaleUseCase(txManager, retrier, productRepo, traderRepo, saleRepo, paymentRepo, entryRepo, idGen, nil, m),
		payments:  usecase.NewPaymentUseCase(txManager, retrier, traderRepo, saleRepo, paymentRepo, entryRepo, idGen, nil, m),
		traders:   usecase.NewTraderUseCase(txManager, traderRepo, saleRepo, paymentRepo, entryRepo, idGen, nil, 0, m),
	}
}

func TestIntegration_SaleLifecycle(t *testing.T) {
	pool := newTestPool(t)
	f := newFixture(pool)
	ctx := context.Background()

	product, err := f.products.CreateProduct(ctx, usecase.CreateProductInput{Name: "Widget", UnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, err = f.purchases.CreatePurchase(ctx, usecase.CreatePurchaseInput{
		SupplierName: "Supplier",
		Lines: []usecase.PurchaseLineInput{
			{ProductID: product.ID, Quantity: 10, UnitCost: decimal.NewFromInt(60)},
		},
	})
	require.NoError(t, err)

	trader, err := f.traders.CreateTrader(ctx, usecase.CreateTraderInput{Name: "Acme"})
	require.NoError(t, err)

	sale, err := f.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID:   trader.ID,
		PaidAmount: decimal.NewFromInt(100),
		Lines: []usecase.SaleLineInput{
			{ProductID: product.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusPartial, sale.Sale.Status)
	assert.True(t, sale.Totals.Balance.Equal(decimal.NewFromInt(200)), sale.Totals.Balance.String())

	stocked, err := f.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stocked.StockQuantity)

	_, err = f.payments.CreatePayment(ctx, usecase.CreatePaymentInput{
		TraderID: trader.ID,
		SaleID:   sale.Sale.ID,
		Amount:   decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	balance, err := f.traders.GetTraderBalance(ctx, trader.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(150)), balance.Balance.String())

	result, err := f.traders.ReconcileTrader(ctx, trader.ID)
	require.NoError(t, err)
	assert.True(t, result.IsReconciled)

	_, err = f.sales.DeleteSale(ctx, sale.Sale.ID)
	require.NoError(t, err)

	restocked, err := f.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), restocked.StockQuantity)
}

func TestIntegration_InsufficientStockRollsBack(t *testing.T) {
	pool := newTestPool(t)
	f := newFixture(pool)
	ctx := context.Background()

	product, err := f.products.CreateProduct(ctx, usecase.CreateProductInput{Name: "Gadget", UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)

	trader, err := f.traders.CreateTrader(ctx, usecase.CreateTraderInput{Name: "Beta"})
	require.NoError(t, err)

	_, err = f.sales.CreateSale(ctx, usecase.CreateSaleInput{
		TraderID: trader.ID,
		Lines:    []usecase.SaleLineInput{{ProductID: product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.traders.GetTrader(ctx, trader.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalSales.IsZero())

	entries, err := f.traders.ListFinancialEntries(ctx, trader.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

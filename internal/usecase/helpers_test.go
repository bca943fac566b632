package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/makhzone/internal/adapter/repository/memory"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/infrastructure/metrics"
	"github.com/iho/makhzone/internal/usecase"
)

// seqIDGenerator produces sortable, predictable IDs.
type seqIDGenerator struct {
	n atomic.Int64
}

func (g *seqIDGenerator) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

// mapCache is an in-process usecase.Cache.
type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes []string
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.data[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value

	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	c.deletes = append(c.deletes, key)

	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.data[key]

	return ok
}

type testEnv struct {
	store     *memory.Store
	cache     *mapCache
	metrics   *metrics.Metrics
	products  *usecase.ProductUseCase
	traders   *usecase.TraderUseCase
	sales     *usecase.SaleUseCase
	purchases *usecase.PurchaseUseCase
	payments  *usecase.PaymentUseCase
	expenses  *usecase.ExpenseUseCase
	dashboard *usecase.DashboardUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	idGen := &seqIDGenerator{}
	cache := newMapCache()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	productRepo := memory.NewProductRepository(store)
	traderRepo := memory.NewTraderRepository(store)
	saleRepo := memory.NewSaleRepository(store)
	purchaseRepo := memory.NewPurchaseRepository(store)
	paymentRepo := memory.NewPaymentRepository(store)
	entryRepo := memory.NewFinancialEntryRepository(store)
	expenseRepo := memory.NewExpenseRepository(store)
	dashboardRepo := memory.NewDashboardRepository(store)

	return &testEnv{
		store:     store,
		cache:     cache,
		metrics:   m,
		products:  usecase.NewProductUseCase(productRepo, idGen),
		traders:   usecase.NewTraderUseCase(txm, traderRepo, saleRepo, paymentRepo, entryRepo, idGen, cache, time.Minute, m),
		sales:     usecase.NewSaleUseCase(txm, nil, productRepo, traderRepo, saleRepo, paymentRepo, entryRepo, idGen, cache, m),
		purchases: usecase.NewPurchaseUseCase(txm, nil, productRepo, purchaseRepo, idGen, m),
		payments:  usecase.NewPaymentUseCase(txm, nil, traderRepo, saleRepo, paymentRepo, entryRepo, idGen, cache, m),
		expenses:  usecase.NewExpenseUseCase(expenseRepo, idGen),
		dashboard: usecase.NewDashboardUseCase(dashboardRepo),
	}
}

func (e *testEnv) trader(t *testing.T, name string) *domain.Trader {
	t.Helper()

	trader, err := e.traders.CreateTrader(context.Background(), usecase.CreateTraderInput{Name: name})
	require.NoError(t, err)

	return trader
}

// stockedProduct creates a product and receives qty units at cost.
func (e *testEnv) stockedProduct(t *testing.T, name string, qty int64, cost string) *domain.Product {
	t.Helper()

	purchase, err := e.purchases.CreatePurchase(context.Background(), usecase.CreatePurchaseInput{
		SupplierName: "Supplier",
		Lines: []usecase.PurchaseLineInput{{
			ProductName: name,
			Quantity:    qty,
			UnitCost:    dec(cost),
			UnitPrice:   dec(cost).Mul(decimal.NewFromInt(2)),
		}},
	})
	require.NoError(t, err)

	return e.product(t, purchase.Lines[0].ProductID)
}

func (e *testEnv) product(t *testing.T, id string) *domain.Product {
	t.Helper()

	p, err := e.products.GetProduct(context.Background(), id)
	require.NoError(t, err)

	return p
}

func (e *testEnv) requireReconciled(t *testing.T, traderID string) {
	t.Helper()

	result, err := e.traders.ReconcileTrader(context.Background(), traderID)
	require.NoError(t, err)
	require.True(t, result.IsReconciled, "trader %s drifted: recorded %v replayed %v", traderID, result.Recorded, result.Replayed)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()

	require.Truef(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual, msgAndArgs)
}

package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
)

// ProductRepository defines data access for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	CreateTx(ctx context.Context, tx Transaction, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Product, error)
	UpdateStock(ctx context.Context, tx Transaction, id string, quantity int64, unitCost decimal.Decimal, updatedAt time.Time) error
	// UpdateDetails writes name, category, unit price and active only.
	UpdateDetails(ctx context.Context, product *domain.Product) error
	// Delete fails with domain.ErrProductInUse while any line references the product.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

// TraderRepository defines data access for traders.
type TraderRepository interface {
	Create(ctx context.Context, trader *domain.Trader) error
	GetByID(ctx context.Context, id string) (*domain.Trader, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Trader, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Trader, error)
	UpdateTotals(ctx context.Context, tx Transaction, id string, totals domain.TraderTotals, updatedAt time.Time) error
	// UpdateDetails writes name, phone, address and active only.
	UpdateDetails(ctx context.Context, trader *domain.Trader) error
	// Delete fails with domain.ErrTraderInUse once the trader has any activity.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Trader, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// SaleRepository defines data access for sales and their lines.
// GetByID and GetByIDForUpdate load lines; GetByIDsForUpdate and List do not.
type SaleRepository interface {
	Create(ctx context.Context, tx Transaction, sale *domain.Sale) error
	CreateLine(ctx context.Context, tx Transaction, line *domain.SaleLine) error
	Update(ctx context.Context, tx Transaction, sale *domain.Sale) error
	GetByID(ctx context.Context, id string) (*domain.Sale, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Sale, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Sale, error)
	DeleteLines(ctx context.Context, tx Transaction, saleID string) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error)
	SumByTrader(ctx context.Context, tx Transaction, traderID string) (total, paid decimal.Decimal, err error)
}

// PurchaseRepository defines data access for purchases and their lines.
type PurchaseRepository interface {
	Create(ctx context.Context, tx Transaction, purchase *domain.Purchase) error
	CreateLine(ctx context.Context, tx Transaction, line *domain.PurchaseLine) error
	Update(ctx context.Context, tx Transaction, purchase *domain.Purchase) error
	GetByID(ctx context.Context, id string) (*domain.Purchase, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Purchase, error)
	DeleteLines(ctx context.Context, tx Transaction, purchaseID string) error
	Delete(ctx context.Context, tx Transaction, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Purchase, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	Update(ctx context.Context, tx Transaction, payment *domain.Payment) error
	Delete(ctx context.Context, tx Transaction, id string) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Payment, error)
	// ListBySaleForUpdate locks and returns the payments linked to a sale.
	ListBySaleForUpdate(ctx context.Context, tx Transaction, saleID string) ([]*domain.Payment, error)
	UnlinkSale(ctx context.Context, tx Transaction, saleID string, updatedAt time.Time) error
	List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error)
	SumUnlinkedByTrader(ctx context.Context, tx Transaction, traderID string) (decimal.Decimal, error)
}

// FinancialEntryRepository defines data access for the append-only trader ledger.
type FinancialEntryRepository interface {
	// Create appends an entry and assigns its Seq.
	Create(ctx context.Context, tx Transaction, entry *domain.TraderFinancialEntry) error
	GetLatest(ctx context.Context, traderID string) (*domain.TraderFinancialEntry, error)
	GetLatestTx(ctx context.Context, tx Transaction, traderID string) (*domain.TraderFinancialEntry, error)
	ListByTrader(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error)
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Expense, error)
}

// DashboardRepository computes store-wide aggregates.
type DashboardRepository interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed on a transient storage conflict.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

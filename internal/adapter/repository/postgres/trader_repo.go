package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

const traderColumns = `id, name, phone, address, balance, total_sales, total_payments, active, created_at, updated_at`

const createTrader = `
INSERT INTO traders (` + traderColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

const getTraderByID = `SELECT ` + traderColumns + ` FROM traders WHERE id = $1`

const getTraderByIDForUpdate = `SELECT ` + traderColumns + ` FROM traders WHERE id = $1 FOR UPDATE`

const getTradersByIDsForUpdate = `
SELECT ` + traderColumns + ` FROM traders
WHERE id = ANY($1::text[])
ORDER BY id
FOR UPDATE
`

const updateTraderTotals = `
UPDATE traders SET balance = $2, total_sales = $3, total_payments = $4, updated_at = $5
WHERE id = $1
`

const listTraders = `
SELECT ` + traderColumns + ` FROM traders
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

const listTraderIDs = `SELECT id FROM traders ORDER BY id`

const updateTraderDetails = `
UPDATE traders SET name = $2, phone = $3, address = $4, active = $5, updated_at = $6
WHERE id = $1
`

const deleteUnusedTrader = `
DELETE FROM traders
WHERE id = $1
  AND NOT EXISTS (SELECT 1 FROM sales WHERE trader_id = $1)
  AND NOT EXISTS (SELECT 1 FROM payments WHERE trader_id = $1)
  AND NOT EXISTS (SELECT 1 FROM trader_financials WHERE trader_id = $1)
`

const traderExists = `SELECT EXISTS (SELECT 1 FROM traders WHERE id = $1)`

// TraderRepository implements usecase.TraderRepository.
type TraderRepository struct {
	db Querier
}

// NewTraderRepository creates a new TraderRepository.
func NewTraderRepository(db Querier) *TraderRepository {
	return &TraderRepository{db: db}
}

// Create creates a new trader.
func (r *TraderRepository) Create(ctx context.Context, t *domain.Trader) error {
	_, err := r.db.Exec(ctx, createTrader,
		t.ID,
		t.Name,
		t.Phone,
		t.Address,
		decimalToNumeric(t.Balance),
		decimalToNumeric(t.TotalSales),
		decimalToNumeric(t.TotalPayments),
		t.Active,
		timeToPgTimestamptz(t.CreatedAt),
		timeToPgTimestamptz(t.UpdatedAt),
	)

	return err
}

// GetByID retrieves a trader by ID.
func (r *TraderRepository) GetByID(ctx context.Context, id string) (*domain.Trader, error) {
	t, err := scanTrader(r.db.QueryRow(ctx, getTraderByID, id))
	if err != nil {
		return nil, notFound(err, domain.ErrTraderNotFound)
	}

	return t, nil
}

// GetByIDForUpdate retrieves a trader by ID with a FOR UPDATE lock.
func (r *TraderRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Trader, error) {
	t, err := scanTrader(txOf(tx).QueryRow(ctx, getTraderByIDForUpdate, id))
	if err != nil {
		return nil, notFound(err, domain.ErrTraderNotFound)
	}

	return t, nil
}

// GetByIDsForUpdate locks multiple traders in id order.
func (r *TraderRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Trader, error) {
	rows, err := txOf(tx).Query(ctx, getTradersByIDsForUpdate, ids)
	if err != nil {
		return nil, err
	}

	return collect(rows, scanTrader)
}

// UpdateTotals writes the cached running totals.
func (r *TraderRepository) UpdateTotals(ctx context.Context, tx usecase.Transaction, id string, totals domain.TraderTotals, updatedAt time.Time) error {
	tag, err := txOf(tx).Exec(ctx, updateTraderTotals,
		id,
		decimalToNumeric(totals.Balance),
		decimalToNumeric(totals.TotalSales),
		decimalToNumeric(totals.TotalPayments),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTraderNotFound
	}

	return nil
}

// UpdateDetails rewrites the contact fields. Totals are untouched.
func (r *TraderRepository) UpdateDetails(ctx context.Context, t *domain.Trader) error {
	tag, err := r.db.Exec(ctx, updateTraderDetails,
		t.ID,
		t.Name,
		t.Phone,
		t.Address,
		t.Active,
		timeToPgTimestamptz(t.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTraderNotFound
	}

	return nil
}

// Delete removes a trader with no sales, payments or ledger entries.
func (r *TraderRepository) Delete(ctx context.Context, id string) error {
	return deleteGuarded(ctx, r.db, deleteUnusedTrader, traderExists, id, domain.ErrTraderNotFound, domain.ErrTraderInUse)
}

// List lists traders with pagination.
func (r *TraderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Trader, error) {
	rows, err := r.db.Query(ctx, listTraders, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanTrader)
}

// ListIDs returns every trader ID in sorted order.
func (r *TraderRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, listTraderIDs)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanTrader(row pgx.Row) (*domain.Trader, error) {
	var (
		t                                  domain.Trader
		balance, totalSales, totalPayments pgtype.Numeric
		createdAt, updatedAt               pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Phone,
		&t.Address,
		&balance,
		&totalSales,
		&totalPayments,
		&t.Active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Balance = numericToDecimal(balance)
	t.TotalSales = numericToDecimal(totalSales)
	t.TotalPayments = numericToDecimal(totalPayments)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}

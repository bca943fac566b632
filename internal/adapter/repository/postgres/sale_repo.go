package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

const saleColumns = `id, invoice_number, trader_id, sale_date, total_amount, paid_amount, remaining_amount, status, created_at, updated_at`

const saleLineColumns = `id, sale_id, product_id, quantity, unit_price, unit_cost, subtotal, profit`

const createSale = `
INSERT INTO sales (` + saleColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

const createSaleLine = `
INSERT INTO sale_details (` + saleLineColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

const updateSale = `
UPDATE sales
SET trader_id = $2, sale_date = $3, total_amount = $4, paid_amount = $5,
    remaining_amount = $6, status = $7, updated_at = $8
WHERE id = $1
`

const getSaleByID = `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

const getSaleByIDForUpdate = `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`

const getSalesByIDsForUpdate = `
SELECT ` + saleColumns + ` FROM sales
WHERE id = ANY($1::text[])
ORDER BY id
FOR UPDATE
`

const getSaleLines = `SELECT ` + saleLineColumns + ` FROM sale_details WHERE sale_id = $1 ORDER BY id`

const deleteSaleLines = `DELETE FROM sale_details WHERE sale_id = $1`

const deleteSale = `DELETE FROM sales WHERE id = $1`

const listSales = `
SELECT ` + saleColumns + ` FROM sales
WHERE ($1::text = '' OR trader_id = $1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`

const sumSalesByTrader = `
SELECT COALESCE(SUM(total_amount), 0)::NUMERIC, COALESCE(SUM(paid_amount), 0)::NUMERIC
FROM sales WHERE trader_id = $1
`

// SaleRepository implements usecase.SaleRepository.
type SaleRepository struct {
	db Querier
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db Querier) *SaleRepository {
	return &SaleRepository{db: db}
}

// Create inserts a sale header.
func (r *SaleRepository) Create(ctx context.Context, tx usecase.Transaction, s *domain.Sale) error {
	_, err := txOf(tx).Exec(ctx, createSale,
		s.ID,
		s.InvoiceNumber,
		s.TraderID,
		timeToPgTimestamptz(s.SaleDate),
		decimalToNumeric(s.TotalAmount),
		decimalToNumeric(s.PaidAmount),
		decimalToNumeric(s.RemainingAmount),
		string(s.Status),
		timeToPgTimestamptz(s.CreatedAt),
		timeToPgTimestamptz(s.UpdatedAt),
	)

	return err
}

// CreateLine inserts one sale line.
func (r *SaleRepository) CreateLine(ctx context.Context, tx usecase.Transaction, l *domain.SaleLine) error {
	_, err := txOf(tx).Exec(ctx, createSaleLine,
		l.ID,
		l.SaleID,
		l.ProductID,
		l.Quantity,
		decimalToNumeric(l.UnitPrice),
		decimalToNumeric(l.UnitCost),
		decimalToNumeric(l.Subtotal),
		decimalToNumeric(l.Profit),
	)

	return err
}

// Update writes the sale header.
func (r *SaleRepository) Update(ctx context.Context, tx usecase.Transaction, s *domain.Sale) error {
	tag, err := txOf(tx).Exec(ctx, updateSale,
		s.ID,
		s.TraderID,
		timeToPgTimestamptz(s.SaleDate),
		decimalToNumeric(s.TotalAmount),
		decimalToNumeric(s.PaidAmount),
		decimalToNumeric(s.RemainingAmount),
		string(s.Status),
		timeToPgTimestamptz(s.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

// GetByID retrieves a sale with its lines.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*domain.Sale, error) {
	return loadSale(ctx, r.db, getSaleByID, id)
}

// GetByIDForUpdate locks a sale and loads its lines.
func (r *SaleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Sale, error) {
	return loadSale(ctx, txOf(tx), getSaleByIDForUpdate, id)
}

// GetByIDsForUpdate locks sale headers in id order.
func (r *SaleRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Sale, error) {
	rows, err := txOf(tx).Query(ctx, getSalesByIDsForUpdate, ids)
	if err != nil {
		return nil, err
	}

	return collect(rows, scanSale)
}

// DeleteLines removes every line of a sale.
func (r *SaleRepository) DeleteLines(ctx context.Context, tx usecase.Transaction, saleID string) error {
	_, err := txOf(tx).Exec(ctx, deleteSaleLines, saleID)
	return err
}

// Delete removes a sale header.
func (r *SaleRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txOf(tx).Exec(ctx, deleteSale, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}

	return nil
}

// List lists sale headers, newest first.
func (r *SaleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	rows, err := r.db.Query(ctx, listSales, filter.TraderID, int32(filter.Limit), int32(filter.Offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanSale)
}

// SumByTrader totals the trader's invoices and the amounts paid on them.
func (r *SaleRepository) SumByTrader(ctx context.Context, tx usecase.Transaction, traderID string) (decimal.Decimal, decimal.Decimal, error) {
	var total, paid pgtype.Numeric

	if err := txOf(tx).QueryRow(ctx, sumSalesByTrader, traderID).Scan(&total, &paid); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(total), numericToDecimal(paid), nil
}

func loadSale(ctx context.Context, db Querier, query, id string) (*domain.Sale, error) {
	sale, err := scanSale(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, domain.ErrSaleNotFound)
	}

	rows, err := db.Query(ctx, getSaleLines, id)
	if err != nil {
		return nil, err
	}

	sale.Lines, err = collect(rows, scanSaleLine)
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func scanSale(row pgx.Row) (*domain.Sale, error) {
	var (
		s                         domain.Sale
		status                    string
		total, paid, remaining    pgtype.Numeric
		saleDate, created, update pgtype.Timestamptz
	)

	err := row.Scan(
		&s.ID,
		&s.InvoiceNumber,
		&s.TraderID,
		&saleDate,
		&total,
		&paid,
		&remaining,
		&status,
		&created,
		&update,
	)
	if err != nil {
		return nil, err
	}

	s.SaleDate = saleDate.Time
	s.TotalAmount = numericToDecimal(total)
	s.PaidAmount = numericToDecimal(paid)
	s.RemainingAmount = numericToDecimal(remaining)
	s.Status = domain.SaleStatus(status)
	s.CreatedAt = created.Time
	s.UpdatedAt = update.Time

	return &s, nil
}

func scanSaleLine(row pgx.Row) (*domain.SaleLine, error) {
	var (
		l                             domain.SaleLine
		price, cost, subtotal, profit pgtype.Numeric
	)

	err := row.Scan(
		&l.ID,
		&l.SaleID,
		&l.ProductID,
		&l.Quantity,
		&price,
		&cost,
		&subtotal,
		&profit,
	)
	if err != nil {
		return nil, err
	}

	l.UnitPrice = numericToDecimal(price)
	l.UnitCost = numericToDecimal(cost)
	l.Subtotal = numericToDecimal(subtotal)
	l.Profit = numericToDecimal(profit)

	return &l, nil
}

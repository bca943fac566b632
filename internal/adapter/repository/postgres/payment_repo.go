package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

const paymentColumns = `id, trader_id, sale_id, payment_date, amount, note, source, created_at, updated_at`

const createPayment = `
INSERT INTO payments (` + paymentColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const updatePayment = `
UPDATE payments
SET sale_id = $2, payment_date = $3, amount = $4, note = $5, updated_at = $6
WHERE id = $1
`

const deletePayment = `DELETE FROM payments WHERE id = $1`

const getPaymentByID = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

const getPaymentByIDForUpdate = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`

const listPaymentsBySale = `
SELECT ` + paymentColumns + ` FROM payments
WHERE sale_id = $1
ORDER BY id
FOR UPDATE
`

const unlinkPaymentsFromSale = `UPDATE payments SET sale_id = NULL, updated_at = $2 WHERE sale_id = $1`

const listPayments = `
SELECT ` + paymentColumns + ` FROM payments
WHERE ($1::text = '' OR trader_id = $1)
  AND ($2::text = '' OR sale_id = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`

const sumUnlinkedPayments = `
SELECT COALESCE(SUM(amount), 0)::NUMERIC FROM payments
WHERE trader_id = $1 AND sale_id IS NULL
`

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	db Querier
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db Querier) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Payment) error {
	_, err := txOf(tx).Exec(ctx, createPayment,
		p.ID,
		p.TraderID,
		nullText(p.SaleID),
		timeToPgTimestamptz(p.PaymentDate),
		decimalToNumeric(p.Amount),
		p.Note,
		string(p.Source),
		timeToPgTimestamptz(p.CreatedAt),
		timeToPgTimestamptz(p.UpdatedAt),
	)

	return err
}

// Update writes a payment's amount, date, note and sale link.
func (r *PaymentRepository) Update(ctx context.Context, tx usecase.Transaction, p *domain.Payment) error {
	tag, err := txOf(tx).Exec(ctx, updatePayment,
		p.ID,
		nullText(p.SaleID),
		timeToPgTimestamptz(p.PaymentDate),
		decimalToNumeric(p.Amount),
		p.Note,
		timeToPgTimestamptz(p.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txOf(tx).Exec(ctx, deletePayment, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, getPaymentByID, id))
	if err != nil {
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}

	return p, nil
}

// GetByIDForUpdate retrieves a payment by ID with a FOR UPDATE lock.
func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	p, err := scanPayment(txOf(tx).QueryRow(ctx, getPaymentByIDForUpdate, id))
	if err != nil {
		return nil, notFound(err, domain.ErrPaymentNotFound)
	}

	return p, nil
}

// ListBySaleForUpdate locks and returns the payments linked to a sale.
func (r *PaymentRepository) ListBySaleForUpdate(ctx context.Context, tx usecase.Transaction, saleID string) ([]*domain.Payment, error) {
	rows, err := txOf(tx).Query(ctx, listPaymentsBySale, saleID)
	if err != nil {
		return nil, err
	}

	return collect(rows, scanPayment)
}

// UnlinkSale moves a sale's payments onto the trader's account.
func (r *PaymentRepository) UnlinkSale(ctx context.Context, tx usecase.Transaction, saleID string, updatedAt time.Time) error {
	_, err := txOf(tx).Exec(ctx, unlinkPaymentsFromSale, saleID, timeToPgTimestamptz(updatedAt))
	return err
}

// List lists payments, newest first.
func (r *PaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx, listPayments, filter.TraderID, filter.SaleID, int32(filter.Limit), int32(filter.Offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanPayment)
}

// SumUnlinkedByTrader totals the trader's payments on account.
func (r *PaymentRepository) SumUnlinkedByTrader(ctx context.Context, tx usecase.Transaction, traderID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric

	if err := txOf(tx).QueryRow(ctx, sumUnlinkedPayments, traderID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p                             domain.Payment
		saleID                        pgtype.Text
		source                        string
		amount                        pgtype.Numeric
		paymentDate, created, updated pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID,
		&p.TraderID,
		&saleID,
		&paymentDate,
		&amount,
		&p.Note,
		&source,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	p.SaleID = saleID.String
	p.PaymentDate = paymentDate.Time
	p.Amount = numericToDecimal(amount)
	p.Source = domain.PaymentSource(source)
	p.CreatedAt = created.Time
	p.UpdatedAt = updated.Time

	return &p, nil
}

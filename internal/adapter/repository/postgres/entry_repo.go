package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

const entryColumns = `id, seq, trader_id, sale_id, payment_id, entry_type, sale_amount, payment_amount,
    balance, total_sales, total_payments, remaining_amount, description, created_at`

const createEntry = `
INSERT INTO trader_financials (id, trader_id, sale_id, payment_id, entry_type, sale_amount, payment_amount,
    balance, total_sales, total_payments, remaining_amount, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING seq
`

const getLatestEntry = `
SELECT ` + entryColumns + ` FROM trader_financials
WHERE trader_id = $1
ORDER BY seq DESC
LIMIT 1
`

const listEntriesByTrader = `
SELECT ` + entryColumns + ` FROM trader_financials
WHERE trader_id = $1
ORDER BY seq DESC
LIMIT $2 OFFSET $3
`

// FinancialEntryRepository implements usecase.FinancialEntryRepository
// on the append-only trader_financials table.
type FinancialEntryRepository struct {
	db Querier
}

// NewFinancialEntryRepository creates a new FinancialEntryRepository.
func NewFinancialEntryRepository(db Querier) *FinancialEntryRepository {
	return &FinancialEntryRepository{db: db}
}

// Create appends an entry. The database assigns Seq.
func (r *FinancialEntryRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.TraderFinancialEntry) error {
	return txOf(tx).QueryRow(ctx, createEntry,
		e.ID,
		e.TraderID,
		nullText(e.SaleID),
		nullText(e.PaymentID),
		string(e.Type),
		decimalToNumeric(e.SaleAmount),
		decimalToNumeric(e.PaymentAmount),
		decimalToNumeric(e.Balance),
		decimalToNumeric(e.TotalSales),
		decimalToNumeric(e.TotalPayments),
		decimalToNumeric(e.RemainingAmount),
		e.Description,
		timeToPgTimestamptz(e.CreatedAt),
	).Scan(&e.Seq)
}

// GetLatest returns the trader's most recent entry.
func (r *FinancialEntryRepository) GetLatest(ctx context.Context, traderID string) (*domain.TraderFinancialEntry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, getLatestEntry, traderID))
	if err != nil {
		return nil, notFound(err, domain.ErrFinancialEntryNotFound)
	}

	return e, nil
}

// GetLatestTx returns the trader's most recent entry within a transaction.
// The caller holds the trader's row lock.
func (r *FinancialEntryRepository) GetLatestTx(ctx context.Context, tx usecase.Transaction, traderID string) (*domain.TraderFinancialEntry, error) {
	e, err := scanEntry(txOf(tx).QueryRow(ctx, getLatestEntry, traderID))
	if err != nil {
		return nil, notFound(err, domain.ErrFinancialEntryNotFound)
	}

	return e, nil
}

// ListByTrader lists a trader's entries, newest first.
func (r *FinancialEntryRepository) ListByTrader(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error) {
	rows, err := r.db.Query(ctx, listEntriesByTrader, traderID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanEntry)
}

func scanEntry(row pgx.Row) (*domain.TraderFinancialEntry, error) {
	var (
		e                                          domain.TraderFinancialEntry
		saleID, paymentID                          pgtype.Text
		entryType                                  string
		saleAmount, paymentAmount, balance         pgtype.Numeric
		totalSales, totalPayments, remainingAmount pgtype.Numeric
		createdAt                                  pgtype.Timestamptz
	)

	err := row.Scan(
		&e.ID,
		&e.Seq,
		&e.TraderID,
		&saleID,
		&paymentID,
		&entryType,
		&saleAmount,
		&paymentAmount,
		&balance,
		&totalSales,
		&totalPayments,
		&remainingAmount,
		&e.Description,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	e.SaleID = saleID.String
	e.PaymentID = paymentID.String
	e.Type = domain.EntryType(entryType)
	e.SaleAmount = numericToDecimal(saleAmount)
	e.PaymentAmount = numericToDecimal(paymentAmount)
	e.Balance = numericToDecimal(balance)
	e.TotalSales = numericToDecimal(totalSales)
	e.TotalPayments = numericToDecimal(totalPayments)
	e.RemainingAmount = numericToDecimal(remainingAmount)
	e.CreatedAt = createdAt.Time

	return &e, nil
}

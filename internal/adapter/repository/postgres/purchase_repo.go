package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

const purchaseColumns = `id, supplier_name, purchase_date, total_amount, notes, created_at, updated_at`

const purchaseLineColumns = `id, purchase_id, product_id, quantity, unit_cost, subtotal`

const createPurchase = `
INSERT INTO purchases (` + purchaseColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const createPurchaseLine = `
INSERT INTO purchase_details (` + purchaseLineColumns + `)
VALUES ($1, $2, $3, $4, $5, $6)
`

const updatePurchase = `
UPDATE purchases
SET supplier_name = $2, purchase_date = $3, total_amount = $4, notes = $5, updated_at = $6
WHERE id = $1
`

const getPurchaseByID = `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`

const getPurchaseByIDForUpdate = `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 FOR UPDATE`

const getPurchaseLines = `SELECT ` + purchaseLineColumns + ` FROM purchase_details WHERE purchase_id = $1 ORDER BY id`

const deletePurchaseLines = `DELETE FROM purchase_details WHERE purchase_id = $1`

const deletePurchase = `DELETE FROM purchases WHERE id = $1`

const listPurchases = `
SELECT ` + purchaseColumns + ` FROM purchases
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

// PurchaseRepository implements usecase.PurchaseRepository.
type PurchaseRepository struct {
	db Querier
}

// NewPurchaseRepository creates a new PurchaseRepository.
func NewPurchaseRepository(db Querier) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create inserts a purchase header.
func (r *PurchaseRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Purchase) error {
	_, err := txOf(tx).Exec(ctx, createPurchase,
		p.ID,
		p.SupplierName,
		timeToPgTimestamptz(p.PurchaseDate),
		decimalToNumeric(p.TotalAmount),
		p.Notes,
		timeToPgTimestamptz(p.CreatedAt),
		timeToPgTimestamptz(p.UpdatedAt),
	)

	return err
}

// CreateLine inserts one purchase line.
func (r *PurchaseRepository) CreateLine(ctx context.Context, tx usecase.Transaction, l *domain.PurchaseLine) error {
	_, err := txOf(tx).Exec(ctx, createPurchaseLine,
		l.ID,
		l.PurchaseID,
		l.ProductID,
		l.Quantity,
		decimalToNumeric(l.UnitCost),
		decimalToNumeric(l.Subtotal),
	)

	return err
}

// Update writes the purchase header.
func (r *PurchaseRepository) Update(ctx context.Context, tx usecase.Transaction, p *domain.Purchase) error {
	tag, err := txOf(tx).Exec(ctx, updatePurchase,
		p.ID,
		p.SupplierName,
		timeToPgTimestamptz(p.PurchaseDate),
		decimalToNumeric(p.TotalAmount),
		p.Notes,
		timeToPgTimestamptz(p.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPurchaseNotFound
	}

	return nil
}

// GetByID retrieves a purchase with its lines.
func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*domain.Purchase, error) {
	return loadPurchase(ctx, r.db, getPurchaseByID, id)
}

// GetByIDForUpdate locks a purchase and loads its lines.
func (r *PurchaseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Purchase, error) {
	return loadPurchase(ctx, txOf(tx), getPurchaseByIDForUpdate, id)
}

// DeleteLines removes every line of a purchase.
func (r *PurchaseRepository) DeleteLines(ctx context.Context, tx usecase.Transaction, purchaseID string) error {
	_, err := txOf(tx).Exec(ctx, deletePurchaseLines, purchaseID)
	return err
}

// Delete removes a purchase header.
func (r *PurchaseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := txOf(tx).Exec(ctx, deletePurchase, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPurchaseNotFound
	}

	return nil
}

// List lists purchase headers, newest first.
func (r *PurchaseRepository) List(ctx context.Context, limit, offset int) ([]*domain.Purchase, error) {
	rows, err := r.db.Query(ctx, listPurchases, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanPurchase)
}

func loadPurchase(ctx context.Context, db Querier, query, id string) (*domain.Purchase, error) {
	purchase, err := scanPurchase(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, domain.ErrPurchaseNotFound)
	}

	rows, err := db.Query(ctx, getPurchaseLines, id)
	if err != nil {
		return nil, err
	}

	purchase.Lines, err = collect(rows, scanPurchaseLine)
	if err != nil {
		return nil, err
	}

	return purchase, nil
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var (
		p                          domain.Purchase
		total                      pgtype.Numeric
		purchaseDate, created, upd pgtype.Timestamptz
	)

	err := row.Scan(&p.ID, &p.SupplierName, &purchaseDate, &total, &p.Notes, &created, &upd)
	if err != nil {
		return nil, err
	}

	p.PurchaseDate = purchaseDate.Time
	p.TotalAmount = numericToDecimal(total)
	p.CreatedAt = created.Time
	p.UpdatedAt = upd.Time

	return &p, nil
}

func scanPurchaseLine(row pgx.Row) (*domain.PurchaseLine, error) {
	var (
		l              domain.PurchaseLine
		cost, subtotal pgtype.Numeric
	)

	if err := row.Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.Quantity, &cost, &subtotal); err != nil {
		return nil, err
	}

	l.UnitCost = numericToDecimal(cost)
	l.Subtotal = numericToDecimal(subtotal)

	return &l, nil
}

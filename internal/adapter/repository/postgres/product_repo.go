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

const productColumns = `id, name, category, stock_quantity, unit_price, unit_cost, active, created_at, updated_at`

const createProduct = `
INSERT INTO products (` + productColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const getProductByID = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

const getProductsByIDsForUpdate = `
SELECT ` + productColumns + ` FROM products
WHERE id = ANY($1::text[])
ORDER BY id
FOR UPDATE
`

const updateProductStock = `
UPDATE products SET stock_quantity = $2, unit_cost = $3, updated_at = $4
WHERE id = $1
`

const updateProductDetails = `
UPDATE products SET name = $2, category = $3, unit_price = $4, active = $5, updated_at = $6
WHERE id = $1
`

const deleteUnusedProduct = `
DELETE FROM products
WHERE id = $1
  AND NOT EXISTS (SELECT 1 FROM sale_details WHERE product_id = $1)
  AND NOT EXISTS (SELECT 1 FROM purchase_details WHERE product_id = $1)
`

const productExists = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

const listProducts = `
SELECT ` + productColumns + ` FROM products
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2
`

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	db Querier
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db Querier) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return insertProduct(ctx, r.db, product)
}

// CreateTx creates a new product within a transaction.
func (r *ProductRepository) CreateTx(ctx context.Context, tx usecase.Transaction, product *domain.Product) error {
	return insertProduct(ctx, txOf(tx), product)
}

func insertProduct(ctx context.Context, db Querier, p *domain.Product) error {
	_, err := db.Exec(ctx, createProduct,
		p.ID,
		p.Name,
		p.Category,
		p.StockQuantity,
		decimalToNumeric(p.UnitPrice),
		decimalToNumeric(p.UnitCost),
		p.Active,
		timeToPgTimestamptz(p.CreatedAt),
		timeToPgTimestamptz(p.UpdatedAt),
	)

	return err
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, getProductByID, id))
	if err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}

	return p, nil
}

// GetByIDsForUpdate locks the products that exist among ids, in id order.
func (r *ProductRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Product, error) {
	rows, err := txOf(tx).Query(ctx, getProductsByIDsForUpdate, ids)
	if err != nil {
		return nil, err
	}

	return collect(rows, scanProduct)
}

// UpdateStock sets quantity and unit cost.
func (r *ProductRepository) UpdateStock(ctx context.Context, tx usecase.Transaction, id string, quantity int64, unitCost decimal.Decimal, updatedAt time.Time) error {
	tag, err := txOf(tx).Exec(ctx, updateProductStock, id, quantity, decimalToNumeric(unitCost), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// UpdateDetails rewrites the catalogue fields. Stock and cost are untouched.
func (r *ProductRepository) UpdateDetails(ctx context.Context, p *domain.Product) error {
	tag, err := r.db.Exec(ctx, updateProductDetails,
		p.ID,
		p.Name,
		p.Category,
		decimalToNumeric(p.UnitPrice),
		p.Active,
		timeToPgTimestamptz(p.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// Delete removes a product that no sale or purchase line references.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return deleteGuarded(ctx, r.db, deleteUnusedProduct, productExists, id, domain.ErrProductNotFound, domain.ErrProductInUse)
}

// List lists products with pagination.
func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	rows, err := r.db.Query(ctx, listProducts, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanProduct)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                   domain.Product
		unitPrice, unitCost pgtype.Numeric
		createdAt, updated  pgtype.Timestamptz
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Category,
		&p.StockQuantity,
		&unitPrice,
		&unitCost,
		&p.Active,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	p.UnitPrice = numericToDecimal(unitPrice)
	p.UnitCost = numericToDecimal(unitCost)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updated.Time

	return &p, nil
}

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	store *Store
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

// Create stores a new product outside any transaction.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.store.write(ctx, func(st *state) error {
		return insertProduct(st, product)
	})
}

// CreateTx stores a new product within a transaction.
func (r *ProductRepository) CreateTx(_ context.Context, tx usecase.Transaction, product *domain.Product) error {
	return insertProduct(stateOf(tx), product)
}

func insertProduct(st *state, product *domain.Product) error {
	if _, ok := st.products[product.ID]; ok {
		return fmt.Errorf("memory: duplicate product id %s", product.ID)
	}

	st.products[product.ID] = *product

	return nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	var (
		p  domain.Product
		ok bool
	)

	r.store.read(func(st *state) {
		p, ok = st.products[id]
	})

	if !ok {
		return nil, domain.ErrProductNotFound
	}

	return &p, nil
}

// GetByIDsForUpdate returns the products that exist among ids. The
// transaction already holds the write slot.
func (r *ProductRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, ids []string) ([]*domain.Product, error) {
	st := stateOf(tx)

	products := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := st.products[id]; ok {
			products = append(products, &p)
		}
	}

	return products, nil
}

// UpdateStock sets quantity and unit cost.
func (r *ProductRepository) UpdateStock(_ context.Context, tx usecase.Transaction, id string, quantity int64, unitCost decimal.Decimal, updatedAt time.Time) error {
	st := stateOf(tx)

	p, ok := st.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}

	p.StockQuantity = quantity
	p.UnitCost = unitCost
	p.UpdatedAt = updatedAt
	st.products[id] = p

	return nil
}

// UpdateDetails rewrites the catalogue fields. Stock and cost are untouched.
func (r *ProductRepository) UpdateDetails(ctx context.Context, product *domain.Product) error {
	return r.store.write(ctx, func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok {
			return domain.ErrProductNotFound
		}

		p.Name = product.Name
		p.Category = product.Category
		p.UnitPrice = product.UnitPrice
		p.Active = product.Active
		p.UpdatedAt = product.UpdatedAt
		st.products[p.ID] = p

		return nil
	})
}

// Delete removes a product that no sale or purchase line references.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrProductNotFound
		}

		for _, lines := range st.saleLines {
			for _, l := range lines {
				if l.ProductID == id {
					return domain.ErrProductInUse
				}
			}
		}

		for _, lines := range st.purchaseLines {
			for _, l := range lines {
				if l.ProductID == id {
					return domain.ErrProductInUse
				}
			}
		}

		delete(st.products, id)

		return nil
	})
}

// List lists products, newest first.
func (r *ProductRepository) List(_ context.Context, limit, offset int) ([]*domain.Product, error) {
	var items []domain.Product

	r.store.read(func(st *state) {
		for _, p := range st.products {
			items = append(items, p)
		}
	})

	newestFirst(items, func(p domain.Product) (time.Time, string) { return p.CreatedAt, p.ID })

	return toPointers(page(items, limit, offset)), nil
}

func toPointers[T any](items []T) []*T {
	out := make([]*T, 0, len(items))
	for i := range items {
		item := items[i]
		out = append(out, &item)
	}

	return out
}

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// SaleRepository implements usecase.SaleRepository.
type SaleRepository struct {
	store *Store
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(store *Store) *SaleRepository {
	return &SaleRepository{store: store}
}

// Create stores a sale header.
func (r *SaleRepository) Create(_ context.Context, tx usecase.Transaction, sale *domain.Sale) error {
	st := stateOf(tx)

	if _, ok := st.sales[sale.ID]; ok {
		return fmt.Errorf("memory: duplicate sale id %s", sale.ID)
	}

	st.sales[sale.ID] = headerOf(sale)

	return nil
}

// CreateLine stores a sale line.
func (r *SaleRepository) CreateLine(_ context.Context, tx usecase.Transaction, line *domain.SaleLine) error {
	st := stateOf(tx)

	if _, ok := st.sales[line.SaleID]; !ok {
		return domain.ErrSaleNotFound
	}

	st.saleLines[line.SaleID] = append(st.saleLines[line.SaleID], *line)

	return nil
}

// Update rewrites a sale header.
func (r *SaleRepository) Update(_ context.Context, tx usecase.Transaction, sale *domain.Sale) error {
	st := stateOf(tx)

	if _, ok := st.sales[sale.ID]; !ok {
		return domain.ErrSaleNotFound
	}

	st.sales[sale.ID] = headerOf(sale)

	return nil
}

// GetByID retrieves a sale with its lines.
func (r *SaleRepository) GetByID(_ context.Context, id string) (*domain.Sale, error) {
	var (
		sale *domain.Sale
		err  error
	)

	r.store.read(func(st *state) {
		sale, err = loadSale(st, id)
	})

	return sale, err
}

// GetByIDForUpdate retrieves a sale with its lines within a transaction.
func (r *SaleRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Sale, error) {
	return loadSale(stateOf(tx), id)
}

// GetByIDsForUpdate returns the sale headers that exist among ids.
func (r *SaleRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, ids []string) ([]*domain.Sale, error) {
	st := stateOf(tx)

	sales := make([]*domain.Sale, 0, len(ids))
	for _, id := range ids {
		if s, ok := st.sales[id]; ok {
			sales = append(sales, &s)
		}
	}

	return sales, nil
}

// DeleteLines removes every line of a sale.
func (r *SaleRepository) DeleteLines(_ context.Context, tx usecase.Transaction, saleID string) error {
	delete(stateOf(tx).saleLines, saleID)

	return nil
}

// Delete removes a sale header.
func (r *SaleRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	st := stateOf(tx)

	if _, ok := st.sales[id]; !ok {
		return domain.ErrSaleNotFound
	}

	delete(st.sales, id)
	delete(st.saleLines, id)

	return nil
}

// List lists sale headers, newest first.
func (r *SaleRepository) List(_ context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	var items []domain.Sale

	r.store.read(func(st *state) {
		for _, s := range st.sales {
			if filter.TraderID != "" && s.TraderID != filter.TraderID {
				continue
			}
			items = append(items, s)
		}
	})

	newestFirst(items, func(s domain.Sale) (time.Time, string) { return s.SaleDate, s.ID })

	return toPointers(page(items, filter.Limit, filter.Offset)), nil
}

// SumByTrader returns the totals and paid amounts of a trader's sales.
func (r *SaleRepository) SumByTrader(_ context.Context, tx usecase.Transaction, traderID string) (decimal.Decimal, decimal.Decimal, error) {
	total, paid := decimal.Zero, decimal.Zero

	for _, s := range stateOf(tx).sales {
		if s.TraderID != traderID {
			continue
		}
		total = total.Add(s.TotalAmount)
		paid = paid.Add(s.PaidAmount)
	}

	return total, paid, nil
}

func headerOf(sale *domain.Sale) domain.Sale {
	h := *sale
	h.Lines = nil

	return h
}

func loadSale(st *state, id string) (*domain.Sale, error) {
	s, ok := st.sales[id]
	if !ok {
		return nil, domain.ErrSaleNotFound
	}

	lines := st.saleLines[id]
	s.Lines = make([]*domain.SaleLine, 0, len(lines))
	for i := range lines {
		line := lines[i]
		s.Lines = append(s.Lines, &line)
	}

	return &s, nil
}

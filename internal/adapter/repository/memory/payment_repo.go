package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	store *Store
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// Create stores a payment.
func (r *PaymentRepository) Create(_ context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	st := stateOf(tx)

	if _, ok := st.payments[payment.ID]; ok {
		return fmt.Errorf("memory: duplicate payment id %s", payment.ID)
	}

	st.payments[payment.ID] = *payment

	return nil
}

// Update rewrites a payment.
func (r *PaymentRepository) Update(_ context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	st := stateOf(tx)

	if _, ok := st.payments[payment.ID]; !ok {
		return domain.ErrPaymentNotFound
	}

	st.payments[payment.ID] = *payment

	return nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(_ context.Context, tx usecase.Transaction, id string) error {
	st := stateOf(tx)

	if _, ok := st.payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}

	delete(st.payments, id)

	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	var (
		p  domain.Payment
		ok bool
	)

	r.store.read(func(st *state) {
		p, ok = st.payments[id]
	})

	if !ok {
		return nil, domain.ErrPaymentNotFound
	}

	return &p, nil
}

// GetByIDForUpdate retrieves a payment within a transaction.
func (r *PaymentRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Payment, error) {
	p, ok := stateOf(tx).payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}

	return &p, nil
}

// ListBySaleForUpdate returns the payments linked to a sale.
func (r *PaymentRepository) ListBySaleForUpdate(_ context.Context, tx usecase.Transaction, saleID string) ([]*domain.Payment, error) {
	var items []domain.Payment

	for _, p := range stateOf(tx).payments {
		if p.SaleID == saleID {
			items = append(items, p)
		}
	}

	newestFirst(items, func(p domain.Payment) (time.Time, string) { return p.CreatedAt, p.ID })

	return toPointers(items), nil
}

// UnlinkSale turns a sale's payments into payments on account.
func (r *PaymentRepository) UnlinkSale(_ context.Context, tx usecase.Transaction, saleID string, updatedAt time.Time) error {
	st := stateOf(tx)

	for id, p := range st.payments {
		if p.SaleID == saleID {
			p.SaleID = ""
			p.UpdatedAt = updatedAt
			st.payments[id] = p
		}
	}

	return nil
}

// List lists payments, newest first.
func (r *PaymentRepository) List(_ context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	var items []domain.Payment

	r.store.read(func(st *state) {
		for _, p := range st.payments {
			if filter.TraderID != "" && p.TraderID != filter.TraderID {
				continue
			}
			if filter.SaleID != "" && p.SaleID != filter.SaleID {
				continue
			}
			items = append(items, p)
		}
	})

	newestFirst(items, func(p domain.Payment) (time.Time, string) { return p.PaymentDate, p.ID })

	return toPointers(page(items, filter.Limit, filter.Offset)), nil
}

// SumUnlinkedByTrader sums a trader's payments that are not applied to a sale.
func (r *PaymentRepository) SumUnlinkedByTrader(_ context.Context, tx usecase.Transaction, traderID string) (decimal.Decimal, error) {
	sum := decimal.Zero

	for _, p := range stateOf(tx).payments {
		if p.TraderID == traderID && !p.Linked() {
			sum = sum.Add(p.Amount)
		}
	}

	return sum, nil
}

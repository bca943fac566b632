package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// TraderRepository implements usecase.TraderRepository.
type TraderRepository struct {
	store *Store
}

// NewTraderRepository creates a new TraderRepository.
func NewTraderRepository(store *Store) *TraderRepository {
	return &TraderRepository{store: store}
}

// Create stores a new trader.
func (r *TraderRepository) Create(ctx context.Context, trader *domain.Trader) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.traders[trader.ID]; ok {
			return fmt.Errorf("memory: duplicate trader id %s", trader.ID)
		}

		st.traders[trader.ID] = *trader

		return nil
	})
}

// GetByID retrieves a trader by ID.
func (r *TraderRepository) GetByID(_ context.Context, id string) (*domain.Trader, error) {
	var (
		t  domain.Trader
		ok bool
	)

	r.store.read(func(st *state) {
		t, ok = st.traders[id]
	})

	if !ok {
		return nil, domain.ErrTraderNotFound
	}

	return &t, nil
}

// GetByIDForUpdate retrieves a trader within a transaction.
func (r *TraderRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Trader, error) {
	t, ok := stateOf(tx).traders[id]
	if !ok {
		return nil, domain.ErrTraderNotFound
	}

	return &t, nil
}

// GetByIDsForUpdate returns the traders that exist among ids.
func (r *TraderRepository) GetByIDsForUpdate(_ context.Context, tx usecase.Transaction, ids []string) ([]*domain.Trader, error) {
	st := stateOf(tx)

	traders := make([]*domain.Trader, 0, len(ids))
	for _, id := range ids {
		if t, ok := st.traders[id]; ok {
			traders = append(traders, &t)
		}
	}

	return traders, nil
}

// UpdateTotals writes the cached financial totals.
func (r *TraderRepository) UpdateTotals(_ context.Context, tx usecase.Transaction, id string, totals domain.TraderTotals, updatedAt time.Time) error {
	st := stateOf(tx)

	t, ok := st.traders[id]
	if !ok {
		return domain.ErrTraderNotFound
	}

	t.Apply(totals, updatedAt)
	st.traders[id] = t

	return nil
}

// UpdateDetails rewrites the contact fields. Totals are untouched.
func (r *TraderRepository) UpdateDetails(ctx context.Context, trader *domain.Trader) error {
	return r.store.write(ctx, func(st *state) error {
		t, ok := st.traders[trader.ID]
		if !ok {
			return domain.ErrTraderNotFound
		}

		t.Name = trader.Name
		t.Phone = trader.Phone
		t.Address = trader.Address
		t.Active = trader.Active
		t.UpdatedAt = trader.UpdatedAt
		st.traders[t.ID] = t

		return nil
	})
}

// Delete removes a trader with no sales, payments or ledger entries.
func (r *TraderRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.traders[id]; !ok {
			return domain.ErrTraderNotFound
		}

		for _, s := range st.sales {
			if s.TraderID == id {
				return domain.ErrTraderInUse
			}
		}

		for _, p := range st.payments {
			if p.TraderID == id {
				return domain.ErrTraderInUse
			}
		}

		for _, e := range st.entries {
			if e.TraderID == id {
				return domain.ErrTraderInUse
			}
		}

		delete(st.traders, id)

		return nil
	})
}

// List lists traders, newest first.
func (r *TraderRepository) List(_ context.Context, limit, offset int) ([]*domain.Trader, error) {
	var items []domain.Trader

	r.store.read(func(st *state) {
		for _, t := range st.traders {
			items = append(items, t)
		}
	})

	newestFirst(items, func(t domain.Trader) (time.Time, string) { return t.CreatedAt, t.ID })

	return toPointers(page(items, limit, offset)), nil
}

// ListIDs returns every trader ID in ascending order.
func (r *TraderRepository) ListIDs(_ context.Context) ([]string, error) {
	var ids []string

	r.store.read(func(st *state) {
		for id := range st.traders {
			ids = append(ids, id)
		}
	})

	sort.Strings(ids)

	return ids, nil
}

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/makhzone/internal/domain"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	store *Store
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

// Create stores an expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.expenses[expense.ID]; ok {
			return fmt.Errorf("memory: duplicate expense id %s", expense.ID)
		}

		st.expenses[expense.ID] = *expense

		return nil
	})
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	var (
		e  domain.Expense
		ok bool
	)

	r.store.read(func(st *state) {
		e, ok = st.expenses[id]
	})

	if !ok {
		return nil, domain.ErrExpenseNotFound
	}

	return &e, nil
}

// Update rewrites an expense.
func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.expenses[expense.ID]; !ok {
			return domain.ErrExpenseNotFound
		}

		st.expenses[expense.ID] = *expense

		return nil
	})
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.expenses[id]; !ok {
			return domain.ErrExpenseNotFound
		}

		delete(st.expenses, id)

		return nil
	})
}

// List lists expenses, newest first.
func (r *ExpenseRepository) List(_ context.Context, limit, offset int) ([]*domain.Expense, error) {
	var items []domain.Expense

	r.store.read(func(st *state) {
		for _, e := range st.expenses {
			items = append(items, e)
		}
	})

	newestFirst(items, func(e domain.Expense) (time.Time, string) { return e.ExpenseDate, e.ID })

	return toPointers(page(items, limit, offset)), nil
}

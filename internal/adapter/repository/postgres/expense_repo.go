package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/makhzone/internal/domain"
)

const createExpense = `
INSERT INTO expenses (id, expense_date, description, amount, created_at)
VALUES ($1, $2, $3, $4, $5)
`

const getExpenseByID = `SELECT id, expense_date, description, amount, created_at FROM expenses WHERE id = $1`

const updateExpense = `
UPDATE expenses SET expense_date = $2, description = $3, amount = $4
WHERE id = $1
`

const deleteExpense = `DELETE FROM expenses WHERE id = $1`

const listExpenses = `
SELECT id, expense_date, description, amount, created_at FROM expenses
ORDER BY expense_date DESC, id DESC
LIMIT $1 OFFSET $2
`

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db Querier
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db Querier) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create records an expense.
func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	_, err := r.db.Exec(ctx, createExpense,
		e.ID,
		timeToPgTimestamptz(e.ExpenseDate),
		e.Description,
		decimalToNumeric(e.Amount),
		timeToPgTimestamptz(e.CreatedAt),
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	e, err := scanExpense(r.db.QueryRow(ctx, getExpenseByID, id))
	if err != nil {
		return nil, notFound(err, domain.ErrExpenseNotFound)
	}

	return e, nil
}

// Update rewrites an expense.
func (r *ExpenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	tag, err := r.db.Exec(ctx, updateExpense,
		e.ID,
		timeToPgTimestamptz(e.ExpenseDate),
		e.Description,
		decimalToNumeric(e.Amount),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// Delete removes an expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteExpense, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// List lists expenses, newest first.
func (r *ExpenseRepository) List(ctx context.Context, limit, offset int) ([]*domain.Expense, error) {
	rows, err := r.db.Query(ctx, listExpenses, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}

	return collect(rows, scanExpense)
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		e                    domain.Expense
		amount               pgtype.Numeric
		expenseDate, created pgtype.Timestamptz
	)

	if err := row.Scan(&e.ID, &expenseDate, &e.Description, &amount, &created); err != nil {
		return nil, err
	}

	e.ExpenseDate = expenseDate.Time
	e.Amount = numericToDecimal(amount)
	e.CreatedAt = created.Time

	return &e, nil
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/domain"
)

// ExpenseUseCase records operating expenses.
type ExpenseUseCase struct {
	expenseRepo ExpenseRepository
	idGen       IDGenerator
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(expenseRepo ExpenseRepository, idGen IDGenerator) *ExpenseUseCase {
	return &ExpenseUseCase{
		expenseRepo: expenseRepo,
		idGen:       idGen,
	}
}

// CreateExpenseInput represents input for recording an expense.
type CreateExpenseInput struct {
	ExpenseDate *time.Time
	Description string
	Amount      decimal.Decimal
}

// CreateExpense records an expense.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateName("description", input.Description); err != nil {
		return nil, err
	}

	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		ExpenseDate: dateOr(input.ExpenseDate, now),
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		CreatedAt:   now,
	}

	if err := uc.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// GetExpense retrieves an expense by ID.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return uc.expenseRepo.GetByID(ctx, id)
}

// UpdateExpenseInput represents input for correcting an expense.
type UpdateExpenseInput struct {
	ExpenseID   string
	ExpenseDate *time.Time
	Description string
	Amount      decimal.Decimal
}

// UpdateExpense rewrites an expense. A nil ExpenseDate keeps the recorded date.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateName("description", input.Description); err != nil {
		return nil, err
	}

	if err := domain.ValidatePositiveAmount(input.Amount); err != nil {
		return nil, err
	}

	expense, err := uc.expenseRepo.GetByID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}

	expense.ExpenseDate = dateOr(input.ExpenseDate, expense.ExpenseDate)
	expense.Description = strings.TrimSpace(input.Description)
	expense.Amount = input.Amount

	if err := uc.expenseRepo.Update(ctx, expense); err != nil {
		return nil, err
	}

	return expense, nil
}

// DeleteExpense removes an expense.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, id string) error {
	if _, err := uc.expenseRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.expenseRepo.Delete(ctx, id)
}

// ListExpenses lists expenses, newest first.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, limit, offset int) ([]*domain.Expense, error) {
	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.expenseRepo.List(ctx, limit, offset)
}

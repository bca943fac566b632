package handler

import (
	"context"
	"net/http"

	"github.com/iho/makhzone/internal/adapter/http/dto"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// ProductService defines the behavior needed by ProductHandler.
type ProductService interface {
	CreateProduct(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, input usecase.UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error)
}

// ProductHandler handles product catalogue requests.
type ProductHandler struct {
	productUC ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productUC ProductService) *ProductHandler {
	return &ProductHandler{productUC: productUC}
}

// Create adds a product with no stock.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	product, err := h.productUC.CreateProduct(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create product", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ProductFromDomain(product))
}

// Get retrieves a product.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	product, err := h.productUC.GetProduct(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get product", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductFromDomain(product))
}

// Update rewrites a product's catalogue fields.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	product, err := h.productUC.UpdateProduct(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to update product", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ProductFromDomain(product))
}

// Delete removes an unreferenced product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	if err := h.productUC.DeleteProduct(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete product", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	products, err := h.productUC.ListProducts(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list products", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.ProductsFromDomain(products), limit, offset))
}

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error)
	GetExpense(ctx context.Context, id string) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, input usecase.UpdateExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, limit, offset int) ([]*domain.Expense, error)
}

// ExpenseHandler handles expense requests.
type ExpenseHandler struct {
	expenseUC ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseUC ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseUC: expenseUC}
}

// Create records an expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.expenseUC.CreateExpense(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// Get retrieves an expense.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "expense")
	if !ok {
		return
	}

	expense, err := h.expenseUC.GetExpense(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Update corrects an expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "expense")
	if !ok {
		return
	}

	var req dto.UpdateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	expense, err := h.expenseUC.UpdateExpense(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to update expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "expense")
	if !ok {
		return
	}

	if err := h.expenseUC.DeleteExpense(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete expense", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	expenses, err := h.expenseUC.ListExpenses(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.ExpensesFromDomain(expenses), limit, offset))
}

// DashboardService defines the behavior needed by DashboardHandler.
type DashboardService interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
}

// DashboardHandler serves summary statistics.
type DashboardHandler struct {
	dashboardUC DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardUC DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardUC: dashboardUC}
}

// Stats returns the dashboard figures.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardUC.GetStats(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get dashboard stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardStatsFromDomain(stats))
}

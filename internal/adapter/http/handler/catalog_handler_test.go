package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/makhzone/internal/adapter/http/dto"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

type productServiceStub struct {
	updateFn func(ctx context.Context, input usecase.UpdateProductInput) (*domain.Product, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *productServiceStub) CreateProduct(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p1", Name: input.Name, UnitPrice: input.UnitPrice}, nil
}

func (s *productServiceStub) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return nil, domain.ErrProductNotFound
}

func (s *productServiceStub) UpdateProduct(ctx context.Context, input usecase.UpdateProductInput) (*domain.Product, error) {
	return s.updateFn(ctx, input)
}

func (s *productServiceStub) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *productServiceStub) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	return []*domain.Product{}, nil
}

type expenseServiceStub struct {
	deleteErr error
	getFn     func(ctx context.Context, id string) (*domain.Expense, error)
	updateFn  func(ctx context.Context, input usecase.UpdateExpenseInput) (*domain.Expense, error)
}

func (s *expenseServiceStub) CreateExpense(ctx context.Context, input usecase.CreateExpenseInput) (*domain.Expense, error) {
	return &domain.Expense{ID: "x1", Description: input.Description, Amount: input.Amount}, nil
}

func (s *expenseServiceStub) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	return s.getFn(ctx, id)
}

func (s *expenseServiceStub) UpdateExpense(ctx context.Context, input usecase.UpdateExpenseInput) (*domain.Expense, error) {
	return s.updateFn(ctx, input)
}

func (s *expenseServiceStub) DeleteExpense(ctx context.Context, id string) error {
	return s.deleteErr
}

func (s *expenseServiceStub) ListExpenses(ctx context.Context, limit, offset int) ([]*domain.Expense, error) {
	return []*domain.Expense{}, nil
}

type dashboardServiceStub struct{}

func (dashboardServiceStub) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{TotalProducts: 2, NetProfit: decimal.NewFromInt(70)}, nil
}

func TestExpenseHandler(t *testing.T) {
	handler := NewExpenseHandler(&expenseServiceStub{deleteErr: domain.ErrExpenseNotFound})

	req := httptest.NewRequest(http.MethodPost, "/expenses", bytes.NewBufferString(`{"description":"rent","amount":"50"}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	req = setChiURLParam(httptest.NewRequest(http.MethodDelete, "/expenses/x", nil), "id", "x")
	rec = httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/expenses", nil))

	resp := decodeBody[dto.ListResponse[dto.ExpenseResponse]](t, rec)
	if resp.Items == nil || resp.Limit != defaultPageSize {
		t.Fatalf("unexpected list response: %+v", resp)
	}
}

func TestProductHandler_UpdateUsesPathID(t *testing.T) {
	var captured usecase.UpdateProductInput
	handler := NewProductHandler(&productServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateProductInput) (*domain.Product, error) {
			captured = input
			return &domain.Product{ID: input.ProductID, Name: input.Name, UnitPrice: input.UnitPrice, StockQuantity: 7}, nil
		},
	})

	body := `{"name":"Bolt M8","unit_price":"3.25","active":false}`
	req := setChiURLParam(httptest.NewRequest(http.MethodPut, "/products/p1", bytes.NewBufferString(body)), "id", "p1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.ProductID != "p1" || captured.Active == nil || *captured.Active {
		t.Fatalf("unexpected input: %+v", captured)
	}

	resp := decodeBody[dto.ProductResponse](t, rec)
	if resp.Name != "Bolt M8" || resp.StockQuantity != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestProductHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unused", nil, http.StatusNoContent},
		{"referenced by lines", domain.ErrProductInUse, http.StatusConflict},
		{"missing", domain.ErrProductNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewProductHandler(&productServiceStub{
				deleteFn: func(ctx context.Context, id string) error { return tt.err },
			})

			req := setChiURLParam(httptest.NewRequest(http.MethodDelete, "/products/p1", nil), "id", "p1")
			rec := httptest.NewRecorder()

			handler.Delete(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestExpenseHandler_GetAndUpdate(t *testing.T) {
	handler := NewExpenseHandler(&expenseServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Expense, error) {
			if id != "x1" {
				return nil, domain.ErrExpenseNotFound
			}
			return &domain.Expense{ID: "x1", Description: "rent", Amount: decimal.NewFromInt(50)}, nil
		},
		updateFn: func(ctx context.Context, input usecase.UpdateExpenseInput) (*domain.Expense, error) {
			return &domain.Expense{ID: input.ExpenseID, Description: input.Description, Amount: input.Amount}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, setChiURLParam(httptest.NewRequest(http.MethodGet, "/expenses/x1", nil), "id", "x1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Get(rec, setChiURLParam(httptest.NewRequest(http.MethodGet, "/expenses/x2", nil), "id", "x2"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	body := `{"description":"rent march","amount":"75.5"}`
	rec = httptest.NewRecorder()
	handler.Update(rec, setChiURLParam(httptest.NewRequest(http.MethodPut, "/expenses/x1", bytes.NewBufferString(body)), "id", "x1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[dto.ExpenseResponse](t, rec)
	if resp.ID != "x1" || resp.Description != "rent march" || resp.Amount != "75.5" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDashboardHandler_Stats(t *testing.T) {
	rec := httptest.NewRecorder()
	NewDashboardHandler(dashboardServiceStub{}).Stats(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))

	resp := decodeBody[dto.DashboardStatsResponse](t, rec)
	if resp.TotalProducts != 2 || resp.NetProfit != "70" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

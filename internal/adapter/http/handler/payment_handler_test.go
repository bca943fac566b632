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

type paymentServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreatePaymentInput) (*usecase.PaymentResult, error)
	updateFn func(ctx context.Context, input usecase.UpdatePaymentInput) (*usecase.PaymentResult, error)
	deleteFn func(ctx context.Context, paymentID string) (*usecase.PaymentResult, error)
	getFn    func(ctx context.Context, id string) (*domain.Payment, error)
	listFn   func(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error)
}

func (s *paymentServiceStub) CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*usecase.PaymentResult, error) {
	return s.createFn(ctx, input)
}

func (s *paymentServiceStub) UpdatePayment(ctx context.Context, input usecase.UpdatePaymentInput) (*usecase.PaymentResult, error) {
	return s.updateFn(ctx, input)
}

func (s *paymentServiceStub) DeletePayment(ctx context.Context, paymentID string) (*usecase.PaymentResult, error) {
	return s.deleteFn(ctx, paymentID)
}

func (s *paymentServiceStub) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return s.getFn(ctx, id)
}

func (s *paymentServiceStub) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
	return s.listFn(ctx, filter)
}

func paymentResult(amount int64) *usecase.PaymentResult {
	return &usecase.PaymentResult{
		Payment: &domain.Payment{ID: "pay1", TraderID: "t1", Amount: decimal.NewFromInt(amount), Source: domain.PaymentSourceManual},
		Totals:  domain.NewTraderTotals(decimal.NewFromInt(300), decimal.NewFromInt(amount)),
	}
}

func TestPaymentHandler_Create(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePaymentInput) (*usecase.PaymentResult, error) {
			if input.TraderID != "t1" || !input.Amount.Equal(decimal.NewFromInt(40)) {
				t.Fatalf("unexpected input: %+v", input)
			}
			return paymentResult(40), nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(`{"trader_id":"t1","amount":"40"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[dto.PaymentResultResponse](t, rec)
	if resp.Payment.Amount != "40" || resp.Trader.Balance != "260" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPaymentHandler_Create_SaleMismatch(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		createFn: func(ctx context.Context, input usecase.CreatePaymentInput) (*usecase.PaymentResult, error) {
			return nil, domain.ErrSaleTraderMismatch
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(`{"trader_id":"t2","sale_id":"s1","amount":"40"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPaymentHandler_UpdateAndDelete(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdatePaymentInput) (*usecase.PaymentResult, error) {
			if input.PaymentID != "pay1" || input.SaleID != "" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return paymentResult(70), nil
		},
		deleteFn: func(ctx context.Context, paymentID string) (*usecase.PaymentResult, error) {
			return paymentResult(0), nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodPut, "/payments/pay1", bytes.NewBufferString(`{"amount":"70"}`)), "id", "pay1")
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from update, got %d", rec.Code)
	}

	req = setChiURLParam(httptest.NewRequest(http.MethodDelete, "/payments/pay1", nil), "id", "pay1")
	rec = httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from delete, got %d", rec.Code)
	}
}

func TestPaymentHandler_ListByTrader(t *testing.T) {
	handler := NewPaymentHandler(&paymentServiceStub{
		listFn: func(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error) {
			if filter.TraderID != "t1" || filter.SaleID != "s1" {
				t.Fatalf("unexpected filter: %+v", filter)
			}
			return []*domain.Payment{paymentResult(10).Payment}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/traders/t1/payments?sale_id=s1", nil), "id", "t1")
	rec := httptest.NewRecorder()

	handler.ListByTrader(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

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

type traderServiceStub struct {
	createFn       func(ctx context.Context, input usecase.CreateTraderInput) (*domain.Trader, error)
	getFn          func(ctx context.Context, id string) (*domain.Trader, error)
	updateFn       func(ctx context.Context, input usecase.UpdateTraderInput) (*domain.Trader, error)
	deleteFn       func(ctx context.Context, id string) error
	listFn         func(ctx context.Context, limit, offset int) ([]*domain.Trader, error)
	entriesFn      func(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error)
	balanceFn      func(ctx context.Context, traderID string) (*usecase.TraderBalance, error)
	reconcileFn    func(ctx context.Context, traderID string) (*usecase.ReconciliationResult, error)
	reconcileAllFn func(ctx context.Context) (*usecase.ReconciliationReport, error)
}

func (s *traderServiceStub) CreateTrader(ctx context.Context, input usecase.CreateTraderInput) (*domain.Trader, error) {
	return s.createFn(ctx, input)
}

func (s *traderServiceStub) GetTrader(ctx context.Context, id string) (*domain.Trader, error) {
	return s.getFn(ctx, id)
}

func (s *traderServiceStub) UpdateTrader(ctx context.Context, input usecase.UpdateTraderInput) (*domain.Trader, error) {
	return s.updateFn(ctx, input)
}

func (s *traderServiceStub) DeleteTrader(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *traderServiceStub) ListTraders(ctx context.Context, limit, offset int) ([]*domain.Trader, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *traderServiceStub) ListFinancialEntries(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error) {
	return s.entriesFn(ctx, traderID, limit, offset)
}

func (s *traderServiceStub) GetTraderBalance(ctx context.Context, traderID string) (*usecase.TraderBalance, error) {
	return s.balanceFn(ctx, traderID)
}

func (s *traderServiceStub) ReconcileTrader(ctx context.Context, traderID string) (*usecase.ReconciliationResult, error) {
	return s.reconcileFn(ctx, traderID)
}

func (s *traderServiceStub) ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error) {
	return s.reconcileAllFn(ctx)
}

func TestTraderHandler_Create(t *testing.T) {
	handler := NewTraderHandler(&traderServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTraderInput) (*domain.Trader, error) {
			return &domain.Trader{ID: "t1", Name: input.Name, Active: true}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/traders", bytes.NewBufferString(`{"name":"Ali","phone":"555"}`))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeBody[dto.TraderResponse](t, rec)
	if resp.Name != "Ali" || resp.Balance != "0" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTraderHandler_Balance(t *testing.T) {
	handler := NewTraderHandler(&traderServiceStub{
		balanceFn: func(ctx context.Context, traderID string) (*usecase.TraderBalance, error) {
			return &usecase.TraderBalance{
				TraderID:      traderID,
				Balance:       decimal.NewFromInt(200),
				TotalSales:    decimal.NewFromInt(300),
				TotalPayments: decimal.NewFromInt(100),
			}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/traders/t1/balance", nil), "id", "t1")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeBody[dto.TraderBalanceResponse](t, rec)
	if resp.TraderID != "t1" || resp.Balance != "200" || resp.LastEntry != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTraderHandler_Balance_NotFound(t *testing.T) {
	handler := NewTraderHandler(&traderServiceStub{
		balanceFn: func(ctx context.Context, traderID string) (*usecase.TraderBalance, error) {
			return nil, domain.ErrTraderNotFound
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/traders/x/balance", nil), "id", "x")
	rec := httptest.NewRecorder()

	handler.Balance(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTraderHandler_Financials(t *testing.T) {
	handler := NewTraderHandler(&traderServiceStub{
		entriesFn: func(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error) {
			return []*domain.TraderFinancialEntry{
				{ID: "e2", Seq: 2, TraderID: traderID, Type: domain.EntryTypeSale},
				{ID: "e1", Seq: 1, TraderID: traderID, Type: domain.EntryTypeSale},
			}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/traders/t1/financials", nil), "id", "t1")
	rec := httptest.NewRecorder()

	handler.Financials(rec, req)

	resp := decodeBody[dto.ListResponse[dto.FinancialEntryResponse]](t, rec)
	if len(resp.Items) != 2 || resp.Items[0].Seq != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTraderHandler_Reconcile(t *testing.T) {
	handler := NewTraderHandler(&traderServiceStub{
		reconcileFn: func(ctx context.Context, traderID string) (*usecase.ReconciliationResult, error) {
			return &usecase.ReconciliationResult{
				TraderID:   traderID,
				Recorded:   domain.NewTraderTotals(decimal.NewFromInt(110), decimal.Zero),
				Replayed:   domain.NewTraderTotals(decimal.NewFromInt(100), decimal.Zero),
				Difference: decimal.NewFromInt(10),
			}, nil
		},
		reconcileAllFn: func(ctx context.Context) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{TotalTraders: 1, ReconciledTraders: 1}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/traders/t1/reconciliation", nil), "id", "t1")
	rec := httptest.NewRecorder()
	handler.Reconcile(rec, req)

	resp := decodeBody[dto.ReconciliationResponse](t, rec)
	if resp.IsReconciled || resp.Difference != "10" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.ReconcileAll(rec, httptest.NewRequest(http.MethodGet, "/reconciliation", nil))

	report := decodeBody[dto.ReconciliationReportResponse](t, rec)
	if report.TotalTraders != 1 || len(report.Discrepancies) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestTraderHandler_UpdateUsesPathID(t *testing.T) {
	var captured usecase.UpdateTraderInput
	handler := NewTraderHandler(&traderServiceStub{
		updateFn: func(ctx context.Context, input usecase.UpdateTraderInput) (*domain.Trader, error) {
			captured = input
			return &domain.Trader{ID: input.TraderID, Name: input.Name, Phone: input.Phone, Balance: decimal.NewFromInt(120)}, nil
		},
	})

	body := `{"name":"Samir Stores","phone":"0555"}`
	req := setChiURLParam(httptest.NewRequest(http.MethodPut, "/traders/t1", bytes.NewBufferString(body)), "id", "t1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.TraderID != "t1" || captured.Active != nil {
		t.Fatalf("unexpected input: %+v", captured)
	}

	resp := decodeBody[dto.TraderResponse](t, rec)
	if resp.Name != "Samir Stores" || resp.Balance != "120" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestTraderHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no activity", nil, http.StatusNoContent},
		{"has activity", domain.ErrTraderInUse, http.StatusConflict},
		{"missing", domain.ErrTraderNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTraderHandler(&traderServiceStub{
				deleteFn: func(ctx context.Context, id string) error { return tt.err },
			})

			req := setChiURLParam(httptest.NewRequest(http.MethodDelete, "/traders/t1", nil), "id", "t1")
			rec := httptest.NewRecorder()

			handler.Delete(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

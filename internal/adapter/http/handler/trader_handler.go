package handler

import (
	"context"
	"net/http"

	"github.com/iho/makhzone/internal/adapter/http/dto"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// TraderService defines the behavior needed by TraderHandler.
type TraderService interface {
	CreateTrader(ctx context.Context, input usecase.CreateTraderInput) (*domain.Trader, error)
	GetTrader(ctx context.Context, id string) (*domain.Trader, error)
	UpdateTrader(ctx context.Context, input usecase.UpdateTraderInput) (*domain.Trader, error)
	DeleteTrader(ctx context.Context, id string) error
	ListTraders(ctx context.Context, limit, offset int) ([]*domain.Trader, error)
	ListFinancialEntries(ctx context.Context, traderID string, limit, offset int) ([]*domain.TraderFinancialEntry, error)
	GetTraderBalance(ctx context.Context, traderID string) (*usecase.TraderBalance, error)
	ReconcileTrader(ctx context.Context, traderID string) (*usecase.ReconciliationResult, error)
	ReconcileAll(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// TraderHandler handles trader-related HTTP requests.
type TraderHandler struct {
	traderUC TraderService
}

// NewTraderHandler creates a new TraderHandler.
func NewTraderHandler(traderUC TraderService) *TraderHandler {
	return &TraderHandler{traderUC: traderUC}
}

// Create registers a trader.
func (h *TraderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTraderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	trader, err := h.traderUC.CreateTrader(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create trader", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TraderFromDomain(trader))
}

// Get retrieves a trader.
func (h *TraderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	trader, err := h.traderUC.GetTrader(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get trader", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TraderFromDomain(trader))
}

// Update rewrites a trader's contact fields.
func (h *TraderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	var req dto.UpdateTraderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	trader, err := h.traderUC.UpdateTrader(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to update trader", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TraderFromDomain(trader))
}

// Delete removes a trader with no activity.
func (h *TraderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	if err := h.traderUC.DeleteTrader(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete trader", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists traders.
func (h *TraderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	traders, err := h.traderUC.ListTraders(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list traders", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.TradersFromDomain(traders), limit, offset))
}

// Balance returns the trader's balance projection.
func (h *TraderHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	balance, err := h.traderUC.GetTraderBalance(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get trader balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TraderBalanceFromUseCase(balance))
}

// Financials lists the trader's ledger history, newest first.
func (h *TraderHandler) Financials(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	limit, offset := pageParams(r)

	entries, err := h.traderUC.ListFinancialEntries(r.Context(), id, limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list financial entries", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.FinancialEntriesFromDomain(entries), limit, offset))
}

// Reconcile replays one trader's history.
func (h *TraderHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	result, err := h.traderUC.ReconcileTrader(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to reconcile trader", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// ReconcileAll replays every trader's history.
func (h *TraderHandler) ReconcileAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.traderUC.ReconcileAll(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to reconcile traders", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

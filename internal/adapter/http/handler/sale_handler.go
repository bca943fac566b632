package handler

import (
	"context"
	"net/http"

	"github.com/iho/makhzone/internal/adapter/http/dto"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// SaleService defines the behavior needed by SaleHandler.
type SaleService interface {
	CreateSale(ctx context.Context, input usecase.CreateSaleInput) (*usecase.SaleResult, error)
	UpdateSale(ctx context.Context, input usecase.UpdateSaleInput) (*usecase.SaleResult, error)
	DeleteSale(ctx context.Context, saleID string) (*usecase.DeleteSaleResult, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error)
}

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	saleUC SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(saleUC SaleService) *SaleHandler {
	return &SaleHandler{saleUC: saleUC}
}

// Create records a sale.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.saleUC.CreateSale(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create sale", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SaleResultFromUseCase(result))
}

// Update replaces a sale.
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sale")
	if !ok {
		return
	}

	var req dto.UpdateSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.saleUC.UpdateSale(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to update sale", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleResultFromUseCase(result))
}

// Delete removes a sale, restocking its products.
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sale")
	if !ok {
		return
	}

	result, err := h.saleUC.DeleteSale(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to delete sale", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteSaleFromUseCase(result))
}

// Get retrieves a sale with its lines.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "sale")
	if !ok {
		return
	}

	sale, err := h.saleUC.GetSale(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get sale", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SaleFromDomain(sale))
}

// List lists sales, optionally for one trader.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	sales, err := h.saleUC.ListSales(r.Context(), domain.SaleFilter{
		TraderID: r.URL.Query().Get("trader_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list sales", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.SalesFromDomain(sales), limit, offset))
}

package handler

import (
	"context"
	"net/http"

	"github.com/iho/makhzone/internal/adapter/http/dto"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// PurchaseService defines the behavior needed by PurchaseHandler.
type PurchaseService interface {
	CreatePurchase(ctx context.Context, input usecase.CreatePurchaseInput) (*domain.Purchase, error)
	UpdatePurchase(ctx context.Context, input usecase.UpdatePurchaseInput) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, purchaseID string) error
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, limit, offset int) ([]*domain.Purchase, error)
}

// PurchaseHandler handles purchase-related HTTP requests.
type PurchaseHandler struct {
	purchaseUC PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseUC PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseUC: purchaseUC}
}

// Create records a purchase and receives its stock.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	purchase, err := h.purchaseUC.CreatePurchase(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create purchase", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PurchaseFromDomain(purchase))
}

// Update replaces a purchase.
func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	var req dto.UpdatePurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	purchase, err := h.purchaseUC.UpdatePurchase(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to update purchase", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PurchaseFromDomain(purchase))
}

// Delete removes a purchase and reverses its stock.
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	if err := h.purchaseUC.DeletePurchase(r.Context(), id); err != nil {
		writeDomainError(w, r, "failed to delete purchase", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get retrieves a purchase with its lines.
func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseUC.GetPurchase(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get purchase", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PurchaseFromDomain(purchase))
}

// List lists purchases.
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	purchases, err := h.purchaseUC.ListPurchases(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, "failed to list purchases", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.PurchasesFromDomain(purchases), limit, offset))
}

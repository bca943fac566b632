package handler

import (
	"context"
	"net/http"

	"github.com/iho/makhzone/internal/adapter/http/dto"
	"github.com/iho/makhzone/internal/domain"
	"github.com/iho/makhzone/internal/usecase"
)

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*usecase.PaymentResult, error)
	UpdatePayment(ctx context.Context, input usecase.UpdatePaymentInput) (*usecase.PaymentResult, error)
	DeletePayment(ctx context.Context, paymentID string) (*usecase.PaymentResult, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create records a payment.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.CreatePayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentResultFromUseCase(result))
}

// Update changes a payment.
func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.UpdatePayment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to update payment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentResultFromUseCase(result))
}

// Delete removes a payment.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}

	result, err := h.paymentUC.DeletePayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to delete payment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentResultFromUseCase(result))
}

// Get retrieves a payment.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}

	payment, err := h.paymentUC.GetPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get payment", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// List lists payments filtered by trader_id and sale_id.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, r.URL.Query().Get("trader_id"))
}

// ListByTrader lists a trader's payments.
func (h *PaymentHandler) ListByTrader(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "trader")
	if !ok {
		return
	}

	h.list(w, r, id)
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request, traderID string) {
	limit, offset := pageParams(r)

	payments, err := h.paymentUC.ListPayments(r.Context(), domain.PaymentFilter{
		TraderID: traderID,
		SaleID:   r.URL.Query().Get("sale_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeDomainError(w, r, "failed to list payments", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse(dto.PaymentsFromDomain(payments), limit, offset))
}

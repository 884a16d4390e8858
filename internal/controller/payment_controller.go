package controller

import (
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/middleware"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	createUC *appPayment.CreatePaymentUseCase
	retryUC  *appPayment.RetryPaymentUseCase
	listUC   *appPayment.ListPaymentsUseCase
	getUC    *appPayment.GetPaymentUseCase
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(
	createUC *appPayment.CreatePaymentUseCase,
	retryUC *appPayment.RetryPaymentUseCase,
	listUC *appPayment.ListPaymentsUseCase,
	getUC *appPayment.GetPaymentUseCase,
) *PaymentController {
	return &PaymentController{
		createUC: createUC,
		retryUC:  retryUC,
		listUC:   listUC,
		getUC:    getUC,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		writeError(w, domainErrors.NewValidationError("provider_id", "must be a UUID"))
		return
	}

	id, err := h.createUC.Execute(r.Context(), appPayment.CreatePaymentRequest{
		ProviderID:  providerID,
		AmountCents: int64(math.Round(req.Amount * 100)),
		Currency:    req.Currency,
		Reference:   req.Reference,
	}, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, CreatePaymentResponse{ID: id.String()})
}

// ListPayments handles GET /api/v1/payments
func (h *PaymentController) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	payments, err := h.listUC.Execute(r.Context(), userID, middleware.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponses(payments))
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *PaymentController) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domainErrors.NewValidationError("id", "must be a UUID"))
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, domainErrors.ErrUnauthorized)
		return
	}

	p, err := h.getUC.Execute(r.Context(), paymentID, userID, middleware.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

// RetryPayment handles POST /api/v1/payments/{id}/retry
func (h *PaymentController) RetryPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domainErrors.NewValidationError("id", "must be a UUID"))
		return
	}

	if err := h.retryUC.Execute(r.Context(), paymentID, middleware.IsAdmin(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appProvider "github.com/lucashq/payflow/internal/application/provider"
	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/middleware"
)

// ProviderController handles provider-catalog admin requests.
type ProviderController struct {
	manageUC *appProvider.ManageProvidersUseCase
}

// NewProviderController creates a new ProviderController.
func NewProviderController(manageUC *appProvider.ManageProvidersUseCase) *ProviderController {
	return &ProviderController{manageUC: manageUC}
}

// ListProviders handles GET /api/v1/providers
func (h *ProviderController) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.manageUC.List(r.Context(), middleware.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]ProviderResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, toProviderResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateProvider handles POST /api/v1/providers
func (h *ProviderController) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req CreateProviderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.manageUC.Create(r.Context(), middleware.IsAdmin(r.Context()), req.Name, req.Endpoint)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProviderResponse(p))
}

// UpdateProvider handles PUT /api/v1/providers/{id}
func (h *ProviderController) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domainErrors.NewValidationError("id", "must be a UUID"))
		return
	}

	var req UpdateProviderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.manageUC.Update(r.Context(), middleware.IsAdmin(r.Context()), id, req.Name, req.Endpoint, req.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProviderResponse(p))
}

// DeleteProvider handles DELETE /api/v1/providers/{id}
func (h *ProviderController) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domainErrors.NewValidationError("id", "must be a UUID"))
		return
	}

	if err := h.manageUC.Delete(r.Context(), middleware.IsAdmin(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

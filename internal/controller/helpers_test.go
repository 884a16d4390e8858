package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
)

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"payment not found", domainErrors.ErrPaymentNotFound, http.StatusNotFound, "not_found"},
		{"provider not found", domainErrors.ErrProviderNotFound, http.StatusNotFound, "provider_not_found"},
		{"provider inactive", domainErrors.ErrProviderInactive, http.StatusUnprocessableEntity, "provider_inactive"},
		{"not retryable", domainErrors.ErrNotRetryable, http.StatusConflict, "not_retryable"},
		{"max attempts", domainErrors.ErrMaxAttemptsReached, http.StatusConflict, "max_attempts_reached"},
		{"invalid transition", domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
		{"unauthorized", domainErrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", domainErrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"validation", domainErrors.NewValidationError("amount", "must be greater than 0"), http.StatusBadRequest, "validation_error"},
		{"unknown", errors.New("pg connection refused"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			if rec.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, rec.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, resp.Code)
			}
		})
	}
}

func TestWriteError_WrappedErrorStillMaps(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.Join(errors.New("context"), domainErrors.ErrPaymentNotFound))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for wrapped sentinel, got %d", rec.Code)
	}
}

func TestWriteError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error != "internal server error" {
		t.Errorf("internal detail leaked: %q", resp.Error)
	}
}

package controller

import (
	"time"

	"github.com/lucashq/payflow/internal/domain/payment"
	"github.com/lucashq/payflow/internal/domain/provider"
)

// --- Request DTOs ---
// DTOs handle HTTP/JSON concerns (float64 for money, strings for IDs,
// validation tags). Controllers convert these to application-layer requests
// before calling business logic.

// CreatePaymentRequest holds the input for creating a payment.
type CreatePaymentRequest struct {
	ProviderID string  `json:"provider_id" validate:"required,uuid"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
	Reference  string  `json:"reference,omitempty"`
}

// CreateProviderRequest holds the input for registering a provider.
type CreateProviderRequest struct {
	Name     string `json:"name" validate:"required"`
	Endpoint string `json:"endpoint" validate:"required,url"`
}

// UpdateProviderRequest holds the input for updating a provider.
type UpdateProviderRequest struct {
	Name     string `json:"name,omitempty"`
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"`
	IsActive bool   `json:"is_active"`
}

// --- Response DTOs ---

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CreatePaymentResponse returns the new payment id.
type CreatePaymentResponse struct {
	ID string `json:"id"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	ProviderID   string     `json:"provider_id"`
	Amount       string     `json:"amount"`
	Currency     string     `json:"currency"`
	Reference    string     `json:"reference"`
	Status       string     `json:"status"`
	AttemptCount int        `json:"attempt_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastTriedAt  *time.Time `json:"last_tried_at,omitempty"`
	LastError    *string    `json:"last_error,omitempty"`
}

// ProviderResponse represents a provider in API responses.
type ProviderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Endpoint  string    `json:"endpoint"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID.String(),
		UserID:       p.UserID.String(),
		ProviderID:   p.ProviderID.String(),
		Amount:       p.Amount(),
		Currency:     p.Currency,
		Reference:    p.Reference,
		Status:       string(p.Status),
		AttemptCount: p.AttemptCount,
		CreatedAt:    p.CreatedAt,
		LastTriedAt:  p.LastTriedAt,
		LastError:    p.LastError,
	}
}

func toPaymentResponses(payments []*payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out
}

func toProviderResponse(p *provider.Provider) ProviderResponse {
	return ProviderResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Endpoint:  p.Endpoint,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lucashq/payflow/internal/domain/payment"
	"github.com/lucashq/payflow/internal/domain/provider"
)

// NewTestPayment returns a pending payment with sane defaults.
func NewTestPayment(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := payment.New(uuid.New(), uuid.New(), 2599, "USD", "order-1234")
	if err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}

// NewFailedPayment returns a payment that already failed attemptCount times.
func NewFailedPayment(t *testing.T, attemptCount int) *payment.Payment {
	t.Helper()
	p := NewTestPayment(t)
	tried := time.Now().UTC().Add(-time.Minute)
	cause := "card declined"
	p.Status = payment.StatusFailed
	p.AttemptCount = attemptCount
	p.LastTriedAt = &tried
	p.LastError = &cause
	return p
}

// NewTestProvider returns an active provider.
func NewTestProvider(t *testing.T) *provider.Provider {
	t.Helper()
	prov, err := provider.New("stripe-sandbox", "https://gw.example.com/pay")
	if err != nil {
		t.Fatalf("failed to create test provider: %v", err)
	}
	return prov
}

package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
)

// MockGateway is a configurable in-process gateway for tests and local runs.
type MockGateway struct {
	failureRate float64 // 0.0 to 1.0: reported (business) failures
	errorRate   float64 // 0.0 to 1.0: transport-level errors
	latency     time.Duration
	failError   string
}

// MockGatewayOption configures a MockGateway.
type MockGatewayOption func(*MockGateway)

// WithFailureRate makes the gateway report a business failure at this rate.
func WithFailureRate(rate float64) MockGatewayOption {
	return func(g *MockGateway) { g.failureRate = rate }
}

// WithErrorRate makes the gateway return a transport error at this rate.
func WithErrorRate(rate float64) MockGatewayOption {
	return func(g *MockGateway) { g.errorRate = rate }
}

// WithLatency simulates provider latency.
func WithLatency(d time.Duration) MockGatewayOption {
	return func(g *MockGateway) { g.latency = d }
}

// WithFailureError sets the error text reported on a business failure.
func WithFailureError(msg string) MockGatewayOption {
	return func(g *MockGateway) { g.failError = msg }
}

// NewMockGateway creates a gateway that succeeds unless configured otherwise.
func NewMockGateway(opts ...MockGatewayOption) *MockGateway {
	g := &MockGateway{failError: "card declined"}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Pay simulates one provider call.
func (g *MockGateway) Pay(ctx context.Context, req appPayment.GatewayRequest) (*appPayment.GatewayResult, error) {
	if g.latency > 0 {
		select {
		case <-time.After(g.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if rand.Float64() < g.errorRate {
		return nil, errors.New("gateway unreachable")
	}

	if rand.Float64() < g.failureRate {
		return &appPayment.GatewayResult{
			Success: false,
			Error:   g.failError,
		}, nil
	}

	return &appPayment.GatewayResult{
		Success:     true,
		ProviderRef: fmt.Sprintf("ref_%s", uuid.New().String()[:8]),
	}, nil
}

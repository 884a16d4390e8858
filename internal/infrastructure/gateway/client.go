package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
)

// payRequest is the wire shape posted to a provider endpoint.
type payRequest struct {
	PaymentID string      `json:"paymentId"`
	Amount    json.Number `json:"amount"`
	Currency  string      `json:"currency"`
	Reference string      `json:"reference"`
}

// payResponse is the provider's answer.
type payResponse struct {
	Success     bool   `json:"success"`
	ProviderRef string `json:"providerRef"`
	Error       string `json:"error"`
}

// HTTPGateway makes one POST per attempt to the provider endpoint configured
// in the catalog. It carries no retry logic; a circuit breaker per endpoint
// sheds load from a provider that keeps failing, and an open circuit surfaces
// as an ordinary error on the attempt.
type HTTPGateway struct {
	httpClient *http.Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[*appPayment.GatewayResult]
}

// NewHTTPGateway creates a new HTTPGateway with the given per-call timeout.
func NewHTTPGateway(timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		httpClient: &http.Client{Timeout: timeout},
		breakers:   make(map[string]*gobreaker.CircuitBreaker[*appPayment.GatewayResult]),
	}
}

// Pay executes one payment attempt against the provider.
func (g *HTTPGateway) Pay(ctx context.Context, req appPayment.GatewayRequest) (*appPayment.GatewayResult, error) {
	breaker := g.breakerFor(req.Endpoint)

	result, err := breaker.Execute(func() (*appPayment.GatewayResult, error) {
		return g.call(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("provider call: %w", err)
	}
	return result, nil
}

func (g *HTTPGateway) call(ctx context.Context, req appPayment.GatewayRequest) (*appPayment.GatewayResult, error) {
	body, err := json.Marshal(payRequest{
		PaymentID: req.PaymentID.String(),
		Amount:    json.Number(centsToDecimal(req.AmountCents)),
		Currency:  req.Currency,
		Reference: req.Reference,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal pay request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build pay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post to provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var pr payResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	return &appPayment.GatewayResult{
		Success:     pr.Success,
		ProviderRef: pr.ProviderRef,
		Error:       pr.Error,
	}, nil
}

func (g *HTTPGateway) breakerFor(endpoint string) *gobreaker.CircuitBreaker[*appPayment.GatewayResult] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[endpoint]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker[*appPayment.GatewayResult](gobreaker.Settings{
		Name:        endpoint,
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})
	g.breakers[endpoint] = b
	return b
}

func centsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

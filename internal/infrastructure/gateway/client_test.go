package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appPayment "github.com/lucashq/payflow/internal/application/payment"
)

func gatewayRequest(endpoint string) appPayment.GatewayRequest {
	return appPayment.GatewayRequest{
		Endpoint:    endpoint,
		PaymentID:   uuid.New(),
		AmountCents: 25_99,
		Currency:    "USD",
		Reference:   "order-42",
	}
}

func TestHTTPGateway_Success(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"providerRef": "tx_abc123",
		})
	}))
	defer srv.Close()

	g := NewHTTPGateway(5 * time.Second)
	req := gatewayRequest(srv.URL)

	res, err := g.Pay(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "tx_abc123", res.ProviderRef)

	// Wire shape: camelCase keys, decimal amount.
	assert.Equal(t, req.PaymentID.String(), captured["paymentId"])
	assert.Equal(t, 25.99, captured["amount"])
	assert.Equal(t, "USD", captured["currency"])
	assert.Equal(t, "order-42", captured["reference"])
}

func TestHTTPGateway_BusinessFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "insufficient funds",
		})
	}))
	defer srv.Close()

	g := NewHTTPGateway(5 * time.Second)

	// A declined payment is a valid response, not a transport error.
	res, err := g.Pay(context.Background(), gatewayRequest(srv.URL))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "insufficient funds", res.Error)
}

func TestHTTPGateway_Non2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewHTTPGateway(5 * time.Second)

	_, err := g.Pay(context.Background(), gatewayRequest(srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPGateway_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	g := NewHTTPGateway(5 * time.Second)

	_, err := g.Pay(context.Background(), gatewayRequest(srv.URL))
	assert.Error(t, err)
}

func TestHTTPGateway_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewHTTPGateway(5 * time.Second)
	req := gatewayRequest(srv.URL)

	for i := 0; i < 15; i++ {
		_, err := g.Pay(context.Background(), req)
		require.Error(t, err)
	}

	// By now the breaker rejects without reaching the server.
	_, err := g.Pay(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestHTTPGateway_BreakerIsPerEndpoint(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "providerRef": "tx_1"})
	}))
	defer good.Close()

	g := NewHTTPGateway(5 * time.Second)

	for i := 0; i < 15; i++ {
		g.Pay(context.Background(), gatewayRequest(bad.URL))
	}

	res, err := g.Pay(context.Background(), gatewayRequest(good.URL))
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestCentsToDecimal(t *testing.T) {
	assert.Equal(t, "25.99", centsToDecimal(2599))
	assert.Equal(t, "0.05", centsToDecimal(5))
	assert.Equal(t, "100.00", centsToDecimal(10000))
	assert.Equal(t, "-1.50", centsToDecimal(-150))
}

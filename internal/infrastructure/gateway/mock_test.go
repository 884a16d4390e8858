package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_AlwaysSucceeds(t *testing.T) {
	g := NewMockGateway()

	for i := 0; i < 20; i++ {
		res, err := g.Pay(context.Background(), gatewayRequest("mock"))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.NotEmpty(t, res.ProviderRef)
	}
}

func TestMockGateway_AlwaysFails(t *testing.T) {
	g := NewMockGateway(
		WithFailureRate(1.0),
		WithFailureError("card declined"),
	)

	for i := 0; i < 20; i++ {
		res, err := g.Pay(context.Background(), gatewayRequest("mock"))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "card declined", res.Error)
	}
}

func TestMockGateway_TransportErrors(t *testing.T) {
	g := NewMockGateway(WithErrorRate(1.0))

	_, err := g.Pay(context.Background(), gatewayRequest("mock"))
	assert.Error(t, err)
}

func TestMockGateway_RespectsContextDuringLatency(t *testing.T) {
	g := NewMockGateway(WithLatency(5 * time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Pay(ctx, gatewayRequest("mock"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

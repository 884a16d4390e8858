package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lucashq/payflow/pkg/retry"
)

const (
	// EventStream is the outbound channel a separate notification
	// dispatcher consumes to tell owners and admins a payment changed
	// state. Nothing in the pipeline waits on it.
	EventStream = "payments:events"
)

// Notifier publishes payment-updated events to the event stream. Delivery is
// best effort: a short backoff, then the caller logs and moves on.
type Notifier struct {
	client   *redis.Client
	retryCfg retry.Config
}

// NewNotifier creates a new Notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{
		client: client,
		retryCfg: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     1 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Notify emits a payment-updated event for the given payment and owner.
func (n *Notifier) Notify(ctx context.Context, paymentID, ownerID uuid.UUID) error {
	err := retry.Do(ctx, n.retryCfg, func() error {
		return n.client.XAdd(ctx, &redis.XAddArgs{
			Stream: EventStream,
			Values: map[string]any{
				"event":      "payment.updated",
				"payment_id": paymentID.String(),
				"owner_id":   ownerID.String(),
				"timestamp":  time.Now().Unix(),
			},
		}).Err()
	})
	if err != nil {
		return fmt.Errorf("publish payment event: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// Lua script for safe lock release (only owner can release)
	releaseLockScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)
)

// PaymentLock is a per-payment Redis lock the worker takes before running an
// attempt. It only reduces wasted work on duplicate deliveries; the database
// row lock inside the processing transaction is the correctness guarantee.
type PaymentLock struct {
	client   *redis.Client
	key      string
	value    string
	ttl      time.Duration
	acquired bool
}

// NewPaymentLock creates a lock for one payment id.
func NewPaymentLock(client *redis.Client, paymentID uuid.UUID, ttl time.Duration) *PaymentLock {
	return &PaymentLock{
		client: client,
		key:    fmt.Sprintf("lock:payment:%s", paymentID),
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Acquire attempts to take the lock without blocking.
func (l *PaymentLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.acquired = ok
	return ok, nil
}

// Release releases the lock if this instance still owns it.
func (l *PaymentLock) Release(ctx context.Context) error {
	if !l.acquired {
		return nil
	}

	result, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if val, ok := result.(int64); !ok || val == 0 {
		return errors.New("lock not held or already released")
	}

	l.acquired = false
	return nil
}

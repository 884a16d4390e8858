package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// JobStream carries payment ids awaiting a processing attempt. The
	// consumer group gives at-least-once delivery; the pipeline's no-op
	// guard makes redelivery harmless.
	JobStream = "payments:jobs"
)

// JobQueue is the Redis Streams implementation of the job-queue port. The
// payload is the payment id and nothing else.
type JobQueue struct {
	client *redis.Client
}

// NewJobQueue creates a new JobQueue producer.
func NewJobQueue(client *redis.Client) *JobQueue {
	return &JobQueue{client: client}
}

// Enqueue submits a payment id for processing.
func (q *JobQueue) Enqueue(ctx context.Context, paymentID uuid.UUID) error {
	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: JobStream,
		Values: map[string]any{
			"payment_id": paymentID.String(),
			"enqueued_at": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue payment job: %w", err)
	}
	return nil
}

// JobConsumer reads payment jobs off the stream via a consumer group.
type JobConsumer struct {
	client        *redis.Client
	group         string
	consumer      string
	batchSize     int64
	blockDuration time.Duration
}

// NewJobConsumer creates a new JobConsumer.
func NewJobConsumer(client *redis.Client, group, consumer string, batchSize int64, blockDuration time.Duration) *JobConsumer {
	return &JobConsumer{
		client:        client,
		group:         group,
		consumer:      consumer,
		batchSize:     batchSize,
		blockDuration: blockDuration,
	}
}

// CreateGroup creates the consumer group, creating the stream if needed.
func (c *JobConsumer) CreateGroup(ctx context.Context) error {
	const busyGroupMsg = "BUSYGROUP"
	err := c.client.XGroupCreateMkStream(ctx, JobStream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), busyGroupMsg) {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Job is one delivered payment job.
type Job struct {
	MessageID string
	PaymentID uuid.UUID
}

// Read blocks for up to the configured duration and returns delivered jobs.
// Messages with an unparsable payment id are acked and dropped.
func (c *JobConsumer) Read(ctx context.Context) ([]Job, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{JobStream, ">"},
		Count:    c.batchSize,
		Block:    c.blockDuration,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from stream: %w", err)
	}

	var jobs []Job
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			raw, _ := msg.Values["payment_id"].(string)
			id, err := uuid.Parse(raw)
			if err != nil {
				c.Ack(ctx, msg.ID)
				continue
			}
			jobs = append(jobs, Job{MessageID: msg.ID, PaymentID: id})
		}
	}
	return jobs, nil
}

// Ack marks a message as processed.
func (c *JobConsumer) Ack(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, JobStream, c.group, messageID).Err(); err != nil {
		return fmt.Errorf("failed to ack message: %w", err)
	}
	return nil
}

// Claim takes over messages another consumer left pending for too long.
func (c *JobConsumer) Claim(ctx context.Context, minIdle time.Duration, messageIDs []string) ([]redis.XMessage, error) {
	messages, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   JobStream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  minIdle,
		Messages: messageIDs,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim messages: %w", err)
	}
	return messages, nil
}

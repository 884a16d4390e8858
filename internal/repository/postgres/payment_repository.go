package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/lucashq/payflow/internal/domain/errors"
	"github.com/lucashq/payflow/internal/domain/payment"
)

const paymentColumns = `id, user_id, provider_id, amount, currency, reference,
	        status, attempt_count, created_at, last_tried_at, last_error`

// PaymentRepository implements the payment store port using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, user_id, provider_id, amount, currency, reference,
		  status, attempt_count, created_at, last_tried_at, last_error)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.UserID, p.ProviderID, centsToNumericString(p.AmountCents), p.Currency, p.Reference,
		string(p.Status), p.AttemptCount, p.CreatedAt, p.LastTriedAt, p.LastError,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Get retrieves a payment by id. Inside a transaction the row is locked with
// FOR UPDATE; two concurrent processing runs for the same id therefore
// serialize on this read, which keeps their attempt increments from sharing
// a base value.
func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if InTx(ctx) {
		query += ` FOR UPDATE`
	}
	return r.scanPayment(r.db(ctx).QueryRow(ctx, query, id))
}

// List returns the user's payments, or every payment for admins, newest first.
func (r *PaymentRepository) List(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	args := []any{}
	if !isAdmin {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListFailedForRetry returns ids of failed payments still under the attempt
// ceiling, oldest attempt first (falling back to creation time for payments
// never tried), capped at limit.
func (r *PaymentRepository) ListFailedForRetry(ctx context.Context, maxAttempts, limit int) ([]uuid.UUID, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id FROM payments
		 WHERE status = $1 AND attempt_count < $2
		 ORDER BY COALESCE(last_tried_at, created_at) ASC
		 LIMIT $3`,
		string(payment.StatusFailed), maxAttempts, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list failed for retry: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListStalePending returns ids of pending payments created before the cutoff.
func (r *PaymentRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id FROM payments
		 WHERE status = $1 AND created_at < $2
		 ORDER BY created_at ASC
		 LIMIT $3`,
		string(payment.StatusPending), cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

// FailStaleProcessing fails processing payments whose attempt started before
// the cutoff. Returns the number of rows swept.
func (r *PaymentRepository) FailStaleProcessing(ctx context.Context, cutoff time.Time, cause string) (int, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET status = $1, last_error = $2
		 WHERE status = $3 AND last_tried_at < $4`,
		string(payment.StatusFailed), cause, string(payment.StatusProcessing), cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("fail stale processing: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// MarkProcessing sets the status to processing and stamps the attempt time.
func (r *PaymentRepository) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.mutate(ctx, id,
		`UPDATE payments SET status = $2, last_tried_at = $3 WHERE id = $1`,
		string(payment.StatusProcessing), at)
}

// MarkCompleted sets the status to completed and clears the last error.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return r.mutate(ctx, id,
		`UPDATE payments SET status = $2, last_error = NULL WHERE id = $1`,
		string(payment.StatusCompleted))
}

// MarkFailed sets the status to failed and records the cause.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	return r.mutate(ctx, id,
		`UPDATE payments SET status = $2, last_error = $3 WHERE id = $1`,
		string(payment.StatusFailed), cause)
}

// IncrementAttempt bumps the attempt ledger by exactly one.
func (r *PaymentRepository) IncrementAttempt(ctx context.Context, id uuid.UUID) error {
	return r.mutate(ctx, id,
		`UPDATE payments SET attempt_count = attempt_count + 1 WHERE id = $1`)
}

func (r *PaymentRepository) mutate(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	tag, err := r.db(ctx).Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) scanPayment(row scanner) (*payment.Payment, error) {
	var (
		p         payment.Payment
		amountStr string
		status    string
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProviderID, &amountStr, &p.Currency, &p.Reference,
		&status, &p.AttemptCount, &p.CreatedAt, &p.LastTriedAt, &p.LastError,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	p.Status = payment.Status(status)
	p.AmountCents, err = numericStringToCents(amountStr)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

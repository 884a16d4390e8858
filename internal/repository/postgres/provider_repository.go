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
	"github.com/lucashq/payflow/internal/domain/provider"
)

// ProviderRepository implements the provider catalog using PostgreSQL.
type ProviderRepository struct {
	pool *pgxpool.Pool
}

// NewProviderRepository creates a new ProviderRepository.
func NewProviderRepository(pool *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

func (r *ProviderRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Get retrieves a provider by id.
func (r *ProviderRepository) Get(ctx context.Context, id uuid.UUID) (*provider.Provider, error) {
	return r.scanProvider(r.db(ctx).QueryRow(ctx,
		`SELECT id, name, endpoint, is_active, created_at, updated_at
		 FROM payment_providers WHERE id = $1`, id))
}

// List returns all providers, oldest first.
func (r *ProviderRepository) List(ctx context.Context) ([]*provider.Provider, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, name, endpoint, is_active, created_at, updated_at
		 FROM payment_providers ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var out []*provider.Provider
	for rows.Next() {
		p, err := r.scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts a new provider.
func (r *ProviderRepository) Create(ctx context.Context, p *provider.Provider) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payment_providers (id, name, endpoint, is_active, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.Name, p.Endpoint, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

// Update rewrites a provider's mutable fields.
func (r *ProviderRepository) Update(ctx context.Context, p *provider.Provider) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payment_providers SET name = $2, endpoint = $3, is_active = $4, updated_at = $5
		 WHERE id = $1`,
		p.ID, p.Name, p.Endpoint, p.IsActive, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrProviderNotFound
	}
	return nil
}

// Delete removes a provider.
func (r *ProviderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM payment_providers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrProviderNotFound
	}
	return nil
}

func (r *ProviderRepository) scanProvider(row scanner) (*provider.Provider, error) {
	var p provider.Provider
	err := row.Scan(&p.ID, &p.Name, &p.Endpoint, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrProviderNotFound
		}
		return nil, fmt.Errorf("scan provider: %w", err)
	}
	return &p, nil
}

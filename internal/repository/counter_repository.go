package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// CounterRepository persists helpdesk counters. Operator exclusivity is
// enforced here with conditional updates rather than left to the UI.
type CounterRepository interface {
	Create(ctx context.Context, counter *domain.HelpdeskCounter) error
	Update(ctx context.Context, counter *domain.HelpdeskCounter) error
	GetByID(ctx context.Context, id string) (*domain.HelpdeskCounter, error)
	List(ctx context.Context) ([]domain.HelpdeskCounter, error)
	ClaimOperator(ctx context.Context, counterID, operatorID string) error
	ReleaseOperator(ctx context.Context, counterID string) error
}

type counterRepository struct {
	pool *pgxpool.Pool
}

// NewCounterRepository instantiates repository.
func NewCounterRepository(pool *pgxpool.Pool) CounterRepository {
	return &counterRepository{pool: pool}
}

func (r *counterRepository) Create(ctx context.Context, counter *domain.HelpdeskCounter) error {
	const query = `
        INSERT INTO helpdesk_counters (name, is_active)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		counter.Name,
		counter.IsActive,
	).Scan(&counter.ID, &counter.CreatedAt, &counter.UpdatedAt)
}

func (r *counterRepository) Update(ctx context.Context, counter *domain.HelpdeskCounter) error {
	const query = `
        UPDATE helpdesk_counters SET name=$1, is_active=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query,
		counter.Name,
		counter.IsActive,
		counter.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *counterRepository) GetByID(ctx context.Context, id string) (*domain.HelpdeskCounter, error) {
	const query = `
        SELECT id, name, is_active, operator_id, created_at, updated_at
        FROM helpdesk_counters WHERE id=$1`
	var counter domain.HelpdeskCounter
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&counter.ID,
		&counter.Name,
		&counter.IsActive,
		&counter.OperatorID,
		&counter.CreatedAt,
		&counter.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &counter, nil
}

func (r *counterRepository) List(ctx context.Context) ([]domain.HelpdeskCounter, error) {
	const query = `
        SELECT id, name, is_active, operator_id, created_at, updated_at
        FROM helpdesk_counters ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HelpdeskCounter
	for rows.Next() {
		var counter domain.HelpdeskCounter
		if err := rows.Scan(
			&counter.ID,
			&counter.Name,
			&counter.IsActive,
			&counter.OperatorID,
			&counter.CreatedAt,
			&counter.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, counter)
	}
	return result, rows.Err()
}

// ClaimOperator seats an operator at a counter. The update only matches
// when the counter is free (or already held by the same operator) and the
// operator is not seated elsewhere, so the one-operator-per-counter
// invariant holds under concurrent claims.
func (r *counterRepository) ClaimOperator(ctx context.Context, counterID, operatorID string) error {
	const query = `
        UPDATE helpdesk_counters SET operator_id=$2, updated_at=NOW()
        WHERE id=$1
          AND is_active
          AND (operator_id IS NULL OR operator_id=$2)
          AND NOT EXISTS (
              SELECT 1 FROM helpdesk_counters
              WHERE operator_id=$2 AND id<>$1
          )`
	cmd, err := r.pool.Exec(ctx, query, counterID, operatorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM helpdesk_counters WHERE id=$1)`, counterID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
		return ErrCounterTaken
	}
	return nil
}

func (r *counterRepository) ReleaseOperator(ctx context.Context, counterID string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE helpdesk_counters SET operator_id=NULL, updated_at=NOW() WHERE id=$1`, counterID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

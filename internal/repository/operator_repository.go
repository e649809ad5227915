package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// OperatorRepository persists helpdesk operator records keyed by staff id.
type OperatorRepository interface {
	Upsert(ctx context.Context, operator *domain.HelpdeskOperator) error
	GetByStaffID(ctx context.Context, staffID string) (*domain.HelpdeskOperator, error)
	ListActive(ctx context.Context, isOffline bool) ([]domain.HelpdeskOperator, error)
}

type operatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository instantiates repository.
func NewOperatorRepository(pool *pgxpool.Pool) OperatorRepository {
	return &operatorRepository{pool: pool}
}

func (r *operatorRepository) Upsert(ctx context.Context, operator *domain.HelpdeskOperator) error {
	const query = `
        INSERT INTO helpdesk_operators (staff_id, is_offline, is_active)
        VALUES ($1,$2,$3)
        ON CONFLICT (staff_id) DO UPDATE
        SET is_offline=EXCLUDED.is_offline, is_active=EXCLUDED.is_active, updated_at=NOW()
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		operator.StaffID,
		operator.IsOffline,
		operator.IsActive,
	).Scan(&operator.CreatedAt, &operator.UpdatedAt)
}

func (r *operatorRepository) GetByStaffID(ctx context.Context, staffID string) (*domain.HelpdeskOperator, error) {
	const query = `
        SELECT staff_id, is_offline, is_active, created_at, updated_at
        FROM helpdesk_operators WHERE staff_id=$1`
	var operator domain.HelpdeskOperator
	if err := r.pool.QueryRow(ctx, query, staffID).Scan(
		&operator.StaffID,
		&operator.IsOffline,
		&operator.IsActive,
		&operator.CreatedAt,
		&operator.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &operator, nil
}

// ListActive returns active operators for one side of the desk, in
// insertion order so the load balancer distributes deterministically.
func (r *operatorRepository) ListActive(ctx context.Context, isOffline bool) ([]domain.HelpdeskOperator, error) {
	const query = `
        SELECT staff_id, is_offline, is_active, created_at, updated_at
        FROM helpdesk_operators
        WHERE is_active AND is_offline=$1
        ORDER BY created_at ASC, staff_id ASC`
	rows, err := r.pool.Query(ctx, query, isOffline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HelpdeskOperator
	for rows.Next() {
		var operator domain.HelpdeskOperator
		if err := rows.Scan(
			&operator.StaffID,
			&operator.IsOffline,
			&operator.IsActive,
			&operator.CreatedAt,
			&operator.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, operator)
	}
	return result, rows.Err()
}

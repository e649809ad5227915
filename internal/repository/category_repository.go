package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// CategoryRepository persists ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.TicketCategory) error
	GetByID(ctx context.Context, id string) (*domain.TicketCategory, error)
	List(ctx context.Context) ([]domain.TicketCategory, error)
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.TicketCategory) error {
	const query = `
        INSERT INTO ticket_categories (name, is_offline)
        VALUES ($1, $2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		category.Name,
		category.IsOffline,
	).Scan(&category.ID, &category.CreatedAt)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.TicketCategory, error) {
	const query = `
        SELECT id, name, is_offline, created_at
        FROM ticket_categories WHERE id=$1`
	var category domain.TicketCategory
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.IsOffline,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.TicketCategory, error) {
	const query = `
        SELECT id, name, is_offline, created_at
        FROM ticket_categories ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketCategory
	for rows.Next() {
		var category domain.TicketCategory
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.IsOffline,
			&category.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM ticket_categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// ApplicantRepository defines persistence access for applicants.
type ApplicantRepository interface {
	Create(ctx context.Context, applicant *domain.Applicant) error
	Update(ctx context.Context, applicant *domain.Applicant) error
	GetByID(ctx context.Context, id string) (*domain.Applicant, error)
	GetByEmail(ctx context.Context, email string) (*domain.Applicant, error)
	SetJoinConfirmed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type applicantRepository struct {
	pool *pgxpool.Pool
}

// NewApplicantRepository returns a Postgres-backed implementation.
func NewApplicantRepository(pool *pgxpool.Pool) ApplicantRepository {
	return &applicantRepository{pool: pool}
}

func (r *applicantRepository) Create(ctx context.Context, applicant *domain.Applicant) error {
	const query = `
        INSERT INTO applicants (name, email, phone, password_hash, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		applicant.Name,
		applicant.Email,
		applicant.Phone,
		applicant.PasswordHash,
		applicant.Status,
	).Scan(&applicant.ID, &applicant.CreatedAt, &applicant.UpdatedAt)
}

func (r *applicantRepository) Update(ctx context.Context, applicant *domain.Applicant) error {
	const query = `
        UPDATE applicants
        SET name=$1, email=$2, phone=$3, password_hash=$4, status=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		applicant.Name,
		applicant.Email,
		applicant.Phone,
		applicant.PasswordHash,
		applicant.Status,
		applicant.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicantRepository) GetByID(ctx context.Context, id string) (*domain.Applicant, error) {
	const query = `
        SELECT id, name, email, phone, password_hash, status, assigned_group_id, join_confirmed, created_at, updated_at
        FROM applicants WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *applicantRepository) GetByEmail(ctx context.Context, email string) (*domain.Applicant, error) {
	const query = `
        SELECT id, name, email, phone, password_hash, status, assigned_group_id, join_confirmed, created_at, updated_at
        FROM applicants WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

// SetJoinConfirmed is idempotent: confirming an already-confirmed
// applicant is a no-op, not an error.
func (r *applicantRepository) SetJoinConfirmed(ctx context.Context, id string) error {
	const query = `UPDATE applicants SET join_confirmed=TRUE, updated_at=NOW() WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete hard-deletes an applicant; tickets cascade via the schema.
func (r *applicantRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM applicants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicantRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Applicant, error) {
	var applicant domain.Applicant
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&applicant.ID,
		&applicant.Name,
		&applicant.Email,
		&applicant.Phone,
		&applicant.PasswordHash,
		&applicant.Status,
		&applicant.AssignedGroupID,
		&applicant.JoinConfirmed,
		&applicant.CreatedAt,
		&applicant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &applicant, nil
}

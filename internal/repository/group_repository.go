package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// GroupRepository encapsulates group persistence, including the atomic
// capacity-bounded assignment.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
	AssignFirstAvailable(ctx context.Context, applicantID string) (*domain.Group, error)
}

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository instantiates repository.
func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepository{pool: pool}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	const query = `
        INSERT INTO groups (name, capacity, invite_link)
        VALUES ($1, $2, $3)
        RETURNING id, member_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		group.Name,
		group.Capacity,
		group.InviteLink,
	).Scan(&group.ID, &group.MemberCount, &group.CreatedAt, &group.UpdatedAt)
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	// member_count is never written here; only AssignFirstAvailable moves it.
	const query = `
        UPDATE groups SET name=$1, capacity=$2, invite_link=$3, updated_at=NOW()
        WHERE id=$4 AND capacity >= member_count`
	cmd, err := r.pool.Exec(ctx, query,
		group.Name,
		group.Capacity,
		group.InviteLink,
		group.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM groups WHERE id=$1 AND member_count=0`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var count int
		if err := r.pool.QueryRow(ctx, `SELECT member_count FROM groups WHERE id=$1`, id).Scan(&count); err != nil {
			return err
		}
		return ErrGroupNotEmpty
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	const query = `
        SELECT id, name, capacity, member_count, invite_link, created_at, updated_at
        FROM groups WHERE id=$1`
	var group domain.Group
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Capacity,
		&group.MemberCount,
		&group.InviteLink,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	const query = `
        SELECT id, name, capacity, member_count, invite_link, created_at, updated_at
        FROM groups ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Capacity,
			&group.MemberCount,
			&group.InviteLink,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, rows.Err()
}

// AssignFirstAvailable claims one seat in the first group with spare
// capacity (stable order: creation time, then id) and records the
// assignment on the applicant, all in one transaction. Selection blocks
// on a concurrent claim rather than skipping the locked group, so a
// caller only sees "full" when the committed state really is. Returns
// pgx.ErrNoRows when every group is full, ErrAlreadyAssigned when the
// applicant already holds a group and ErrApplicantMissing when the
// applicant row does not exist.
func (r *groupRepository) AssignFirstAvailable(ctx context.Context, applicantID string) (*domain.Group, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var group domain.Group
	err = tx.QueryRow(ctx, `
        UPDATE groups SET member_count = member_count + 1, updated_at = NOW()
        WHERE id = (
            SELECT id FROM groups
            WHERE member_count < capacity
            ORDER BY created_at ASC, id ASC
            LIMIT 1
            FOR UPDATE
        )
        RETURNING id, name, capacity, member_count, invite_link, created_at, updated_at`,
	).Scan(
		&group.ID,
		&group.Name,
		&group.Capacity,
		&group.MemberCount,
		&group.InviteLink,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `
        UPDATE applicants SET assigned_group_id=$1, updated_at=NOW()
        WHERE id=$2 AND assigned_group_id IS NULL`,
		group.ID, applicantID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM applicants WHERE id=$1)`, applicantID,
		).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			err = ErrApplicantMissing
		} else {
			err = ErrAlreadyAssigned
		}
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &group, nil
}

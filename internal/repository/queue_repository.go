package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

const pgUniqueViolation = "23505"

// QueueRepository persists walk-in queue tickets. Queue numbers restart
// every calendar day.
type QueueRepository interface {
	Create(ctx context.Context, ticket *domain.QueueTicket) error
	GetByID(ctx context.Context, id string) (*domain.QueueTicket, error)
	ActiveAtCounter(ctx context.Context, counterID string) (*domain.QueueTicket, error)
	ClaimOldestWaiting(ctx context.Context, counterID string, operatorID *string) (*domain.QueueTicket, error)
	UpdateTransition(ctx context.Context, ticket *domain.QueueTicket, from domain.QueueStatus) error
	Touch(ctx context.Context, id string) error
	ListToday(ctx context.Context, statuses []domain.QueueStatus) ([]domain.QueueTicket, error)
}

type queueRepository struct {
	pool *pgxpool.Pool
}

// NewQueueRepository instantiates repository.
func NewQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &queueRepository{pool: pool}
}

const queueColumns = `id, applicant_id, queue_number, category_id, status, counter_id, operator_id,
       created_at, updated_at, served_at, completed_at`

// Create inserts a WAITING ticket with the next queue number for the
// current day. Number selection and insert are one statement; the unique
// index on (day, queue_number) rejects the loser of a rare collision.
func (r *queueRepository) Create(ctx context.Context, ticket *domain.QueueTicket) error {
	const query = `
        INSERT INTO queue_tickets (applicant_id, queue_number, category_id, status)
        SELECT $1, COALESCE(MAX(queue_number), 0) + 1, $2, $3
        FROM queue_tickets WHERE created_at::date = CURRENT_DATE
        RETURNING id, queue_number, created_at, updated_at`
	ticket.Status = domain.QueueStatusWaiting
	return r.pool.QueryRow(ctx, query,
		ticket.ApplicantID,
		ticket.CategoryID,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.QueueNumber, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *queueRepository) GetByID(ctx context.Context, id string) (*domain.QueueTicket, error) {
	query := `SELECT ` + queueColumns + ` FROM queue_tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// ActiveAtCounter returns the CALLED or SERVING ticket held by a counter,
// or pgx.ErrNoRows when the counter is free.
func (r *queueRepository) ActiveAtCounter(ctx context.Context, counterID string) (*domain.QueueTicket, error) {
	query := `SELECT ` + queueColumns + `
        FROM queue_tickets
        WHERE counter_id=$1 AND status IN ('CALLED','SERVING')
        ORDER BY served_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, counterID)
}

// ClaimOldestWaiting calls today's FIFO head to a counter in one
// statement. The UPDATE re-checks that the counter holds no CALLED or
// SERVING ticket, and the partial unique index uq_queue_active_counter
// rejects a concurrent claim that slips past the snapshot check, so the
// at-most-one-active-ticket-per-counter invariant holds under
// concurrency. Returns ErrCounterBusy when the counter is occupied and
// pgx.ErrNoRows when the queue is empty.
func (r *queueRepository) ClaimOldestWaiting(ctx context.Context, counterID string, operatorID *string) (*domain.QueueTicket, error) {
	query := `
        UPDATE queue_tickets
        SET status='CALLED', counter_id=$1, operator_id=$2, served_at=NOW(), updated_at=NOW()
        WHERE id = (
            SELECT id FROM queue_tickets
            WHERE status='WAITING' AND created_at::date = CURRENT_DATE
            ORDER BY created_at ASC, queue_number ASC
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )
        AND NOT EXISTS (
            SELECT 1 FROM queue_tickets
            WHERE counter_id=$1 AND status IN ('CALLED','SERVING')
        )
        RETURNING ` + queueColumns
	var ticket domain.QueueTicket
	err := r.pool.QueryRow(ctx, query, counterID, operatorID).Scan(queueScanTargets(&ticket)...)
	if err == nil {
		return &ticket, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "uq_queue_active_counter" {
		return nil, ErrCounterBusy
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Zero rows means the counter is busy or the queue is empty.
	var busy bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM queue_tickets WHERE counter_id=$1 AND status IN ('CALLED','SERVING'))`,
		counterID,
	).Scan(&busy); err != nil {
		return nil, err
	}
	if busy {
		return nil, ErrCounterBusy
	}
	return nil, pgx.ErrNoRows
}

// UpdateTransition writes the ticket's mutable fields conditionally on
// the status it was read at. A concurrent transition makes the update
// match zero rows, which surfaces as ErrStaleStatus instead of silently
// double-applying.
func (r *queueRepository) UpdateTransition(ctx context.Context, ticket *domain.QueueTicket, from domain.QueueStatus) error {
	const query = `
        UPDATE queue_tickets
        SET status=$1, counter_id=$2, operator_id=$3, served_at=$4, completed_at=$5, updated_at=NOW()
        WHERE id=$6 AND status=$7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.CounterID,
		ticket.OperatorID,
		ticket.ServedAt,
		ticket.CompletedAt,
		ticket.ID,
		from,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM queue_tickets WHERE id=$1)`, ticket.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
		return ErrStaleStatus
	}
	return nil
}

// Touch re-stamps updated_at without changing any other column. Used by
// recall to re-trigger the realtime announcement.
func (r *queueRepository) Touch(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE queue_tickets SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *queueRepository) ListToday(ctx context.Context, statuses []domain.QueueStatus) ([]domain.QueueTicket, error) {
	query := `SELECT ` + queueColumns + `
        FROM queue_tickets
        WHERE created_at::date = CURRENT_DATE`
	args := []any{}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += ` AND status IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY queue_number ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.QueueTicket
	for rows.Next() {
		var ticket domain.QueueTicket
		if err := rows.Scan(queueScanTargets(&ticket)...); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *queueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.QueueTicket, error) {
	var ticket domain.QueueTicket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(queueScanTargets(&ticket)...); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func queueScanTargets(t *domain.QueueTicket) []any {
	return []any{
		&t.ID,
		&t.ApplicantID,
		&t.QueueNumber,
		&t.CategoryID,
		&t.Status,
		&t.CounterID,
		&t.OperatorID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ServedAt,
		&t.CompletedAt,
	}
}

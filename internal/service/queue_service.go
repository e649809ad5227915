package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// QueueService drives the walk-in counter queue.
type QueueService struct {
	queue      repository.QueueRepository
	counters   repository.CounterRepository
	categories repository.CategoryRepository
	dispatcher events.Dispatcher
}

// QueueDependencies bundles collaborators.
type QueueDependencies struct {
	QueueRepo    repository.QueueRepository
	CounterRepo  repository.CounterRepository
	CategoryRepo repository.CategoryRepository
	Dispatcher   events.Dispatcher
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	return &QueueService{
		queue:      deps.QueueRepo,
		counters:   deps.CounterRepo,
		categories: deps.CategoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateQueueTicket takes a walk-in number. Numbers restart at 1 each
// calendar day and the new ticket enters the queue WAITING.
func (s *QueueService) CreateQueueTicket(ctx context.Context, applicantID string, categoryID *string) (*domain.QueueTicket, error) {
	if categoryID != nil {
		if _, err := s.categories.GetByID(ctx, *categoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("category", map[string]any{"category_id": *categoryID})
			}
			return nil, apperrors.MapError(err)
		}
	}
	ticket := &domain.QueueTicket{
		ApplicantID: applicantID,
		CategoryID:  categoryID,
	}
	if err := s.queue.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventQueueTicketCreated,
		Table:    "queue_tickets",
		EntityID: ticket.ID,
		Actor:    applicantActor(applicantID),
		Payload: events.QueueStatusPayload{
			QueueNumber: ticket.QueueNumber,
			NewStatus:   ticket.Status,
		},
	})
	return ticket, nil
}

// CallNext pulls the FIFO head of today's queue to a counter. A counter
// still holding a CALLED or SERVING ticket must finish or skip it
// first. The claim is a single atomic store operation, so concurrent
// calls on the same counter cannot both win.
func (s *QueueService) CallNext(ctx context.Context, operator *domain.StaffMember, counterID string) (*domain.QueueTicket, error) {
	counter, err := s.getCounter(ctx, counterID)
	if err != nil {
		return nil, err
	}
	if !counter.IsActive {
		return nil, apperrors.NewValidationError("counter is not active", map[string]any{"counter_id": counterID})
	}

	var operatorID *string
	if operator != nil {
		operatorID = &operator.ID
	}
	ticket, err := s.queue.ClaimOldestWaiting(ctx, counterID, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCounterBusy):
			return nil, apperrors.NewInvalidTransition("counter already serving a ticket", map[string]any{
				"counter_id": counterID,
			})
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("waiting queue ticket", nil)
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.publishAnnouncement(ctx, events.EventQueueTicketCalled, ticket, counter, operator)
	return ticket, nil
}

// Recall replays the announcement for the ticket a counter already
// holds. Status does not change; only the announcement fires again.
func (s *QueueService) Recall(ctx context.Context, operator *domain.StaffMember, counterID string) (*domain.QueueTicket, error) {
	counter, err := s.getCounter(ctx, counterID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.queue.ActiveAtCounter(ctx, counterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("active queue ticket", map[string]any{"counter_id": counterID})
		}
		return nil, apperrors.MapError(err)
	}
	if !domain.ValidQueueTransition(domain.QueueActionRecall, ticket.Status) {
		return nil, apperrors.NewInvalidTransition("recall not allowed", map[string]any{"status": ticket.Status})
	}
	if err := s.queue.Touch(ctx, ticket.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAnnouncement(ctx, events.EventQueueTicketRecalled, ticket, counter, operator)
	return ticket, nil
}

// StartServing marks the called ticket as being served at the counter.
func (s *QueueService) StartServing(ctx context.Context, operator *domain.StaffMember, counterID string) (*domain.QueueTicket, error) {
	return s.counterAction(ctx, operator, counterID, domain.QueueActionStartServing, domain.QueueStatusServing, events.EventQueueTicketServing)
}

// Complete closes out the ticket being served.
func (s *QueueService) Complete(ctx context.Context, operator *domain.StaffMember, counterID string) (*domain.QueueTicket, error) {
	return s.counterAction(ctx, operator, counterID, domain.QueueActionComplete, domain.QueueStatusCompleted, events.EventQueueTicketCompleted)
}

// Skip abandons a called or serving ticket so the counter can call the
// next number. Skipped tickets never return to the queue.
func (s *QueueService) Skip(ctx context.Context, operator *domain.StaffMember, counterID string) (*domain.QueueTicket, error) {
	return s.counterAction(ctx, operator, counterID, domain.QueueActionSkip, domain.QueueStatusSkipped, events.EventQueueTicketSkipped)
}

// ListToday returns today's queue entries, optionally filtered by status.
func (s *QueueService) ListToday(ctx context.Context, statuses []domain.QueueStatus) ([]domain.QueueTicket, error) {
	tickets, err := s.queue.ListToday(ctx, statuses)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a single queue ticket.
func (s *QueueService) GetTicket(ctx context.Context, id string) (*domain.QueueTicket, error) {
	ticket, err := s.queue.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("queue ticket", map[string]any{"queue_ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *QueueService) counterAction(ctx context.Context, operator *domain.StaffMember, counterID, action string, to domain.QueueStatus, eventType events.EventType) (*domain.QueueTicket, error) {
	if _, err := s.getCounter(ctx, counterID); err != nil {
		return nil, err
	}
	ticket, err := s.queue.ActiveAtCounter(ctx, counterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("active queue ticket", map[string]any{"counter_id": counterID})
		}
		return nil, apperrors.MapError(err)
	}
	if !domain.ValidQueueTransition(action, ticket.Status) {
		return nil, apperrors.NewInvalidTransition("action not allowed from current status", map[string]any{
			"action": action,
			"status": ticket.Status,
		})
	}

	from := ticket.Status
	ticket.Status = to
	if operator != nil && ticket.OperatorID == nil {
		ticket.OperatorID = &operator.ID
	}
	if to == domain.QueueStatusCompleted || to == domain.QueueStatusSkipped {
		now := time.Now()
		ticket.CompletedAt = &now
	}
	if err := s.transitionTicket(ctx, ticket, from); err != nil {
		return nil, err
	}

	var actor events.Actor
	if operator != nil {
		actor = staffActor(operator.ID)
	}
	s.publish(ctx, events.Event{
		Type:     eventType,
		Table:    "queue_tickets",
		EntityID: ticket.ID,
		Actor:    actor,
		Payload: events.QueueStatusPayload{
			QueueNumber: ticket.QueueNumber,
			OldStatus:   from,
			NewStatus:   to,
		},
	})
	return ticket, nil
}

func (s *QueueService) transitionTicket(ctx context.Context, ticket *domain.QueueTicket, from domain.QueueStatus) error {
	if err := s.queue.UpdateTransition(ctx, ticket, from); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NewNotFound("queue ticket", map[string]any{"queue_ticket_id": ticket.ID})
		case errors.Is(err, repository.ErrStaleStatus):
			return apperrors.NewInvalidTransition("queue ticket changed concurrently", map[string]any{
				"queue_ticket_id": ticket.ID,
			})
		default:
			return apperrors.MapError(err)
		}
	}
	return nil
}

func (s *QueueService) getCounter(ctx context.Context, counterID string) (*domain.HelpdeskCounter, error) {
	counter, err := s.counters.GetByID(ctx, counterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("counter", map[string]any{"counter_id": counterID})
		}
		return nil, apperrors.MapError(err)
	}
	return counter, nil
}

func (s *QueueService) publishAnnouncement(ctx context.Context, eventType events.EventType, ticket *domain.QueueTicket, counter *domain.HelpdeskCounter, operator *domain.StaffMember) {
	var actor events.Actor
	if operator != nil {
		actor = staffActor(operator.ID)
	}
	s.publish(ctx, events.Event{
		Type:     eventType,
		Table:    "queue_tickets",
		EntityID: ticket.ID,
		Actor:    actor,
		Payload: events.QueueAnnouncementPayload{
			QueueNumber: ticket.QueueNumber,
			CounterID:   counter.ID,
			CounterName: counter.Name,
		},
	})
}

func (s *QueueService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

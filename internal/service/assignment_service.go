package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// AssignmentService distributes online tickets across helpdesk operators.
type AssignmentService struct {
	tickets    repository.TicketRepository
	operators  repository.OperatorRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo   repository.TicketRepository
	OperatorRepo repository.OperatorRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// BalanceResult summarizes one rebalancing pass.
type BalanceResult struct {
	Operators int `json:"operators"`
	Tickets   int `json:"tickets"`
	Moved     int `json:"moved"`
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		operators:  deps.OperatorRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// AssignTicket sets or clears a ticket's operator. Setting an operator
// on an OPEN ticket pushes it to IN_PROGRESS; clearing the operator
// leaves the status as it is so triage history stays readable.
func (s *AssignmentService) AssignTicket(ctx context.Context, actingStaff *domain.StaffMember, ticketID string, operatorID *string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !staffCanAccessTicket(actingStaff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if operatorID != nil {
		operator, err := s.operators.GetByStaffID(ctx, *operatorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": *operatorID})
			}
			return nil, apperrors.MapError(err)
		}
		if !operator.IsActive {
			return nil, apperrors.NewValidationError("operator is not active", map[string]any{"operator_id": *operatorID})
		}
	}

	oldOperator := ticket.AssignedTo
	newStatus := ticket.Status
	if operatorID != nil && ticket.Status == domain.TicketStatusOpen {
		newStatus = domain.TicketStatusInProgress
	}
	if err := s.tickets.UpdateAssignment(ctx, ticket.ID, operatorID, newStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	oldStatus := ticket.Status
	ticket.AssignedTo = operatorID
	ticket.Status = newStatus

	if s.history != nil {
		var actorID *string
		if actingStaff != nil {
			actorID = &actingStaff.ID
		}
		_ = s.history.Create(ctx, &domain.TicketHistory{
			TicketID:      ticket.ID,
			ChangedByType: domain.AuthorTypeStaff,
			ChangedByID:   actorID,
			ChangeType:    domain.ChangeTypeAssignee,
			OldValue:      map[string]any{"assigned_to": oldOperator, "status": oldStatus},
			NewValue:      map[string]any{"assigned_to": operatorID, "status": newStatus},
		})
	}

	actor := events.Actor{Type: domain.SubjectTypeStaff}
	if actingStaff != nil {
		actor = staffActor(actingStaff.ID)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		Table:    "tickets",
		EntityID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketAssignedPayload{OperatorID: operatorID},
	})
	return ticket, nil
}

// BalanceTickets redistributes every open online ticket round-robin
// across active online operators, oldest ticket first. After a pass no
// two operators differ by more than one ticket. With no active
// operators the pass is rejected rather than silently dropped.
func (s *AssignmentService) BalanceTickets(ctx context.Context, actingStaff *domain.StaffMember) (*BalanceResult, error) {
	operators, err := s.operators.ListActive(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(operators) == 0 {
		return nil, apperrors.NewCapacityExceeded("no active operators available", nil)
	}

	tickets, err := s.tickets.ListForBalancing(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &BalanceResult{Operators: len(operators), Tickets: len(tickets)}
	for i := range tickets {
		ticket := &tickets[i]
		target := operators[i%len(operators)].StaffID
		if ticket.AssignedTo != nil && *ticket.AssignedTo == target {
			continue
		}
		newStatus := ticket.Status
		if ticket.Status == domain.TicketStatusOpen {
			newStatus = domain.TicketStatusInProgress
		}
		if err := s.tickets.UpdateAssignment(ctx, ticket.ID, &target, newStatus); err != nil {
			return nil, apperrors.MapError(err)
		}
		result.Moved++
	}

	if s.logger != nil {
		s.logger.Info("ticket balance pass completed",
			zap.Int("operators", result.Operators),
			zap.Int("tickets", result.Tickets),
			zap.Int("moved", result.Moved),
		)
	}
	return result, nil
}

func (s *AssignmentService) publish(ctx context.Context, event events.Event) {
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

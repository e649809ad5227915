package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/events"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// TicketService coordinates the online help-ticket workflow.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	categories repository.CategoryRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	MessageRepo  repository.TicketMessageRepository
	CategoryRepo repository.CategoryRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject    string
	Message    string
	CategoryID *string
	IsOffline  bool
}

// TicketListFilter describes staff listing filters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	AssignedTo *string
	Unassigned bool
	IsOffline  *bool
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		categories: deps.CategoryRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a ticket for an applicant and appends the first
// message. New tickets always start OPEN with LOW priority.
func (s *TicketService) CreateTicket(ctx context.Context, applicantID string, input TicketCreateInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	if subject == "" || body == "" {
		return nil, apperrors.NewValidationError("subject and message required", nil)
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("category", map[string]any{"category_id": *input.CategoryID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	ticket := &domain.Ticket{
		ApplicantID: applicantID,
		CategoryID:  input.CategoryID,
		Subject:     subject,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityLow,
		IsOffline:   input.IsOffline,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	msg := &domain.TicketMessage{
		TicketID:   ticket.ID,
		AuthorType: domain.AuthorTypeApplicant,
		AuthorID:   &applicantID,
		Body:       body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		Table:    "tickets",
		EntityID: ticket.ID,
		Actor:    applicantActor(applicantID),
		Payload: events.TicketCreatedPayload{
			Subject:    ticket.Subject,
			CategoryID: ticket.CategoryID,
			Priority:   ticket.Priority,
			IsOffline:  ticket.IsOffline,
		},
	})
	return ticket, nil
}

// ListApplicantTickets returns tickets owned by an applicant.
func (s *TicketService) ListApplicantTickets(ctx context.Context, applicantID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		ApplicantID: &applicantID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForApplicant fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForApplicant(ctx context.Context, applicantID, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.ApplicantID != applicantID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// ListStaffTickets returns tickets visible to a staff member.
func (s *TicketService) ListStaffTickets(ctx context.Context, staff *domain.StaffMember, filter TicketListFilter) ([]domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		AssignedTo: filter.AssignedTo,
		Unassigned: filter.Unassigned,
		IsOffline:  filter.IsOffline,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	applyStaffScope(&repoFilter, staff)
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForStaff fetches a ticket ensuring staff scope.
func (s *TicketService) GetTicketForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !staffCanAccessTicket(staff, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// AddMessage appends an immutable message to the ticket thread. A staff
// reply to a CLOSED ticket fires the reopenOnStaffReply transition;
// applicant messages never change status.
func (s *TicketService) AddMessage(ctx context.Context, actor domain.SubjectType, actorID string, staff *domain.StaffMember, ticketID, body string) (*domain.TicketMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	msg := &domain.TicketMessage{
		TicketID: ticket.ID,
		Body:     body,
	}
	switch actor {
	case domain.SubjectTypeApplicant:
		if ticket.ApplicantID != actorID {
			return nil, apperrors.NewForbidden("access denied")
		}
		msg.AuthorType = domain.AuthorTypeApplicant
		msg.AuthorID = &actorID
	case domain.SubjectTypeStaff:
		if staff == nil {
			return nil, apperrors.NewUnauthorized("staff context required")
		}
		if !staffCanAccessTicket(staff, ticket) {
			return nil, apperrors.NewForbidden("access denied")
		}
		msg.AuthorType = domain.AuthorTypeStaff
		msg.AuthorID = &staff.ID
		msg.AuthorRole = &staff.Role
	default:
		return nil, apperrors.NewUnauthorized("unknown actor")
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	reopened := false
	if actor == domain.SubjectTypeStaff && ticket.Status == domain.TicketStatusClosed {
		if _, err := s.transition(ctx, staff, ticket, domain.TicketStatusInProgress, "reopen_on_staff_reply"); err != nil {
			return nil, err
		}
		reopened = true
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		Table:    "ticket_messages",
		EntityID: ticket.ID,
		Actor:    actorFromSubject(actor, actorID),
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			AuthorType:  msg.AuthorType,
			AuthorID:    msg.AuthorID,
			Reopened:    reopened,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	return msg, nil
}

// UpdateStatus moves a ticket through the state machine by staff action.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.transition(ctx, staff, ticket, newStatus, comment)
}

// UpdatePriority changes the orthogonal priority attribute. It never
// blocks or causes a status transition.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	switch newPriority {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh:
	default:
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordChange(ctx, &staff.ID, ticket.ID, domain.ChangeTypePriority,
		map[string]any{"priority": oldPriority},
		map[string]any{"priority": newPriority},
	); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		Table:    "tickets",
		EntityID: ticket.ID,
		Actor:    staffActor(staff.ID),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// ListHistory returns audit entries for staff.
func (s *TicketService) ListHistory(ctx context.Context, staff *domain.StaffMember, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) transition(ctx context.Context, staff *domain.StaffMember, ticket *domain.Ticket, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if !domain.ValidTicketTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewInvalidTransition("status transition not allowed", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}
	oldStatus := ticket.Status
	if newStatus == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	var actorID *string
	if staff != nil {
		actorID = &staff.ID
	}
	if err := s.recordChange(ctx, actorID, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus, "comment": comment},
	); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		Table:    "tickets",
		EntityID: ticket.ID,
		Actor:    staffActor(derefOr(actorID, "")),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) recordChange(ctx context.Context, actorID *string, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   actorID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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

// applyStaffScope narrows a ticket filter to the side of the desk the
// staff role serves. Admin sees everything.
func applyStaffScope(filter *repository.TicketFilter, staff *domain.StaffMember) {
	switch staff.Role {
	case domain.StaffRoleAdmin:
	case domain.StaffRoleHelpdesk:
		online := false
		filter.IsOffline = &online
	case domain.StaffRoleHelpdeskOffline:
		offline := true
		filter.IsOffline = &offline
	}
}

func staffCanAccessTicket(staff *domain.StaffMember, ticket *domain.Ticket) bool {
	if staff == nil {
		return false
	}
	switch staff.Role {
	case domain.StaffRoleAdmin:
		return true
	case domain.StaffRoleHelpdesk:
		return !ticket.IsOffline
	case domain.StaffRoleHelpdeskOffline:
		return ticket.IsOffline
	default:
		return false
	}
}

func actorFromSubject(subject domain.SubjectType, id string) events.Actor {
	switch subject {
	case domain.SubjectTypeStaff:
		return staffActor(id)
	default:
		return applicantActor(id)
	}
}

// stringPreview truncates to at most max bytes on a rune boundary so
// the event payload stays valid UTF-8.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	cut := max
	if cut > 3 {
		cut -= 3
	}
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	if max <= 3 {
		return body[:cut]
	}
	return body[:cut] + "..."
}

func derefOr(val *string, fallback string) string {
	if val == nil {
		return fallback
	}
	return *val
}

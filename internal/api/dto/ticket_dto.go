package dto

import (
	"time"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject    string  `json:"subject"`
	Message    string  `json:"message"`
	CategoryID *string `json:"category_id"`
	IsOffline  bool    `json:"is_offline"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// UpdateStatusRequest payload for staff status changes.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// UpdatePriorityRequest payload for staff priority changes.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload. A null operator_id clears the assignment.
type AssignTicketRequest struct {
	OperatorID *string `json:"operator_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ApplicantID string                `json:"applicant_id"`
	CategoryID  *string               `json:"category_id"`
	Subject     string                `json:"subject"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	AssignedTo  *string               `json:"assigned_to"`
	IsOffline   bool                  `json:"is_offline"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	ClosedAt *time.Time              `json:"closed_at"`
	Messages []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse represents one thread entry.
type TicketMessageResponse struct {
	ID         string                   `json:"id"`
	AuthorType domain.MessageAuthorType `json:"author_type"`
	AuthorID   *string                  `json:"author_id"`
	AuthorRole *domain.StaffRole        `json:"author_role,omitempty"`
	Body       string                   `json:"body"`
	CreatedAt  time.Time                `json:"created_at"`
}

// TicketHistoryResponse is one audit trail entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangedByID *string                 `json:"changed_by_id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewTicketSummary maps the domain model.
func NewTicketSummary(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:          ticket.ID,
		ApplicantID: ticket.ApplicantID,
		CategoryID:  ticket.CategoryID,
		Subject:     ticket.Subject,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		AssignedTo:  ticket.AssignedTo,
		IsOffline:   ticket.IsOffline,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// NewTicketListResponse maps a slice of tickets.
func NewTicketListResponse(tickets []domain.Ticket) []TicketSummary {
	out := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketSummary(&tickets[i]))
	}
	return out
}

// NewTicketDetailResponse maps a ticket with its thread.
func NewTicketDetailResponse(ticket *domain.Ticket, messages []domain.TicketMessage) TicketDetailResponse {
	resp := TicketDetailResponse{
		TicketSummary: NewTicketSummary(ticket),
		ClosedAt:      ticket.ClosedAt,
		Messages:      make([]TicketMessageResponse, 0, len(messages)),
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, NewTicketMessageResponse(&messages[i]))
	}
	return resp
}

// NewTicketMessageResponse maps one message.
func NewTicketMessageResponse(msg *domain.TicketMessage) TicketMessageResponse {
	return TicketMessageResponse{
		ID:         msg.ID,
		AuthorType: msg.AuthorType,
		AuthorID:   msg.AuthorID,
		AuthorRole: msg.AuthorRole,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
}

// NewTicketHistoryResponse maps audit entries.
func NewTicketHistoryResponse(entries []domain.TicketHistory) []TicketHistoryResponse {
	out := make([]TicketHistoryResponse, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		out = append(out, TicketHistoryResponse{
			ID:          entry.ID,
			ChangedByID: entry.ChangedByID,
			ChangeType:  entry.ChangeType,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return out
}

package dto

import (
	"time"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// CreateQueueTicketRequest payload for taking a walk-in number.
type CreateQueueTicketRequest struct {
	CategoryID *string `json:"category_id"`
}

// QueueTicketResponse is the walk-in ticket view.
type QueueTicketResponse struct {
	ID          string             `json:"id"`
	ApplicantID string             `json:"applicant_id"`
	QueueNumber int                `json:"queue_number"`
	CategoryID  *string            `json:"category_id"`
	Status      domain.QueueStatus `json:"status"`
	CounterID   *string            `json:"counter_id"`
	OperatorID  *string            `json:"operator_id"`
	CreatedAt   time.Time          `json:"created_at"`
	ServedAt    *time.Time         `json:"served_at"`
	CompletedAt *time.Time         `json:"completed_at"`
}

// CounterRequest payload for counter management.
type CounterRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

// CounterClaimRequest payload for seating an operator.
type CounterClaimRequest struct {
	OperatorID string `json:"operator_id"`
}

// CounterResponse is the counter view.
type CounterResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	IsActive   bool    `json:"is_active"`
	OperatorID *string `json:"operator_id"`
}

// CategoryRequest payload for category management.
type CategoryRequest struct {
	Name      string `json:"name"`
	IsOffline bool   `json:"is_offline"`
}

// CategoryResponse is the category view.
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsOffline bool   `json:"is_offline"`
}

// NewQueueTicketResponse maps the domain model.
func NewQueueTicketResponse(ticket *domain.QueueTicket) QueueTicketResponse {
	return QueueTicketResponse{
		ID:          ticket.ID,
		ApplicantID: ticket.ApplicantID,
		QueueNumber: ticket.QueueNumber,
		CategoryID:  ticket.CategoryID,
		Status:      ticket.Status,
		CounterID:   ticket.CounterID,
		OperatorID:  ticket.OperatorID,
		CreatedAt:   ticket.CreatedAt,
		ServedAt:    ticket.ServedAt,
		CompletedAt: ticket.CompletedAt,
	}
}

// NewQueueTicketListResponse maps a slice of queue tickets.
func NewQueueTicketListResponse(tickets []domain.QueueTicket) []QueueTicketResponse {
	out := make([]QueueTicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewQueueTicketResponse(&tickets[i]))
	}
	return out
}

// NewCounterResponse maps the domain model.
func NewCounterResponse(counter *domain.HelpdeskCounter) CounterResponse {
	return CounterResponse{
		ID:         counter.ID,
		Name:       counter.Name,
		IsActive:   counter.IsActive,
		OperatorID: counter.OperatorID,
	}
}

// NewCounterListResponse maps a slice of counters.
func NewCounterListResponse(counters []domain.HelpdeskCounter) []CounterResponse {
	out := make([]CounterResponse, 0, len(counters))
	for i := range counters {
		out = append(out, NewCounterResponse(&counters[i]))
	}
	return out
}

// NewCategoryResponse maps the domain model.
func NewCategoryResponse(category *domain.TicketCategory) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		IsOffline: category.IsOffline,
	}
}

// NewCategoryListResponse maps a slice of categories.
func NewCategoryListResponse(categories []domain.TicketCategory) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, NewCategoryResponse(&categories[i]))
	}
	return out
}

package domain

import "time"

// TicketStatus enumerates lifecycle states for help tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates triage urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Ticket is the aggregate for online help requests.
type Ticket struct {
	ID          string
	ApplicantID string
	CategoryID  *string
	Subject     string
	Status      TicketStatus
	Priority    TicketPriority
	AssignedTo  *string
	IsOffline   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusClosed},
	TicketStatusInProgress: {TicketStatusOpen, TicketStatusClosed},
	TicketStatusClosed:     {TicketStatusInProgress},
}

// ValidTicketTransition reports whether a status move is allowed.
// CLOSED -> IN_PROGRESS exists only for the reopen-on-staff-reply path;
// direct staff status updates on closed tickets go through it too.
func ValidTicketTransition(current, next TicketStatus) bool {
	for _, candidate := range ticketTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

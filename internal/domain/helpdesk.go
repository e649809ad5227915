package domain

import "time"

// HelpdeskOperator marks a staff member as serving the online queue or
// the walk-in counter queue.
type HelpdeskOperator struct {
	StaffID   string
	IsOffline bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HelpdeskCounter is a physical service point staffed by at most one
// operator at a time.
type HelpdeskCounter struct {
	ID         string
	Name       string
	IsActive   bool
	OperatorID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TicketCategory classifies help requests for both the online ticket
// desk and the walk-in queue.
type TicketCategory struct {
	ID        string
	Name      string
	IsOffline bool
	CreatedAt time.Time
}

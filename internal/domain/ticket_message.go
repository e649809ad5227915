package domain

import "time"

// MessageAuthorType indicates who authored a ticket message.
type MessageAuthorType string

const (
	AuthorTypeApplicant MessageAuthorType = "APPLICANT"
	AuthorTypeStaff     MessageAuthorType = "STAFF"
	AuthorTypeSystem    MessageAuthorType = "SYSTEM"
)

// TicketMessage captures one entry of a ticket thread. Messages are
// append-only and immutable once written.
type TicketMessage struct {
	ID         string
	TicketID   string
	AuthorType MessageAuthorType
	AuthorID   *string
	AuthorRole *StaffRole
	Body       string
	CreatedAt  time.Time
}

package events

import (
	"time"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicantRegistered   EventType = "applicant_registered"
	EventGroupAssigned         EventType = "group_assigned"
	EventJoinConfirmed         EventType = "join_confirmed"
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketMessageAdded    EventType = "ticket_message_added"
	EventQueueTicketCreated    EventType = "queue_ticket_created"
	EventQueueTicketCalled     EventType = "queue_ticket_called"
	EventQueueTicketRecalled   EventType = "queue_ticket_recalled"
	EventQueueTicketServing    EventType = "queue_ticket_serving"
	EventQueueTicketCompleted  EventType = "queue_ticket_completed"
	EventQueueTicketSkipped    EventType = "queue_ticket_skipped"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type        domain.SubjectType `json:"type"`
	ApplicantID *string            `json:"applicant_id,omitempty"`
	StaffID     *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services. Table names the
// affected store table so the realtime feed can key its channels.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Table     string      `json:"table"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// GroupAssignedPayload payload.
type GroupAssignedPayload struct {
	GroupID     string `json:"group_id"`
	GroupName   string `json:"group_name"`
	MemberCount int    `json:"member_count"`
	Capacity    int    `json:"capacity"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject    string                `json:"subject"`
	CategoryID *string               `json:"category_id,omitempty"`
	Priority   domain.TicketPriority `json:"priority"`
	IsOffline  bool                  `json:"is_offline"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OperatorID *string `json:"operator_id,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string                   `json:"message_id"`
	AuthorType  domain.MessageAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	Reopened    bool                     `json:"reopened"`
	BodyPreview string                   `json:"body_preview"`
}

// QueueAnnouncementPayload carries what the front end speaks aloud when a
// queue ticket is called or recalled.
type QueueAnnouncementPayload struct {
	QueueNumber int    `json:"queue_number"`
	CounterID   string `json:"counter_id"`
	CounterName string `json:"counter_name"`
}

// QueueStatusPayload payload for the remaining queue transitions.
type QueueStatusPayload struct {
	QueueNumber int                `json:"queue_number"`
	OldStatus   domain.QueueStatus `json:"old_status"`
	NewStatus   domain.QueueStatus `json:"new_status"`
}

package domain

import "time"

// QueueStatus enumerates lifecycle states for walk-in queue tickets.
type QueueStatus string

const (
	QueueStatusWaiting   QueueStatus = "WAITING"
	QueueStatusCalled    QueueStatus = "CALLED"
	QueueStatusServing   QueueStatus = "SERVING"
	QueueStatusCompleted QueueStatus = "COMPLETED"
	QueueStatusSkipped   QueueStatus = "SKIPPED"
)

// Queue actions drive the walk-in lifecycle. Recall is not a transition:
// it only re-stamps the ticket to re-trigger the announcement.
const (
	QueueActionCallNext     = "call_next"
	QueueActionRecall       = "recall"
	QueueActionStartServing = "start_serving"
	QueueActionComplete     = "complete"
	QueueActionSkip         = "skip"
)

var queueTransitions = map[string][]QueueStatus{
	QueueActionCallNext:     {QueueStatusWaiting},
	QueueActionRecall:       {QueueStatusCalled, QueueStatusServing},
	QueueActionStartServing: {QueueStatusCalled},
	QueueActionComplete:     {QueueStatusServing},
	QueueActionSkip:         {QueueStatusCalled, QueueStatusServing},
}

// ValidQueueTransition reports whether an action may fire from a status.
func ValidQueueTransition(action string, from QueueStatus) bool {
	allowed, ok := queueTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// QueueTicket is a walk-in service request tracked through a counter-based
// call/serve lifecycle.
type QueueTicket struct {
	ID          string
	ApplicantID string
	QueueNumber int
	CategoryID  *string
	Status      QueueStatus
	CounterID   *string
	OperatorID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ServedAt    *time.Time
	CompletedAt *time.Time
}

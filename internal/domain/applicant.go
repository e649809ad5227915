package domain

import "time"

// ApplicantStatus represents lifecycle states for an applicant account.
type ApplicantStatus string

const (
	ApplicantStatusActive    ApplicantStatus = "ACTIVE"
	ApplicantStatusSuspended ApplicantStatus = "SUSPENDED"
)

// Applicant is the domain model for prospective students registering
// through the portal.
type Applicant struct {
	ID              string
	Name            string
	Email           string
	Phone           string
	PasswordHash    string
	Status          ApplicantStatus
	AssignedGroupID *string
	JoinConfirmed   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

package dto

import (
	"time"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// ApplicantRegisterRequest payload for new applicants.
type ApplicantRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// ApplicantLoginRequest payload for login.
type ApplicantLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Subject   domain.SubjectType `json:"subject"`
	Role      *domain.StaffRole  `json:"role,omitempty"`
}

// ApplicantResponse is the applicant profile view.
type ApplicantResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Status          string    `json:"status"`
	AssignedGroupID *string   `json:"assigned_group_id"`
	JoinConfirmed   bool      `json:"join_confirmed"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewApplicantResponse maps the domain model.
func NewApplicantResponse(applicant *domain.Applicant) ApplicantResponse {
	return ApplicantResponse{
		ID:              applicant.ID,
		Name:            applicant.Name,
		Email:           applicant.Email,
		Phone:           applicant.Phone,
		Status:          string(applicant.Status),
		AssignedGroupID: applicant.AssignedGroupID,
		JoinConfirmed:   applicant.JoinConfirmed,
		CreatedAt:       applicant.CreatedAt,
	}
}

package dto

import (
	"time"

	"github.com/SMKJI/simba-ji-sub000/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// StaffRequest payload for admin staff management.
type StaffRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
	Active   *bool            `json:"active"`
}

// StaffResponse is the staff account view.
type StaffResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"created_at"`
}

// OperatorRequest payload for operator enrollment.
type OperatorRequest struct {
	StaffID   string `json:"staff_id"`
	IsOffline bool   `json:"is_offline"`
	IsActive  bool   `json:"is_active"`
}

// OperatorResponse is the operator roster view.
type OperatorResponse struct {
	StaffID   string `json:"staff_id"`
	IsOffline bool   `json:"is_offline"`
	IsActive  bool   `json:"is_active"`
}

// NewStaffResponse maps the domain model.
func NewStaffResponse(member *domain.StaffMember) StaffResponse {
	return StaffResponse{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Role:      member.Role,
		Active:    member.Active,
		CreatedAt: member.CreatedAt,
	}
}

// NewStaffListResponse maps a slice of staff accounts.
func NewStaffListResponse(members []domain.StaffMember) []StaffResponse {
	out := make([]StaffResponse, 0, len(members))
	for i := range members {
		out = append(out, NewStaffResponse(&members[i]))
	}
	return out
}

// NewOperatorResponse maps the domain model.
func NewOperatorResponse(operator *domain.HelpdeskOperator) OperatorResponse {
	return OperatorResponse{
		StaffID:   operator.StaffID,
		IsOffline: operator.IsOffline,
		IsActive:  operator.IsActive,
	}
}

// NewOperatorListResponse maps a roster.
func NewOperatorListResponse(operators []domain.HelpdeskOperator) []OperatorResponse {
	out := make([]OperatorResponse, 0, len(operators))
	for i := range operators {
		out = append(out, NewOperatorResponse(&operators[i]))
	}
	return out
}

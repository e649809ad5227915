package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/dto"
	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// StaffHandler exposes staff authentication and credential recovery.
type StaffHandler struct {
	auth *service.AuthService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService) *StaffHandler {
	return &StaffHandler{auth: authService}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	login, err := h.auth.LoginStaff(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     login.Token,
			ExpiresAt: login.ExpiresAt,
			Subject:   login.Subject,
			Role:      login.Role,
		},
	})
}

// RequestPasswordReset handles POST /auth/password/reset/request.
// Unknown emails succeed silently so the endpoint cannot be used to
// probe which accounts exist.
func (h *StaffHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}
	subject := domain.SubjectTypeStaff
	if c.Query("subject") == "applicant" {
		subject = domain.SubjectTypeApplicant
	}
	if _, err := h.auth.RequestPasswordReset(c.Context(), subject, req.Email); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"requested": true}})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *StaffHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}
	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

// ChangePassword handles POST /auth/password/change for authenticated
// staff.
func (h *StaffHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ChangePassword(c.Context(), domain.SubjectTypeStaff, principal.Staff.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// Profile handles GET /staff/me.
func (h *StaffHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(principal.Staff)})
}

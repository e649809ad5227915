package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/dto"
	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// ApplicantsHandler exposes registration, login and profile endpoints
// for prospective students.
type ApplicantsHandler struct {
	auth   *service.AuthService
	groups *service.GroupService
}

// NewApplicantsHandler constructs handler.
func NewApplicantsHandler(authService *service.AuthService, groupService *service.GroupService) *ApplicantsHandler {
	return &ApplicantsHandler{auth: authService, groups: groupService}
}

// Register handles POST /auth/applicants/register.
func (h *ApplicantsHandler) Register(c *fiber.Ctx) error {
	var req dto.ApplicantRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	applicant, err := h.auth.RegisterApplicant(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	login, err := h.auth.LoginApplicant(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"applicant": dto.NewApplicantResponse(applicant),
			"auth": dto.AuthResponse{
				Token:     login.Token,
				ExpiresAt: login.ExpiresAt,
				Subject:   login.Subject,
			},
		},
	})
}

// Login handles POST /auth/applicants/login.
func (h *ApplicantsHandler) Login(c *fiber.Ctx) error {
	var req dto.ApplicantLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	login, err := h.auth.LoginApplicant(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     login.Token,
			ExpiresAt: login.ExpiresAt,
			Subject:   login.Subject,
		},
	})
}

// Profile handles GET /applicants/me.
func (h *ApplicantsHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	return c.JSON(fiber.Map{"data": dto.NewApplicantResponse(principal.Applicant)})
}

// RequestGroup handles POST /applicants/me/group. The applicant is
// placed into the oldest group with a free slot; a second call while
// already assigned is a conflict.
func (h *ApplicantsHandler) RequestGroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	group, err := h.groups.Assign(c.Context(), principal.Applicant.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewGroupResponse(group, true)})
}

// MyGroup handles GET /applicants/me/group.
func (h *ApplicantsHandler) MyGroup(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	group, err := h.groups.GroupForApplicant(c.Context(), principal.Applicant.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGroupResponse(group, true)})
}

// ConfirmJoin handles POST /applicants/me/group/confirm.
func (h *ApplicantsHandler) ConfirmJoin(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	if err := h.groups.ConfirmJoin(c.Context(), principal.Applicant.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"join_confirmed": true}})
}

// ChangePassword handles POST /applicants/me/password.
func (h *ApplicantsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.auth.ChangePassword(c.Context(), domain.SubjectTypeApplicant, principal.Applicant.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

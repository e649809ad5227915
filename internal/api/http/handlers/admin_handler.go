package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/dto"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/observability"
	"github.com/SMKJI/simba-ji-sub000/internal/repository"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// AdminHandler exposes administration endpoints: staff accounts,
// helpdesk counters, operator rosters and ticket categories.
type AdminHandler struct {
	admin   *service.AdminService
	metrics *observability.Metrics
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, metrics *observability.Metrics) *AdminHandler {
	return &AdminHandler{admin: adminService, metrics: metrics}
}

// Stats handles GET /admin/stats with request counters.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}

// CreateStaff handles POST /admin/staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.admin.CreateStaff(c.Context(), service.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Active:   req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewStaffResponse(member)})
}

// UpdateStaff handles PATCH /admin/staff/:id.
func (h *AdminHandler) UpdateStaff(c *fiber.Ctx) error {
	var req dto.StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.admin.UpdateStaff(c.Context(), c.Params("id"), service.StaffInput{
		Name:   req.Name,
		Role:   req.Role,
		Active: req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(member)})
}

// ListStaff handles GET /admin/staff.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	filter := repository.StaffFilter{}
	filter.Limit, filter.Offset = parsePagination(c)
	if role := c.Query("role"); role != "" {
		staffRole := domain.StaffRole(role)
		filter.Role = &staffRole
	}
	members, err := h.admin.ListStaff(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffListResponse(members)})
}

// GetStaff handles GET /admin/staff/:id.
func (h *AdminHandler) GetStaff(c *fiber.Ctx) error {
	member, err := h.admin.GetStaff(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffResponse(member)})
}

// RegisterOperator handles PUT /admin/operators.
func (h *AdminHandler) RegisterOperator(c *fiber.Ctx) error {
	var req dto.OperatorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StaffID == "" {
		return apperrors.NewValidationError("staff_id required", nil)
	}
	operator, err := h.admin.RegisterOperator(c.Context(), req.StaffID, req.IsOffline, req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOperatorResponse(operator)})
}

// ListOperators handles GET /admin/operators?offline=true|false.
func (h *AdminHandler) ListOperators(c *fiber.Ctx) error {
	isOffline := c.Query("offline") == "true"
	operators, err := h.admin.ListOperators(c.Context(), isOffline)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOperatorListResponse(operators)})
}

// CreateCounter handles POST /admin/counters.
func (h *AdminHandler) CreateCounter(c *fiber.Ctx) error {
	var req dto.CounterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	counter, err := h.admin.CreateCounter(c.Context(), req.Name, isActive)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCounterResponse(counter)})
}

// UpdateCounter handles PATCH /admin/counters/:id.
func (h *AdminHandler) UpdateCounter(c *fiber.Ctx) error {
	var req dto.CounterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	counter, err := h.admin.UpdateCounter(c.Context(), c.Params("id"), req.Name, req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCounterResponse(counter)})
}

// ListCounters handles GET /admin/counters.
func (h *AdminHandler) ListCounters(c *fiber.Ctx) error {
	counters, err := h.admin.ListCounters(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCounterListResponse(counters)})
}

// ClaimCounter handles POST /admin/counters/:id/claim.
func (h *AdminHandler) ClaimCounter(c *fiber.Ctx) error {
	var req dto.CounterClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OperatorID == "" {
		return apperrors.NewValidationError("operator_id required", nil)
	}
	counter, err := h.admin.ClaimCounter(c.Context(), c.Params("id"), req.OperatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCounterResponse(counter)})
}

// ReleaseCounter handles POST /admin/counters/:id/release.
func (h *AdminHandler) ReleaseCounter(c *fiber.Ctx) error {
	counter, err := h.admin.ReleaseCounter(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCounterResponse(counter)})
}

// CreateCategory handles POST /admin/categories.
func (h *AdminHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.admin.CreateCategory(c.Context(), req.Name, req.IsOffline)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// ListCategories handles GET /admin/categories.
func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.admin.ListCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryListResponse(categories)})
}

// DeleteCategory handles DELETE /admin/categories/:id.
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.admin.DeleteCategory(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

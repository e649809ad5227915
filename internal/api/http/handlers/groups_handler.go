package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/dto"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// GroupsHandler exposes staff-side group management.
type GroupsHandler struct {
	groups *service.GroupService
}

// NewGroupsHandler constructs handler.
func NewGroupsHandler(groupService *service.GroupService) *GroupsHandler {
	return &GroupsHandler{groups: groupService}
}

// List handles GET /staff/groups.
func (h *GroupsHandler) List(c *fiber.Ctx) error {
	groups, err := h.groups.ListGroups(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGroupListResponse(groups, true)})
}

// Create handles POST /staff/groups.
func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := h.groups.CreateGroup(c.Context(), service.GroupInput{
		Name:       req.Name,
		Capacity:   req.Capacity,
		InviteLink: req.InviteLink,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewGroupResponse(group, true)})
}

// Update handles PATCH /staff/groups/:id.
func (h *GroupsHandler) Update(c *fiber.Ctx) error {
	var req dto.GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := h.groups.UpdateGroup(c.Context(), c.Params("id"), service.GroupInput{
		Name:       req.Name,
		Capacity:   req.Capacity,
		InviteLink: req.InviteLink,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGroupResponse(group, true)})
}

// Delete handles DELETE /staff/groups/:id. Only empty groups may go.
func (h *GroupsHandler) Delete(c *fiber.Ctx) error {
	if err := h.groups.DeleteGroup(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

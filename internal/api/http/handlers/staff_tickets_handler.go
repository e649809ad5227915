package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/dto"
	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// StaffTicketsHandler manages helpdesk-side ticket endpoints.
type StaffTicketsHandler struct {
	tickets    *service.TicketService
	assignment *service.AssignmentService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService, assignmentService *service.AssignmentService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: ticketService, assignment: assignmentService}
}

// List handles GET /staff/tickets.
func (h *StaffTicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	filter := parseStaffTicketQuery(c)
	tickets, err := h.tickets.ListStaffTickets(c.Context(), principal.Staff, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// Get handles GET /staff/tickets/:id.
func (h *StaffTicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	ticket, msgs, err := h.tickets.GetTicketForStaff(c.Context(), principal.Staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetailResponse(ticket, msgs)})
}

// AddMessage handles POST /staff/tickets/:id/messages. A staff reply to
// a closed ticket reopens it.
func (h *StaffTicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.tickets.AddMessage(c.Context(), domain.SubjectTypeStaff, principal.Staff.ID, principal.Staff, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketMessageResponse(msg)})
}

// UpdateStatus handles PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.Context(), principal.Staff, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// UpdatePriority handles PATCH /staff/tickets/:id/priority.
func (h *StaffTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdatePriority(c.Context(), principal.Staff, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Assign handles PATCH /staff/tickets/:id/assignment. A null operator
// clears the assignment without touching the status.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.assignment.AssignTicket(c.Context(), principal.Staff, c.Params("id"), req.OperatorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Balance handles POST /staff/tickets/balance. Redistributes open
// online tickets evenly across the active operator roster.
func (h *StaffTicketsHandler) Balance(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	result, err := h.assignment.BalanceTickets(c.Context(), principal.Staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// History handles GET /staff/tickets/:id/history.
func (h *StaffTicketsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	limit, offset := parsePagination(c)
	entries, err := h.tickets.ListHistory(c.Context(), principal.Staff, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketHistoryResponse(entries)})
}

func parseStaffTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	filter.Limit, filter.Offset = parsePagination(c)

	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(raw)))
		}
	}
	for _, raw := range strings.Split(c.Query("priority"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.ToUpper(raw)))
		}
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		filter.AssignedTo = &assigned
	}
	if c.Query("unassigned") == "true" {
		filter.Unassigned = true
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	return filter
}

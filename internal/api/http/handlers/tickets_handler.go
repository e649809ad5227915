package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/SMKJI/simba-ji-sub000/internal/api/dto"
	"github.com/SMKJI/simba-ji-sub000/internal/auth"
	"github.com/SMKJI/simba-ji-sub000/internal/domain"
	"github.com/SMKJI/simba-ji-sub000/internal/service"
	apperrors "github.com/SMKJI/simba-ji-sub000/pkg/util"
)

// TicketsHandler manages applicant-side ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
	queue   *service.QueueService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, queueService *service.QueueService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, queue: queueService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal.Applicant.ID, service.TicketCreateInput{
		Subject:    req.Subject,
		Message:    req.Message,
		CategoryID: req.CategoryID,
		IsOffline:  req.IsOffline,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	limit, offset := parsePagination(c)
	tickets, err := h.service.ListApplicantTickets(c.Context(), principal.Applicant.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	ticket, msgs, err := h.service.GetTicketForApplicant(c.Context(), principal.Applicant.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetailResponse(ticket, msgs)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.AddMessage(c.Context(), domain.SubjectTypeApplicant, principal.Applicant.ID, nil, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketMessageResponse(msg)})
}

// TakeQueueNumber POST /queue/tickets. Walk-in applicants take a daily
// number instead of opening an online ticket.
func (h *TicketsHandler) TakeQueueNumber(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	var req dto.CreateQueueTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.queue.CreateQueueTicket(c.Context(), principal.Applicant.ID, req.CategoryID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

// GetQueueTicket GET /queue/tickets/:id.
func (h *TicketsHandler) GetQueueTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Applicant == nil {
		return apperrors.NewUnauthorized("applicant required")
	}
	ticket, err := h.queue.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if ticket.ApplicantID != principal.Applicant.ID {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

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

// QueueHandler manages counter-side walk-in queue endpoints.
type QueueHandler struct {
	queue *service.QueueService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queueService *service.QueueService) *QueueHandler {
	return &QueueHandler{queue: queueService}
}

// ListToday handles GET /staff/queue. Status filter is a comma list.
func (h *QueueHandler) ListToday(c *fiber.Ctx) error {
	var statuses []domain.QueueStatus
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			statuses = append(statuses, domain.QueueStatus(strings.ToUpper(raw)))
		}
	}
	tickets, err := h.queue.ListToday(c.Context(), statuses)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketListResponse(tickets)})
}

// CallNext handles POST /staff/queue/counters/:id/call-next.
func (h *QueueHandler) CallNext(c *fiber.Ctx) error {
	operator, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.CallNext(c.Context(), operator, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

// Recall handles POST /staff/queue/counters/:id/recall.
func (h *QueueHandler) Recall(c *fiber.Ctx) error {
	operator, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.Recall(c.Context(), operator, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

// StartServing handles POST /staff/queue/counters/:id/start-serving.
func (h *QueueHandler) StartServing(c *fiber.Ctx) error {
	operator, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.StartServing(c.Context(), operator, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

// Complete handles POST /staff/queue/counters/:id/complete.
func (h *QueueHandler) Complete(c *fiber.Ctx) error {
	operator, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.Complete(c.Context(), operator, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

// Skip handles POST /staff/queue/counters/:id/skip.
func (h *QueueHandler) Skip(c *fiber.Ctx) error {
	operator, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.queue.Skip(c.Context(), operator, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueTicketResponse(ticket)})
}

func staffFromContext(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal.Staff, nil
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	"github.com/spec-kit/ticket-workflow/internal/service"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// TicketsHandler manages ticket read and workflow endpoints.
type TicketsHandler struct {
	queries *service.TicketQueryService
	triage  *service.TriageService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(queries *service.TicketQueryService, triage *service.TriageService) *TicketsHandler {
	return &TicketsHandler{queries: queries, triage: triage}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := repository.TicketFilter{}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseTicketStatus(raw)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		filter.Status = &status
	}
	if raw := c.Query("assignee"); raw != "" {
		assignee := raw
		filter.Assignee = &assignee
	}
	filter.Limit = c.QueryInt("limit", 0)
	filter.Offset = c.QueryInt("offset", 0)

	tickets, err := h.queries.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketListResponse(tickets)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.queries.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// ApplyTriage PATCH /tickets/:id/triage.
func (h *TicketsHandler) ApplyTriage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := service.TriageUpdate{
		Category:   req.Category,
		Assignee:   req.Assignee,
		SLADueDate: req.SLADueDate,
	}
	if req.Priority != nil {
		priority, err := domain.ParseTicketPriority(*req.Priority)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		update.Priority = &priority
	}
	if req.Status != nil {
		status, err := domain.ParseTicketStatus(*req.Status)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		update.Status = &status
	}

	ticket, err := h.triage.ApplyTriage(c.Context(), c.Params("id"), update, Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// UpdateStatus POST /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := domain.ParseTicketStatus(req.Status)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	ticket, err := h.triage.UpdateTicketStatus(c.Context(), c.Params("id"), status, Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// RecordResolution POST /tickets/:id/resolution.
func (h *TicketsHandler) RecordResolution(c *fiber.Ctx) error {
	var req dto.ResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.triage.RecordResolution(c.Context(), c.Params("id"), service.ResolutionInput{
		Notes:    req.Notes,
		FollowUp: req.FollowUp,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	}, Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/service"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// IntakeHandler manages complaint intake endpoints.
type IntakeHandler struct {
	service *service.IntakeService
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(intakeService *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: intakeService}
}

// Submit POST /intake. Returns 201 with a created ticket or 409 with a
// duplicate prompt the caller must resolve explicitly.
func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	var req dto.IntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, duplicate, err := h.service.SubmitIntake(c.Context(), req.ToIntakeInput(), req.SourceOrDefault(), Actor(c))
	if err != nil {
		return err
	}
	if duplicate != nil {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"data": dto.IntakeResponse{
			Duplicate: &dto.DuplicateResponse{ExistingTicket: dto.ToTicketResponse(duplicate.Existing)},
		}})
	}
	response := dto.ToTicketResponse(ticket)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.IntakeResponse{Ticket: &response}})
}

// Merge POST /intake/merge. Folds the pending intake into the referenced
// ticket.
func (h *IntakeHandler) Merge(c *fiber.Ctx) error {
	var req dto.ResolveDuplicateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ExistingID == "" {
		return apperrors.NewValidationError("existing_id required", nil)
	}
	ticket, err := h.service.MergeIntoExisting(c.Context(), req.ExistingID, req.Intake.ToIntakeInput(), Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

// CreateSeparate POST /intake/separate. Bypasses dedup.
func (h *IntakeHandler) CreateSeparate(c *fiber.Ctx) error {
	var req dto.IntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateSeparate(c.Context(), req.ToIntakeInput(), req.SourceOrDefault(), Actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ToTicketResponse(ticket)})
}

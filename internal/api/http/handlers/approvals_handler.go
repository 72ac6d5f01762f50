package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/service"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// ApprovalsHandler manages the change-approval endpoints.
type ApprovalsHandler struct {
	service *service.ApprovalService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(approvalService *service.ApprovalService) *ApprovalsHandler {
	return &ApprovalsHandler{service: approvalService}
}

// Propose POST /approvals.
func (h *ApprovalsHandler) Propose(c *fiber.Ctx) error {
	var req dto.ProposeChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticket_id required", nil)
	}
	approval, err := h.service.ProposeChange(c.Context(), req.TicketID, req.Field, req.NewValue, Actor(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ToApprovalResponse(approval)})
}

// List GET /approvals.
func (h *ApprovalsHandler) List(c *fiber.Ctx) error {
	approvals, err := h.service.ListApprovals(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ApprovalResponse, 0, len(approvals))
	for i := range approvals {
		items = append(items, dto.ToApprovalResponse(&approvals[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Resolve POST /approvals/:id/resolve.
func (h *ApprovalsHandler) Resolve(c *fiber.Ctx) error {
	var req dto.ResolveApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.ResolveApproval(c.Context(), c.Params("id"), service.ApprovalAction(req.Action), Actor(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"resolved": true}})
}

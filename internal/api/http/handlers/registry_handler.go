package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/service"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// RegistryHandler manages the anomaly and alert endpoints.
type RegistryHandler struct {
	registry *service.AlertRegistry
}

// NewRegistryHandler constructs handler.
func NewRegistryHandler(registry *service.AlertRegistry) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// RecordAnomaly POST /anomalies.
func (h *RegistryHandler) RecordAnomaly(c *fiber.Ctx) error {
	var req dto.RecordAnomalyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Type == "" {
		return apperrors.NewValidationError("type required", nil)
	}
	anomaly := h.registry.RecordAnomaly(c.Context(), domain.AnomalyType(req.Type), req.Quantity)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.ToAnomalyResponse(anomaly)})
}

// ListAnomalies GET /anomalies.
func (h *RegistryHandler) ListAnomalies(c *fiber.Ctx) error {
	anomalies := h.registry.ListAnomalies()
	items := make([]dto.AnomalyResponse, 0, len(anomalies))
	for _, anomaly := range anomalies {
		items = append(items, dto.ToAnomalyResponse(anomaly))
	}
	return c.JSON(fiber.Map{"data": items})
}

// RaiseAlert POST /alerts.
func (h *RegistryHandler) RaiseAlert(c *fiber.Ctx) error {
	var req dto.RaiseAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	severity, err := domain.ParseAlertSeverity(req.Severity)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if req.Summary == "" {
		return apperrors.NewValidationError("summary required", nil)
	}
	h.registry.RaiseSystemAlert(c.Context(), severity, req.Summary, req.Detail, req.RefID)
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"accepted": true}})
}

// ListAlerts GET /alerts.
func (h *RegistryHandler) ListAlerts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data":    dto.ToAlertResponses(h.registry.ListAlerts()),
		"pending": h.registry.PendingCount(),
	})
}

// Acknowledge POST /alerts/:id/ack.
func (h *RegistryHandler) Acknowledge(c *fiber.Ctx) error {
	if err := h.registry.Acknowledge(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"acknowledged": true}})
}

// Dismiss DELETE /alerts/:id.
func (h *RegistryHandler) Dismiss(c *fiber.Ctx) error {
	if err := h.registry.Dismiss(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"dismissed": true}})
}

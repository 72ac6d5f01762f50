package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/service"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// AnalyticsHandler serves the aggregated operational summary.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// IngestRecord POST /analytics/records.
func (h *AnalyticsHandler) IngestRecord(c *fiber.Ctx) error {
	var req dto.IngestRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return apperrors.NewValidationError("date must be YYYY-MM-DD", nil)
	}
	if err := h.analytics.Ingest(c.Context(), req.ToAnalyticsRecord(date)); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"stored": true}})
}

// Summary GET /analytics/summary?from=&to=&segment=.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return apperrors.NewValidationError("from must be YYYY-MM-DD", nil)
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return apperrors.NewValidationError("to must be YYYY-MM-DD", nil)
	}
	summary, err := h.analytics.SummarizeWindow(c.Context(), from, to, c.Query("segment"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ToSummaryResponse(summary)})
}

func parseDateQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/api/http/handlers"
	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	"github.com/spec-kit/ticket-workflow/internal/service"
	"github.com/spec-kit/ticket-workflow/internal/worker"

	httptransport "github.com/spec-kit/ticket-workflow/internal/api/http"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	ticketRepo := repository.NewMemoryTicketRepository()
	approvalRepo := repository.NewMemoryApprovalRepository()
	analyticsRepo := repository.NewMemoryAnalyticsRepository()
	dispatcher := events.NewInMemoryDispatcher()
	locks := service.NewTicketLocks()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo: ticketRepo,
		Locks:      locks,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo: ticketRepo,
		Locks:      locks,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	approvalService := service.NewApprovalService(service.ApprovalDependencies{
		ApprovalRepo: approvalRepo,
		TicketRepo:   ticketRepo,
		Locks:        locks,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      metrics,
	})
	registry := service.NewAlertRegistry(service.AlertRegistryDependencies{
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	}, config.AlertConfig{})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	}, config.NotificationConfig{})
	worker.Start(notificationService, nil, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler("test", "dev", nil, nil),
		Intake:        handlers.NewIntakeHandler(intakeService),
		Tickets:       handlers.NewTicketsHandler(service.NewTicketQueryService(ticketRepo), triageService),
		Approvals:     handlers.NewApprovalsHandler(approvalService),
		Registry:      handlers.NewRegistryHandler(registry),
		Analytics:     handlers.NewAnalyticsHandler(service.NewAnalyticsService(analyticsRepo)),
		Notifications: handlers.NewNotificationsHandler(notificationService),
		Metrics:       metrics,
	})
	return app
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Actor", "operator")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return decoded
}

func validIntakeBody() map[string]any {
	return map[string]any{
		"customer_name": "Asha Verma",
		"email":         "asha@example.com",
		"phone":         "+91 98765 43210",
		"pincode":       "560001",
		"category":      "inverter fault",
		"description":   "Inverter shuts down at noon",
	}
}

func TestIntakeSubmitCreatesTicket(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/intake", validIntakeBody()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	ticket := data["ticket"].(map[string]any)
	assert.Contains(t, ticket["id"], "CMP-")
	assert.Equal(t, "NEW", ticket["status"])
	assert.Equal(t, "MEDIUM", ticket["priority"])
}

func TestIntakeSubmitDuplicatePrompt(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/intake", validIntakeBody()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/intake", validIntakeBody()))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	duplicate := data["duplicate"].(map[string]any)
	existing := duplicate["existing_ticket"].(map[string]any)
	assert.Contains(t, existing["id"], "CMP-")
}

func TestIntakeValidationErrorEnvelope(t *testing.T) {
	app := setupApp(t)

	payload := validIntakeBody()
	payload["email"] = "not-an-email"
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/intake", payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	assert.Equal(t, "a valid email address is required", errBody["message"])
}

func TestTicketNotFoundEnvelope(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/tickets/CMP-20260314-404", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestTriageAndNotificationFlow(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/intake", validIntakeBody()))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	ticketID := body["data"].(map[string]any)["ticket"].(map[string]any)["id"].(string)

	resp, err = app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/tickets/"+ticketID+"/triage", map[string]any{
		"priority": "HIGH",
		"assignee": "ravi",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	ticket := body["data"].(map[string]any)
	assert.Equal(t, "HIGH", ticket["priority"])

	// the synchronous dispatcher delivers the assignment notification
	// before the triage call returns
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/notifications", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp)
	feed := body["data"].([]any)
	require.Len(t, feed, 1)
	assert.Equal(t, "Ticket Assigned", feed[0].(map[string]any)["title"])
}

func TestApprovalLifecycleOverHTTP(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/intake", validIntakeBody()))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	ticketID := body["data"].(map[string]any)["ticket"].(map[string]any)["id"].(string)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/approvals", map[string]any{
		"ticket_id": ticketID,
		"field":     "priority",
		"new_value": "CRITICAL",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body = decodeBody(t, resp)
	approvalID := body["data"].(map[string]any)["id"].(string)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/approvals/"+approvalID+"/resolve", map[string]any{
		"action": "approve",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/tickets/"+ticketID, nil))
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, "CRITICAL", body["data"].(map[string]any)["priority"])
}

func TestAlertEndpoints(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/alerts", map[string]any{
		"severity": "HIGH",
		"summary":  "disk almost full",
		"ref_id":   "node-1",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/alerts", nil))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	alerts := body["data"].([]any)
	require.Len(t, alerts, 1)
	assert.Equal(t, float64(1), body["pending"])
	alertID := alerts[0].(map[string]any)["id"].(string)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/alerts/"+alertID+"/ack", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/alerts/"+alertID, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAnomalyClassificationOverHTTP(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/anomalies", map[string]any{
		"type":     "BULK_DELETE",
		"quantity": 42,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	anomaly := body["data"].(map[string]any)
	assert.Equal(t, "HIGH", anomaly["severity"])
}

func TestAnalyticsSummaryOverHTTP(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/analytics/records", map[string]any{
		"date":             "2026-03-01",
		"segment":          "north",
		"resolved_tickets": 10, "first_contact_resolved": 4, "avg_turnaround_hours": 20,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/analytics/summary?from=2026-03-01&to=2026-03-31&segment=north", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	summary := body["data"].(map[string]any)
	assert.Equal(t, float64(10), summary["total_resolved"])
	assert.InDelta(t, 20.0, summary["avg_turnaround_hours"].(float64), 0.001)
}

func TestHealthLive(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "alive", body["status"])
}

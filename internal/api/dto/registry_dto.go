package dto

import (
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/service"
)

// ProposeChangeRequest records a gated field change.
type ProposeChangeRequest struct {
	TicketID string `json:"ticket_id"`
	Field    string `json:"field"`
	NewValue string `json:"new_value"`
}

// ResolveApprovalRequest approves or rejects a pending approval.
type ResolveApprovalRequest struct {
	Action string `json:"action"`
}

// ApprovalResponse mirrors the approval record.
type ApprovalResponse struct {
	ID            string     `json:"id"`
	TicketID      string     `json:"ticket_id"`
	Field         string     `json:"field"`
	PreviousValue string     `json:"previous_value"`
	NewValue      string     `json:"new_value"`
	ProposedBy    string     `json:"proposed_by"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at"`
}

// ToApprovalResponse maps one approval.
func ToApprovalResponse(approval *domain.Approval) ApprovalResponse {
	return ApprovalResponse{
		ID:            approval.ID,
		TicketID:      approval.TicketID,
		Field:         string(approval.Field),
		PreviousValue: approval.PreviousValue,
		NewValue:      approval.NewValue,
		ProposedBy:    approval.ProposedBy,
		Status:        string(approval.Status),
		CreatedAt:     approval.CreatedAt,
		ResolvedAt:    approval.ResolvedAt,
	}
}

// RecordAnomalyRequest reports an irregular event.
type RecordAnomalyRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// AnomalyResponse mirrors the classified anomaly.
type AnomalyResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Quantity   int       `json:"quantity"`
	Severity   string    `json:"severity"`
	DetectedAt time.Time `json:"detected_at"`
}

// RaiseAlertRequest raises a system alert.
type RaiseAlertRequest struct {
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
	Detail   string `json:"detail"`
	RefID    string `json:"ref_id"`
}

// AlertResponse mirrors a system alert.
type AlertResponse struct {
	ID           string    `json:"id"`
	Severity     string    `json:"severity"`
	Summary      string    `json:"summary"`
	Detail       string    `json:"detail"`
	RefID        string    `json:"ref_id"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// NotificationResponse is one feed entry.
type NotificationResponse struct {
	Seq       int64     `json:"seq"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TicketID  string    `json:"ticket_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SummaryResponse presents aggregated analytics. Rates stay raw ratios;
// clients format percentages.
type SummaryResponse struct {
	AvgTurnaroundHours         float64            `json:"avg_turnaround_hours"`
	MedianTurnaroundHours      float64            `json:"median_turnaround_hours"`
	FirstContactResolutionRate float64            `json:"first_contact_resolution_rate"`
	InstallerProductivity      float64            `json:"installer_productivity"`
	LeadConversionRate         float64            `json:"lead_conversion_rate"`
	DefectRate                 float64            `json:"defect_rate"`
	TotalResolved              int                `json:"total_resolved"`
	TotalJobs                  int                `json:"total_jobs"`
	Funnel                     map[string]int     `json:"funnel"`
	Aging                      map[string]float64 `json:"aging"`
}

// ToSummaryResponse maps the aggregate.
func ToSummaryResponse(summary service.Summary) SummaryResponse {
	funnel := make(map[string]int, len(summary.Funnel))
	for stage, count := range summary.Funnel {
		funnel[string(stage)] = count
	}
	aging := make(map[string]float64, len(summary.Aging))
	for stage, age := range summary.Aging {
		aging[string(stage)] = age
	}
	return SummaryResponse{
		AvgTurnaroundHours:         summary.AvgTurnaroundHours,
		MedianTurnaroundHours:      summary.MedianTurnaroundHours,
		FirstContactResolutionRate: summary.FirstContactResolutionRate,
		InstallerProductivity:      summary.InstallerProductivity,
		LeadConversionRate:         summary.LeadConversionRate,
		DefectRate:                 summary.DefectRate,
		TotalResolved:              summary.TotalResolved,
		TotalJobs:                  summary.TotalJobs,
		Funnel:                     funnel,
		Aging:                      aging,
	}
}

// ToAlertResponses maps the alert list.
func ToAlertResponses(alerts []domain.SystemAlert) []AlertResponse {
	result := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		result = append(result, AlertResponse{
			ID:           alert.ID,
			Severity:     string(alert.Severity),
			Summary:      alert.Summary,
			Detail:       alert.Detail,
			RefID:        alert.RefID,
			CreatedAt:    alert.CreatedAt,
			Acknowledged: alert.Acknowledged,
		})
	}
	return result
}

// ToAnomalyResponse maps one anomaly.
func ToAnomalyResponse(anomaly domain.Anomaly) AnomalyResponse {
	return AnomalyResponse{
		ID:         anomaly.ID,
		Type:       string(anomaly.Type),
		Quantity:   anomaly.Quantity,
		Severity:   string(anomaly.Severity),
		DetectedAt: anomaly.DetectedAt,
	}
}

// ToNotificationResponses maps the feed.
func ToNotificationResponses(notifications []domain.Notification) []NotificationResponse {
	result := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		result = append(result, NotificationResponse{
			Seq:       notification.Seq,
			Title:     notification.Title,
			Message:   notification.Message,
			TicketID:  notification.TicketID,
			Timestamp: notification.Timestamp,
		})
	}
	return result
}

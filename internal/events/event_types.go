package events

import (
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketMerged       EventType = "ticket_merged"
	EventTriageApplied      EventType = "triage_applied"
	EventTicketStatusChange EventType = "ticket_status_changed"
	EventTicketAssigned     EventType = "ticket_assigned"
	EventResolutionRecorded EventType = "resolution_recorded"
	EventSLAWarning         EventType = "sla_warning"
	EventSLABreach          EventType = "sla_breach"
	EventApprovalProposed   EventType = "approval_proposed"
	EventApprovalResolved   EventType = "approval_resolved"
	EventAnomalyDetected    EventType = "anomaly_detected"
	EventAlertRaised        EventType = "alert_raised"
)

// Event represents a domain event emitted by services. Actor is the
// caller-supplied identity string for the mutation that produced it.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     string      `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Category string                `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Source   domain.TicketSource   `json:"source"`
	Phone    string                `json:"phone"`
}

// TicketMergedPayload payload.
type TicketMergedPayload struct {
	MergedFromName string `json:"merged_from_name"`
	Attachments    int    `json:"attachments"`
}

// TriageAppliedPayload payload.
type TriageAppliedPayload struct {
	FieldsChanged int    `json:"fields_changed"`
	Summary       string `json:"summary"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Assignee string `json:"assignee"`
}

// ResolutionRecordedPayload payload.
type ResolutionRecordedPayload struct {
	FollowUp bool `json:"follow_up"`
	Rating   int  `json:"rating"`
}

// SLAEventPayload payload for warning and breach events.
type SLAEventPayload struct {
	DueDate        time.Time `json:"due_date"`
	RemainingHours float64   `json:"remaining_hours"`
}

// ApprovalPayload payload for proposal and resolution events.
type ApprovalPayload struct {
	ApprovalID string                `json:"approval_id"`
	Field      domain.ApprovalField  `json:"field"`
	Status     domain.ApprovalStatus `json:"status"`
}

// AnomalyDetectedPayload payload.
type AnomalyDetectedPayload struct {
	AnomalyType domain.AnomalyType   `json:"anomaly_type"`
	Quantity    int                  `json:"quantity"`
	Severity    domain.AlertSeverity `json:"severity"`
}

// AlertRaisedPayload payload.
type AlertRaisedPayload struct {
	AlertID  string               `json:"alert_id"`
	Severity domain.AlertSeverity `json:"severity"`
	Summary  string               `json:"summary"`
}

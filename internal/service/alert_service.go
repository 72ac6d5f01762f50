package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// AlertRegistry classifies anomalies and keeps a deduplicated,
// capacity-bounded list of system alerts with an acknowledge/dismiss
// lifecycle. Alerts are ephemeral operator state and live in memory.
type AlertRegistry struct {
	mu        sync.Mutex
	alerts    []domain.SystemAlert
	anomalies []domain.Anomaly

	capacity    int
	anomalyFeed int

	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      Clock
}

// AlertRegistryDependencies bundles collaborators for the registry.
type AlertRegistryDependencies struct {
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      Clock
}

// NewAlertRegistry constructs the registry.
func NewAlertRegistry(deps AlertRegistryDependencies, cfg config.AlertConfig) *AlertRegistry {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 50
	}
	anomalyFeed := cfg.AnomalyFeedSize
	if anomalyFeed <= 0 {
		anomalyFeed = 25
	}
	return &AlertRegistry{
		capacity:    capacity,
		anomalyFeed: anomalyFeed,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
		clock:       deps.Clock,
	}
}

// RecordAnomaly classifies an irregular event using the fixed per-type
// threshold table and appends it to the most-recent-N feed.
func (r *AlertRegistry) RecordAnomaly(ctx context.Context, anomalyType domain.AnomalyType, quantity int) domain.Anomaly {
	anomaly := domain.Anomaly{
		ID:         uuid.NewString(),
		Type:       anomalyType,
		Quantity:   quantity,
		Severity:   classifyAnomaly(anomalyType, quantity),
		DetectedAt: r.clock.Now(),
	}

	r.mu.Lock()
	r.anomalies = append([]domain.Anomaly{anomaly}, r.anomalies...)
	if len(r.anomalies) > r.anomalyFeed {
		r.anomalies = r.anomalies[:r.anomalyFeed]
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.AnomaliesDetected.WithLabelValues(string(anomaly.Severity)).Inc()
	}
	r.publish(ctx, events.Event{
		Type:  events.EventAnomalyDetected,
		Actor: "system",
		Payload: events.AnomalyDetectedPayload{
			AnomalyType: anomaly.Type,
			Quantity:    anomaly.Quantity,
			Severity:    anomaly.Severity,
		},
	})
	r.logger.Info("anomaly recorded",
		zap.String("type", string(anomalyType)),
		zap.Int("quantity", quantity),
		zap.String("severity", string(anomaly.Severity)))
	return anomaly
}

// RaiseSystemAlert adds an alert unless one with the same (refId, summary)
// already exists. New alerts are prepended; entries beyond capacity are
// silently evicted, acknowledged or not.
func (r *AlertRegistry) RaiseSystemAlert(ctx context.Context, severity domain.AlertSeverity, summary, detail, refID string) {
	r.mu.Lock()
	for _, alert := range r.alerts {
		if alert.RefID == refID && alert.Summary == summary {
			r.mu.Unlock()
			return
		}
	}
	alert := domain.SystemAlert{
		ID:        uuid.NewString(),
		Severity:  severity,
		Summary:   summary,
		Detail:    detail,
		RefID:     refID,
		CreatedAt: r.clock.Now(),
	}
	r.alerts = append([]domain.SystemAlert{alert}, r.alerts...)
	if len(r.alerts) > r.capacity {
		r.alerts = r.alerts[:r.capacity]
	}
	r.mu.Unlock()

	r.updatePendingGauge()
	r.publish(ctx, events.Event{
		Type:  events.EventAlertRaised,
		Actor: "system",
		Payload: events.AlertRaisedPayload{
			AlertID:  alert.ID,
			Severity: alert.Severity,
			Summary:  alert.Summary,
		},
	})
	r.logger.Warn("system alert raised",
		zap.String("alert_id", alert.ID),
		zap.String("severity", string(severity)),
		zap.String("summary", summary),
		zap.String("ref_id", refID))
}

// Acknowledge marks the alert acknowledged. Acknowledging twice is
// idempotent and only logs the first transition.
func (r *AlertRegistry) Acknowledge(ctx context.Context, alertID string) error {
	r.mu.Lock()
	var found *domain.SystemAlert
	for i := range r.alerts {
		if r.alerts[i].ID == alertID {
			found = &r.alerts[i]
			break
		}
	}
	if found == nil {
		r.mu.Unlock()
		return apperrors.NewNotFound("alert", map[string]any{"alert_id": alertID})
	}
	already := found.Acknowledged
	found.Acknowledged = true
	r.mu.Unlock()

	r.updatePendingGauge()
	if !already {
		r.logger.Info("alert acknowledged", zap.String("alert_id", alertID))
	}
	return nil
}

// Dismiss removes the alert entirely.
func (r *AlertRegistry) Dismiss(ctx context.Context, alertID string) error {
	r.mu.Lock()
	index := -1
	for i := range r.alerts {
		if r.alerts[i].ID == alertID {
			index = i
			break
		}
	}
	if index < 0 {
		r.mu.Unlock()
		return apperrors.NewNotFound("alert", map[string]any{"alert_id": alertID})
	}
	r.alerts = append(r.alerts[:index], r.alerts[index+1:]...)
	r.mu.Unlock()

	r.updatePendingGauge()
	r.logger.Info("alert dismissed", zap.String("alert_id", alertID))
	return nil
}

// ListAlerts returns the current alerts, newest first.
func (r *AlertRegistry) ListAlerts() []domain.SystemAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SystemAlert(nil), r.alerts...)
}

// ListAnomalies returns the most-recent-N anomaly feed.
func (r *AlertRegistry) ListAnomalies() []domain.Anomaly {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Anomaly(nil), r.anomalies...)
}

// PendingCount counts alerts not yet acknowledged.
func (r *AlertRegistry) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingLocked()
}

func (r *AlertRegistry) pendingLocked() int {
	count := 0
	for _, alert := range r.alerts {
		if !alert.Acknowledged {
			count++
		}
	}
	return count
}

func (r *AlertRegistry) updatePendingGauge() {
	if r.metrics == nil {
		return
	}
	r.mu.Lock()
	pending := r.pendingLocked()
	r.mu.Unlock()
	r.metrics.PendingAlerts.Set(float64(pending))
}

// classifyAnomaly derives severity from the fixed per-type threshold
// table. Unknown types default to Low.
func classifyAnomaly(anomalyType domain.AnomalyType, quantity int) domain.AlertSeverity {
	switch anomalyType {
	case domain.AnomalyLowDisk:
		if quantity >= 90 {
			return domain.SeverityHigh
		}
	case domain.AnomalyBulkDelete:
		if quantity > 20 {
			return domain.SeverityHigh
		}
	case domain.AnomalyLargeImport:
		if quantity > 50 {
			return domain.SeverityMedium
		}
	case domain.AnomalyLoginBurst:
		if quantity > 5 {
			return domain.SeverityMedium
		}
	}
	return domain.SeverityLow
}

func (r *AlertRegistry) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = r.clock.Now()
	_ = r.dispatcher.Publish(ctx, event)
}

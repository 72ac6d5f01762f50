package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

func newRegistryFixture(clock Clock, cfg config.AlertConfig) (*AlertRegistry, *eventRecorder) {
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	recordAll(dispatcher, recorder, events.EventAnomalyDetected, events.EventAlertRaised)

	registry := NewAlertRegistry(AlertRegistryDependencies{
		Dispatcher: dispatcher,
		Clock:      clock,
	}, cfg)
	return registry, recorder
}

func TestClassifyAnomalySeverity(t *testing.T) {
	cases := []struct {
		anomalyType domain.AnomalyType
		quantity    int
		severity    domain.AlertSeverity
	}{
		{domain.AnomalyLowDisk, 95, domain.SeverityHigh},
		{domain.AnomalyLowDisk, 90, domain.SeverityHigh},
		{domain.AnomalyLowDisk, 89, domain.SeverityLow},
		{domain.AnomalyBulkDelete, 21, domain.SeverityHigh},
		{domain.AnomalyBulkDelete, 20, domain.SeverityLow},
		{domain.AnomalyLargeImport, 51, domain.SeverityMedium},
		{domain.AnomalyLargeImport, 50, domain.SeverityLow},
		{domain.AnomalyLoginBurst, 6, domain.SeverityMedium},
		{domain.AnomalyLoginBurst, 5, domain.SeverityLow},
		{domain.AnomalyType("UNKNOWN"), 1000, domain.SeverityLow},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%d", tc.anomalyType, tc.quantity), func(t *testing.T) {
			assert.Equal(t, tc.severity, classifyAnomaly(tc.anomalyType, tc.quantity))
		})
	}
}

func TestRecordAnomalyFeedBounded(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	registry, recorder := newRegistryFixture(clock, config.AlertConfig{Capacity: 50, AnomalyFeedSize: 3})

	for i := 0; i < 5; i++ {
		registry.RecordAnomaly(context.Background(), domain.AnomalyLoginBurst, i)
		clock.Advance(time.Minute)
	}

	anomalies := registry.ListAnomalies()
	require.Len(t, anomalies, 3)
	// newest first
	assert.Equal(t, 4, anomalies[0].Quantity)
	assert.Equal(t, 2, anomalies[2].Quantity)
	assert.Len(t, recorder.ofType(events.EventAnomalyDetected), 5)
}

func TestRaiseSystemAlertDedup(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	registry, recorder := newRegistryFixture(clock, config.AlertConfig{})

	registry.RaiseSystemAlert(context.Background(), domain.SeverityHigh, "disk almost full", "volume /data at 93%", "node-1")
	registry.RaiseSystemAlert(context.Background(), domain.SeverityHigh, "disk almost full", "volume /data at 94%", "node-1")
	registry.RaiseSystemAlert(context.Background(), domain.SeverityHigh, "disk almost full", "volume /data at 91%", "node-2")

	alerts := registry.ListAlerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, 2, registry.PendingCount())
	assert.Len(t, recorder.ofType(events.EventAlertRaised), 2)
}

func TestRaiseSystemAlertCapacityEviction(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	registry, _ := newRegistryFixture(clock, config.AlertConfig{Capacity: 2})

	registry.RaiseSystemAlert(context.Background(), domain.SeverityLow, "first", "", "a")
	registry.RaiseSystemAlert(context.Background(), domain.SeverityLow, "second", "", "b")
	registry.RaiseSystemAlert(context.Background(), domain.SeverityLow, "third", "", "c")

	alerts := registry.ListAlerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, "third", alerts[0].Summary)
	assert.Equal(t, "second", alerts[1].Summary)
}

func TestAcknowledgeIdempotent(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	registry, _ := newRegistryFixture(clock, config.AlertConfig{})

	registry.RaiseSystemAlert(context.Background(), domain.SeverityMedium, "queue backlog", "", "worker-3")
	alertID := registry.ListAlerts()[0].ID

	require.NoError(t, registry.Acknowledge(context.Background(), alertID))
	require.NoError(t, registry.Acknowledge(context.Background(), alertID))

	assert.Equal(t, 0, registry.PendingCount())
	assert.True(t, registry.ListAlerts()[0].Acknowledged)
}

func TestAcknowledgeUnknownAlert(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	registry, _ := newRegistryFixture(clock, config.AlertConfig{})

	err := registry.Acknowledge(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDismissRemovesAlert(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	registry, _ := newRegistryFixture(clock, config.AlertConfig{})

	registry.RaiseSystemAlert(context.Background(), domain.SeverityMedium, "queue backlog", "", "worker-3")
	alertID := registry.ListAlerts()[0].ID

	require.NoError(t, registry.Dismiss(context.Background(), alertID))
	assert.Empty(t, registry.ListAlerts())

	err := registry.Dismiss(context.Background(), alertID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

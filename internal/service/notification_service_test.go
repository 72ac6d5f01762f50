package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/events"
)

func newNotificationFixture(clock Clock, feedSize int) (*NotificationService, events.Dispatcher) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Clock:      clock,
	}, config.NotificationConfig{FeedSize: feedSize})
	svc.RegisterHandlers()
	return svc, dispatcher
}

func TestNotificationOnTicketAssigned(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, dispatcher := newNotificationFixture(clock, 10)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: "CMP-20260314-001",
		Payload:  events.TicketAssignedPayload{Assignee: "ravi"},
	}))

	feed := svc.ListNotifications(0)
	require.Len(t, feed, 1)
	assert.Equal(t, "Ticket Assigned", feed[0].Title)
	assert.Equal(t, "Ticket CMP-20260314-001 assigned to ravi", feed[0].Message)
	assert.Equal(t, int64(1), feed[0].Seq)
}

func TestNotificationOnFollowUpOnly(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, dispatcher := newNotificationFixture(clock, 10)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventResolutionRecorded,
		TicketID: "CMP-20260314-001",
		Payload:  events.ResolutionRecordedPayload{FollowUp: false},
	}))
	assert.Empty(t, svc.ListNotifications(0))

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventResolutionRecorded,
		TicketID: "CMP-20260314-001",
		Payload:  events.ResolutionRecordedPayload{FollowUp: true},
	}))
	feed := svc.ListNotifications(0)
	require.Len(t, feed, 1)
	assert.Equal(t, "Feedback Sent", feed[0].Title)
}

func TestNotificationOnSLAEvents(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, dispatcher := newNotificationFixture(clock, 10)

	due := clock.Now().Add(2 * time.Hour)
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventSLAWarning,
		TicketID: "CMP-20260314-001",
		Payload:  events.SLAEventPayload{DueDate: due, RemainingHours: 2},
	}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventSLABreach,
		TicketID: "CMP-20260314-002",
		Payload:  events.SLAEventPayload{DueDate: due, RemainingHours: -3},
	}))

	feed := svc.ListNotifications(0)
	require.Len(t, feed, 2)
	// newest first
	assert.Equal(t, "SLA Breach", feed[0].Title)
	assert.Equal(t, "Ticket CMP-20260314-002 is overdue by 3.0 hours", feed[0].Message)
	assert.Equal(t, "SLA Approaching", feed[1].Title)
	assert.Equal(t, "Ticket CMP-20260314-001 SLA due in 2.0 hours", feed[1].Message)
}

func TestNotificationFeedBoundedAndLimited(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, dispatcher := newNotificationFixture(clock, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: "CMP-20260314-001",
			Payload:  events.TicketAssignedPayload{Assignee: "ravi"},
		}))
	}

	feed := svc.ListNotifications(0)
	require.Len(t, feed, 3)
	assert.Equal(t, int64(5), feed[0].Seq)
	assert.Equal(t, int64(3), feed[2].Seq)

	limited := svc.ListNotifications(2)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(5), limited[0].Seq)
}

func TestNotificationIgnoresMismatchedPayload(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, dispatcher := newNotificationFixture(clock, 10)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: "CMP-20260314-001",
		Payload:  "not a struct",
	}))
	assert.Empty(t, svc.ListNotifications(0))
}

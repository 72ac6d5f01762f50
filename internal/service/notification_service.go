package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
)

// NotificationService turns domain events into entries on the append-only
// operator feed. The feed keeps the most recent N notifications in memory
// and can mirror each entry to a capped Redis list for external readers.
type NotificationService struct {
	mu      sync.Mutex
	feed    []domain.Notification
	nextSeq int64
	size    int

	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      Clock
	redis      *redis.Client
	mirrorKey  string
}

// NotificationDependencies bundles collaborators for the feed.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      Clock
	Redis      *redis.Client
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, cfg config.NotificationConfig) *NotificationService {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	size := cfg.FeedSize
	if size <= 0 {
		size = 200
	}
	return &NotificationService{
		size:       size,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		redis:      deps.Redis,
		mirrorKey:  cfg.RedisMirrorKey,
	}
}

// RegisterHandlers subscribes to the events that produce notifications.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventResolutionRecorded, n.handleResolutionRecorded)
	n.dispatcher.Subscribe(events.EventSLAWarning, n.handleSLAWarning)
	n.dispatcher.Subscribe(events.EventSLABreach, n.handleSLABreach)
}

// ListNotifications returns the most recent notifications, newest first,
// truncated to limit.
func (n *NotificationService) ListNotifications(limit int) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	result := make([]domain.Notification, 0, len(n.feed))
	for i := len(n.feed) - 1; i >= 0; i-- {
		result = append(result, n.feed[i])
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	n.push(ctx, "Ticket Assigned",
		fmt.Sprintf("Ticket %s assigned to %s", event.TicketID, payload.Assignee),
		event.TicketID)
	return nil
}

func (n *NotificationService) handleResolutionRecorded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ResolutionRecordedPayload)
	if !ok || !payload.FollowUp {
		return nil
	}
	n.push(ctx, "Feedback Sent",
		fmt.Sprintf("Follow-up feedback request sent for ticket %s", event.TicketID),
		event.TicketID)
	return nil
}

func (n *NotificationService) handleSLAWarning(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAEventPayload)
	if !ok {
		return nil
	}
	n.push(ctx, "SLA Approaching",
		fmt.Sprintf("Ticket %s SLA due in %.1f hours", event.TicketID, payload.RemainingHours),
		event.TicketID)
	return nil
}

func (n *NotificationService) handleSLABreach(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLAEventPayload)
	if !ok {
		return nil
	}
	n.push(ctx, "SLA Breach",
		fmt.Sprintf("Ticket %s is overdue by %.1f hours", event.TicketID, -payload.RemainingHours),
		event.TicketID)
	return nil
}

func (n *NotificationService) push(ctx context.Context, title, message, ticketID string) {
	n.mu.Lock()
	n.nextSeq++
	notification := domain.Notification{
		Seq:       n.nextSeq,
		Title:     title,
		Message:   message,
		TicketID:  ticketID,
		Timestamp: n.clock.Now(),
	}
	n.feed = append(n.feed, notification)
	if len(n.feed) > n.size {
		n.feed = n.feed[len(n.feed)-n.size:]
	}
	n.mu.Unlock()

	if n.metrics != nil {
		n.metrics.NotificationsEmitted.Inc()
	}
	n.mirror(ctx, notification)
	n.logger.Info("notification emitted",
		zap.String("title", title),
		zap.String("ticket_id", ticketID))
}

// mirror is fire-and-forget; a failed mirror never affects the feed.
func (n *NotificationService) mirror(ctx context.Context, notification domain.Notification) {
	if n.redis == nil || n.mirrorKey == "" {
		return
	}
	encoded, err := json.Marshal(notification)
	if err != nil {
		return
	}
	pipe := n.redis.Pipeline()
	pipe.LPush(ctx, n.mirrorKey, encoded)
	pipe.LTrim(ctx, n.mirrorKey, 0, int64(n.size)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.Warn("notification mirror failed", zap.Error(err))
	}
}

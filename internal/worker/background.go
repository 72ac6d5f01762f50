package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/service"
)

// Background owns the long-running components that outlive individual
// requests: the notification event subscriptions and the SLA watcher.
type Background struct {
	watcher *service.SLAWatcher
	logger  *zap.Logger
}

// Start subscribes the notification service to the event stream and
// launches the SLA watcher. Either component may be nil.
func Start(notifications *service.NotificationService, watcher *service.SLAWatcher, logger *zap.Logger) *Background {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if watcher != nil {
		watcher.Start()
	}
	logger.Info("background workers started",
		zap.Bool("notifications", notifications != nil),
		zap.Bool("sla_watcher", watcher != nil))
	return &Background{watcher: watcher, logger: logger}
}

// Stop halts the SLA watcher and waits for any in-flight tick to finish.
func (b *Background) Stop() {
	if b.watcher != nil {
		b.watcher.Stop()
	}
	b.logger.Info("background workers stopped")
}

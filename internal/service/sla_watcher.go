package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/repository"
)

// SLAWatcher periodically scans unresolved tickets with a due date and
// flags warning-window entries and breaches exactly once per due-date
// assignment.
type SLAWatcher struct {
	tickets          repository.TicketRepository
	locks            *TicketLocks
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	metrics          *observability.Metrics
	clock            Clock
	warningThreshold time.Duration
	interval         time.Duration
	cron             *cron.Cron
}

// SLAWatcherDependencies bundles collaborators for the watcher.
type SLAWatcherDependencies struct {
	TicketRepo repository.TicketRepository
	Locks      *TicketLocks
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      Clock
}

// NewSLAWatcher constructs the watcher.
func NewSLAWatcher(deps SLAWatcherDependencies, cfg config.SLAConfig) *SLAWatcher {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SLAWatcher{
		tickets:          deps.TicketRepo,
		locks:            deps.Locks,
		dispatcher:       deps.Dispatcher,
		logger:           deps.Logger,
		metrics:          deps.Metrics,
		clock:            deps.Clock,
		warningThreshold: cfg.WarningThreshold(),
		interval:         cfg.EvaluateInterval(),
	}
}

// Start schedules the recurring evaluation.
func (w *SLAWatcher) Start() {
	if w.cron != nil {
		return
	}
	w.cron = cron.New()
	w.cron.Schedule(cron.Every(w.interval), cron.FuncJob(func() {
		w.EvaluateTick(context.Background(), w.clock.Now())
	}))
	w.cron.Start()
	w.logger.Info("sla watcher started",
		zap.Duration("interval", w.interval),
		zap.Duration("warning_threshold", w.warningThreshold))
}

// Stop cancels the schedule and waits for an in-flight tick to finish.
func (w *SLAWatcher) Stop() {
	if w.cron == nil {
		return
	}
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.cron = nil
	w.logger.Info("sla watcher stopped")
}

// EvaluateTick runs one evaluation pass. A failure on one ticket never
// aborts evaluation of the rest.
func (w *SLAWatcher) EvaluateTick(ctx context.Context, now time.Time) {
	tickets, err := w.tickets.ListOpenWithSLA(ctx)
	if err != nil {
		w.logger.Error("sla scan failed", zap.Error(err))
		return
	}
	for _, ticket := range tickets {
		if err := w.evaluateTicket(ctx, ticket.ID, now); err != nil {
			w.logger.Error("sla evaluation failed for ticket",
				zap.String("ticket_id", ticket.ID),
				zap.Error(err))
		}
	}
}

func (w *SLAWatcher) evaluateTicket(ctx context.Context, ticketID string, now time.Time) error {
	unlock := w.locks.Lock(ticketID)
	defer unlock()

	ticket, err := w.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	// re-check under the lock; triage may have resolved the ticket or
	// cleared the due date since the scan
	if ticket.SLADueDate == nil || ticket.Status == domain.TicketStatusResolved {
		return nil
	}

	remaining := ticket.SLADueDate.Sub(now)
	changed := false

	if remaining > 0 && remaining <= w.warningThreshold && !ticket.Flags.WarningSent {
		ticket.Flags.WarningSent = true
		changed = true
		ticket.AppendTimeline(domain.TimelineEntry{
			Timestamp:  now,
			Actor:      "sla-watcher",
			Message:    fmt.Sprintf("SLA approaching: due in %.1f hours", remaining.Hours()),
			Type:       domain.TimelineTypeSLA,
			Visibility: domain.VisibilityInternal,
		})
		if w.metrics != nil {
			w.metrics.SLAWarnings.Inc()
		}
		w.publish(ctx, events.Event{
			Type:     events.EventSLAWarning,
			TicketID: ticket.ID,
			Actor:    "sla-watcher",
			Payload: events.SLAEventPayload{
				DueDate:        *ticket.SLADueDate,
				RemainingHours: remaining.Hours(),
			},
		})
		w.logger.Warn("sla approaching",
			zap.String("ticket_id", ticket.ID),
			zap.Float64("remaining_hours", remaining.Hours()))
	}

	if remaining <= 0 && !ticket.Flags.BreachLogged {
		ticket.Flags.BreachLogged = true
		changed = true
		ticket.AppendTimeline(domain.TimelineEntry{
			Timestamp:  now,
			Actor:      "sla-watcher",
			Message:    fmt.Sprintf("SLA breached: overdue by %.1f hours", -remaining.Hours()),
			Type:       domain.TimelineTypeSLA,
			Visibility: domain.VisibilityInternal,
		})
		if w.metrics != nil {
			w.metrics.SLABreaches.Inc()
		}
		w.publish(ctx, events.Event{
			Type:     events.EventSLABreach,
			TicketID: ticket.ID,
			Actor:    "sla-watcher",
			Payload: events.SLAEventPayload{
				DueDate:        *ticket.SLADueDate,
				RemainingHours: remaining.Hours(),
			},
		})
		w.logger.Warn("sla breached",
			zap.String("ticket_id", ticket.ID),
			zap.Float64("overdue_hours", -remaining.Hours()))
	}

	if !changed {
		return nil
	}
	return w.tickets.Update(ctx, ticket)
}

func (w *SLAWatcher) publish(ctx context.Context, event events.Event) {
	if w.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = w.clock.Now()
	_ = w.dispatcher.Publish(ctx, event)
}

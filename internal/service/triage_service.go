package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// TriageUpdate is a partial record of triage fields. Nil fields are left
// untouched.
type TriageUpdate struct {
	Priority   *domain.TicketPriority
	Status     *domain.TicketStatus
	Category   *string
	Assignee   *string
	SLADueDate *string
}

// ResolutionInput carries resolution and satisfaction fields.
type ResolutionInput struct {
	Notes    string
	FollowUp bool
	Rating   int
	Feedback string
}

// TriageService applies triage updates and drives the status state
// machine.
type TriageService struct {
	tickets    repository.TicketRepository
	locks      *TicketLocks
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      Clock
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	TicketRepo repository.TicketRepository
	Locks      *TicketLocks
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &TriageService{
		tickets:    deps.TicketRepo,
		locks:      deps.Locks,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		clock:      deps.Clock,
	}
}

// ApplyTriage mutates the changed fields, appends one composite timeline
// entry ("Triage updated: Priority -> HIGH, ...") and logs a single event
// with the count of fields changed. Assigning a non-empty assignee emits a
// Ticket Assigned notification; setting the SLA due date resets both
// watcher flags.
func (s *TriageService) ApplyTriage(ctx context.Context, ticketID string, update TriageUpdate, actor string) (*domain.Ticket, error) {
	var due *string
	if update.SLADueDate != nil {
		raw := strings.TrimSpace(*update.SLADueDate)
		if raw != "" {
			if _, err := parseSLADue(raw); err != nil {
				return nil, err
			}
		}
		due = &raw
	}

	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.clock.Now()
	clauses := []string{}
	assignedTo := ""

	if update.Priority != nil && *update.Priority != ticket.Priority {
		ticket.Priority = *update.Priority
		clauses = append(clauses, fmt.Sprintf("Priority -> %s", ticket.Priority))
	}
	if update.Status != nil && *update.Status != ticket.Status {
		s.transitionStatus(ticket, *update.Status, now)
		clauses = append(clauses, fmt.Sprintf("Status -> %s", ticket.Status))
	}
	if update.Category != nil && *update.Category != ticket.Category {
		ticket.Category = *update.Category
		clauses = append(clauses, fmt.Sprintf("Category -> %s", ticket.Category))
	}
	if update.Assignee != nil {
		current := ""
		if ticket.AssignedTo != nil {
			current = *ticket.AssignedTo
		}
		if *update.Assignee != current {
			if *update.Assignee == "" {
				ticket.AssignedTo = nil
				clauses = append(clauses, "Assignee cleared")
			} else {
				assignee := *update.Assignee
				ticket.AssignedTo = &assignee
				assignedTo = assignee
				clauses = append(clauses, fmt.Sprintf("Assignee -> %s", assignee))
			}
		}
	}
	if due != nil {
		if *due == "" {
			if ticket.SLADueDate != nil {
				ticket.SetSLADueDate(nil)
				clauses = append(clauses, "SLA due date cleared")
			}
		} else {
			parsed, _ := parseSLADue(*due)
			if ticket.SLADueDate == nil || !ticket.SLADueDate.Equal(parsed) {
				ticket.SetSLADueDate(&parsed)
				clauses = append(clauses, fmt.Sprintf("SLA due -> %s", parsed.Format("2006-01-02 15:04")))
			}
		}
	}

	if len(clauses) == 0 {
		return ticket, nil
	}

	ticket.AppendTimeline(domain.TimelineEntry{
		Timestamp:  now,
		Actor:      actor,
		Message:    "Triage updated: " + strings.Join(clauses, ", "),
		Type:       domain.TimelineTypeTriage,
		Visibility: domain.VisibilityInternal,
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTriageApplied,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TriageAppliedPayload{
			FieldsChanged: len(clauses),
			Summary:       strings.Join(clauses, ", "),
		},
	})
	if assignedTo != "" {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload:  events.TicketAssignedPayload{Assignee: assignedTo},
		})
	}
	s.logger.Info("triage applied",
		zap.String("ticket_id", ticket.ID),
		zap.Int("fields_changed", len(clauses)),
		zap.String("actor", actor))
	return ticket, nil
}

// UpdateTicketStatus sets the status directly. Equal status is a no-op;
// otherwise a timeline entry, a status-changed event, and a log record are
// emitted.
func (s *TriageService) UpdateTicketStatus(ctx context.Context, ticketID string, next domain.TicketStatus, actor string) (*domain.Ticket, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == next {
		return ticket, nil
	}

	now := s.clock.Now()
	old := ticket.Status
	s.transitionStatus(ticket, next, now)
	ticket.AppendTimeline(domain.TimelineEntry{
		Timestamp:  now,
		Actor:      actor,
		Message:    fmt.Sprintf("Status changed from %s to %s", old, next),
		Type:       domain.TimelineTypeStatus,
		Visibility: domain.VisibilityPublic,
	})

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChange,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.TicketStatusChangedPayload{OldStatus: old, NewStatus: next},
	})
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_status", string(old)),
		zap.String("new_status", string(next)),
		zap.String("actor", actor))
	return ticket, nil
}

// RecordResolution sets resolution and satisfaction fields and forces the
// status to Resolved. A requested follow-up appends an automation timeline
// entry and emits a Feedback Sent notification.
func (s *TriageService) RecordResolution(ctx context.Context, ticketID string, input ResolutionInput, actor string) (*domain.Ticket, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.clock.Now()
	old := ticket.Status
	ticket.Resolution.Notes = input.Notes
	ticket.Satisfaction = domain.Satisfaction{
		FollowUp: input.FollowUp,
		Rating:   input.Rating,
		Feedback: input.Feedback,
	}
	if old != domain.TicketStatusResolved {
		s.transitionStatus(ticket, domain.TicketStatusResolved, now)
		ticket.AppendTimeline(domain.TimelineEntry{
			Timestamp:  now,
			Actor:      actor,
			Message:    fmt.Sprintf("Status changed from %s to %s", old, domain.TicketStatusResolved),
			Type:       domain.TimelineTypeStatus,
			Visibility: domain.VisibilityPublic,
		})
	} else if ticket.Resolution.ResolvedAt == nil {
		ticket.Resolution.ResolvedAt = &now
	}
	if input.FollowUp {
		ticket.AppendTimeline(domain.TimelineEntry{
			Timestamp:  now,
			Actor:      "automation",
			Message:    "Follow-up feedback request scheduled",
			Type:       domain.TimelineTypeAutomation,
			Visibility: domain.VisibilityInternal,
		})
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if old != domain.TicketStatusResolved {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChange,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload:  events.TicketStatusChangedPayload{OldStatus: old, NewStatus: domain.TicketStatusResolved},
		})
	}
	s.publish(ctx, events.Event{
		Type:     events.EventResolutionRecorded,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload:  events.ResolutionRecordedPayload{FollowUp: input.FollowUp, Rating: input.Rating},
	})
	s.logger.Info("resolution recorded",
		zap.String("ticket_id", ticket.ID),
		zap.Bool("follow_up", input.FollowUp),
		zap.String("actor", actor))
	return ticket, nil
}

// transitionStatus mutates the status. Resolving always stamps
// resolution.resolvedAt and suppresses further SLA reminders.
func (s *TriageService) transitionStatus(ticket *domain.Ticket, next domain.TicketStatus, now time.Time) {
	ticket.Status = next
	if next == domain.TicketStatusResolved {
		stamped := now
		ticket.Resolution.ResolvedAt = &stamped
		ticket.Flags.WarningSent = true
	}
}

// parseSLADue parses a candidate SLA due date. RFC 3339 is the canonical
// wire format.
func parseSLADue(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("SLA due date must be a valid RFC 3339 timestamp", nil)
	}
	return parsed, nil
}

func (s *TriageService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// ApprovalAction enumerates resolution actions.
type ApprovalAction string

const (
	ApprovalActionApprove ApprovalAction = "approve"
	ApprovalActionReject  ApprovalAction = "reject"
)

// ApprovalService records proposed ticket field changes and applies them
// on approval. The previous value is captured at proposal time: approving
// a stale proposal still applies against the value seen when it was
// proposed, a known tradeoff carried over from the source workflow.
type ApprovalService struct {
	approvals  repository.ApprovalRepository
	tickets    repository.TicketRepository
	locks      *TicketLocks
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      Clock
}

// ApprovalDependencies bundles collaborators for the approval service.
type ApprovalDependencies struct {
	ApprovalRepo repository.ApprovalRepository
	TicketRepo   repository.TicketRepository
	Locks        *TicketLocks
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Clock        Clock
}

// NewApprovalService constructs the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &ApprovalService{
		approvals:  deps.ApprovalRepo,
		tickets:    deps.TicketRepo,
		locks:      deps.Locks,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}
}

// ProposeChange records a pending field change for the ticket.
func (s *ApprovalService) ProposeChange(ctx context.Context, ticketID, rawField, newValue, proposedBy string) (*domain.Approval, error) {
	field, err := domain.ParseApprovalField(rawField)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := validateApprovalValue(field, newValue); err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	approval := &domain.Approval{
		ID:            uuid.NewString(),
		TicketID:      ticket.ID,
		Field:         field,
		PreviousValue: currentFieldValue(ticket, field),
		NewValue:      newValue,
		ProposedBy:    proposedBy,
		Status:        domain.ApprovalStatusPending,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.approvals.Create(ctx, approval); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventApprovalProposed,
		TicketID: ticket.ID,
		Actor:    proposedBy,
		Payload: events.ApprovalPayload{
			ApprovalID: approval.ID,
			Field:      approval.Field,
			Status:     approval.Status,
		},
	})
	s.logger.Info("change proposed",
		zap.String("approval_id", approval.ID),
		zap.String("ticket_id", ticket.ID),
		zap.String("field", string(field)),
		zap.String("proposed_by", proposedBy))
	return approval, nil
}

// ResolveApproval approves or rejects a pending approval. Resolving an
// approval that already left Pending is a benign no-op.
func (s *ApprovalService) ResolveApproval(ctx context.Context, approvalID string, action ApprovalAction, actor string) error {
	if action != ApprovalActionApprove && action != ApprovalActionReject {
		return apperrors.NewValidationError(fmt.Sprintf("unknown approval action %q", action), nil)
	}

	approval, err := s.approvals.GetByID(ctx, approvalID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if approval.Status != domain.ApprovalStatusPending {
		s.logger.Debug("approval already resolved",
			zap.String("approval_id", approval.ID),
			zap.String("status", string(approval.Status)))
		return nil
	}

	now := s.clock.Now()
	if action == ApprovalActionReject {
		approval.Status = domain.ApprovalStatusRejected
		approval.ResolvedAt = &now
		if err := s.approvals.Update(ctx, approval); err != nil {
			return apperrors.MapError(err)
		}
		s.finishResolution(ctx, approval, actor)
		return nil
	}

	unlock := s.locks.Lock(approval.TicketID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, approval.TicketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := applyApprovedChange(ticket, approval.Field, approval.NewValue); err != nil {
		return err
	}
	ticket.AppendTimeline(domain.TimelineEntry{
		Timestamp:  now,
		Actor:      actor,
		Message:    fmt.Sprintf("%s updated after approval", approval.Field),
		Type:       domain.TimelineTypeApproval,
		Visibility: domain.VisibilityInternal,
	})
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return apperrors.MapError(err)
	}

	approval.Status = domain.ApprovalStatusApproved
	approval.ResolvedAt = &now
	if err := s.approvals.Update(ctx, approval); err != nil {
		return apperrors.MapError(err)
	}
	s.finishResolution(ctx, approval, actor)
	return nil
}

// ListApprovals returns all approvals, newest first.
func (s *ApprovalService) ListApprovals(ctx context.Context) ([]domain.Approval, error) {
	approvals, err := s.approvals.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return approvals, nil
}

func (s *ApprovalService) finishResolution(ctx context.Context, approval *domain.Approval, actor string) {
	if s.metrics != nil {
		s.metrics.ApprovalsResolved.WithLabelValues(string(approval.Status)).Inc()
	}
	s.publish(ctx, events.Event{
		Type:     events.EventApprovalResolved,
		TicketID: approval.TicketID,
		Actor:    actor,
		Payload: events.ApprovalPayload{
			ApprovalID: approval.ID,
			Field:      approval.Field,
			Status:     approval.Status,
		},
	})
	s.logger.Info("approval resolved",
		zap.String("approval_id", approval.ID),
		zap.String("ticket_id", approval.TicketID),
		zap.String("status", string(approval.Status)),
		zap.String("actor", actor))
}

func validateApprovalValue(field domain.ApprovalField, value string) error {
	switch field {
	case domain.ApprovalFieldSLADue:
		if _, err := parseSLADue(value); err != nil {
			return err
		}
	case domain.ApprovalFieldPriority:
		if _, err := domain.ParseTicketPriority(value); err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
	case domain.ApprovalFieldRequiresSiteVisit:
		if _, err := strconv.ParseBool(value); err != nil {
			return apperrors.NewValidationError("requiresSiteVisit must be a boolean value", nil)
		}
	}
	return nil
}

func currentFieldValue(ticket *domain.Ticket, field domain.ApprovalField) string {
	switch field {
	case domain.ApprovalFieldCategory:
		return ticket.Category
	case domain.ApprovalFieldPriority:
		return string(ticket.Priority)
	case domain.ApprovalFieldSLADue:
		if ticket.SLADueDate == nil {
			return ""
		}
		return ticket.SLADueDate.Format(time.RFC3339)
	case domain.ApprovalFieldContactMethod:
		return ticket.ContactMethod
	case domain.ApprovalFieldRequiresSiteVisit:
		return strconv.FormatBool(ticket.RequiresSiteVisit)
	}
	return ""
}

// applyApprovedChange mutates the ticket field per the field-specific
// apply rule. Values were validated at proposal time.
func applyApprovedChange(ticket *domain.Ticket, field domain.ApprovalField, value string) error {
	switch field {
	case domain.ApprovalFieldCategory:
		ticket.Category = value
	case domain.ApprovalFieldPriority:
		priority, err := domain.ParseTicketPriority(value)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		ticket.Priority = priority
	case domain.ApprovalFieldSLADue:
		due, err := parseSLADue(value)
		if err != nil {
			return err
		}
		ticket.SetSLADueDate(&due)
	case domain.ApprovalFieldContactMethod:
		ticket.ContactMethod = value
	case domain.ApprovalFieldRequiresSiteVisit:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return apperrors.NewValidationError("requiresSiteVisit must be a boolean value", nil)
		}
		ticket.RequiresSiteVisit = parsed
	}
	return nil
}

func (s *ApprovalService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.clock.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

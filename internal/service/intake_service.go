package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// IntakeInput describes a raw complaint intake payload.
type IntakeInput struct {
	CustomerName      string `validate:"required"`
	Email             string `validate:"required,email"`
	Phone             string `validate:"required"`
	Pincode           string `validate:"omitempty,len=6"`
	ContactMethod     string
	Category          string
	SubsidyStage      string
	RequiresSiteVisit bool
	Description       string `validate:"required"`
	Attachments       []domain.Attachment
}

// DuplicatePrompt is returned when an intake matches an existing customer.
// No ticket has been created; the caller resolves it with MergeIntoExisting
// or CreateSeparate.
type DuplicatePrompt struct {
	Existing *domain.Ticket
	Pending  IntakeInput
	Source   domain.TicketSource
}

// IntakeService validates intakes, detects duplicate customers, and
// creates tickets.
type IntakeService struct {
	tickets    repository.TicketRepository
	locks      *TicketLocks
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      Clock
	validate   *validator.Validate
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	TicketRepo repository.TicketRepository
	Locks      *TicketLocks
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      Clock
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &IntakeService{
		tickets:    deps.TicketRepo,
		locks:      deps.Locks,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		validate:   validator.New(),
	}
}

// SubmitIntake validates the payload and either creates a ticket or
// returns a DuplicatePrompt referencing the first match. Exactly one of
// the two results is non-nil on success.
func (s *IntakeService) SubmitIntake(ctx context.Context, input IntakeInput, source domain.TicketSource, actor string) (*domain.Ticket, *DuplicatePrompt, error) {
	normalized, err := s.normalizeIntake(input)
	if err != nil {
		return nil, nil, err
	}

	matches, err := s.tickets.FindByContact(ctx, normalized.Phone, normalized.Email)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if len(matches) > 0 {
		existing := matches[0]
		s.logger.Info("duplicate intake detected",
			zap.String("existing_ticket_id", existing.ID),
			zap.String("phone", normalized.Phone))
		return nil, &DuplicatePrompt{Existing: &existing, Pending: normalized, Source: source}, nil
	}

	ticket, err := s.createTicket(ctx, normalized, source, actor)
	if err != nil {
		return nil, nil, err
	}
	return ticket, nil, nil
}

// MergeIntoExisting folds a pending duplicate intake into an existing
// ticket: a merge timeline entry, the intake's attachments, and a reset of
// both SLA flags.
func (s *IntakeService) MergeIntoExisting(ctx context.Context, existingID string, pending IntakeInput, actor string) (*domain.Ticket, error) {
	normalized, err := s.normalizeIntake(pending)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(existingID)
	defer unlock()

	ticket, err := s.tickets.GetByID(ctx, existingID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.clock.Now()
	ticket.AppendTimeline(domain.TimelineEntry{
		Timestamp:  now,
		Actor:      actor,
		Message:    fmt.Sprintf("Merged duplicate intake from %s: %s", normalized.CustomerName, normalized.Description),
		Type:       domain.TimelineTypeMerge,
		Visibility: domain.VisibilityInternal,
	})
	ticket.Attachments = append(ticket.Attachments, normalized.Attachments...)
	ticket.Flags = domain.SLAFlags{}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.metrics != nil {
		s.metrics.TicketsMerged.Inc()
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketMerged,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketMergedPayload{
			MergedFromName: normalized.CustomerName,
			Attachments:    len(normalized.Attachments),
		},
	})
	s.logger.Info("intake merged into existing ticket",
		zap.String("ticket_id", ticket.ID),
		zap.String("actor", actor))
	return ticket, nil
}

// CreateSeparate bypasses dedup and always creates a new ticket from the
// pending intake.
func (s *IntakeService) CreateSeparate(ctx context.Context, pending IntakeInput, source domain.TicketSource, actor string) (*domain.Ticket, error) {
	normalized, err := s.normalizeIntake(pending)
	if err != nil {
		return nil, err
	}
	return s.createTicket(ctx, normalized, source, actor)
}

func (s *IntakeService) createTicket(ctx context.Context, input IntakeInput, source domain.TicketSource, actor string) (*domain.Ticket, error) {
	now := s.clock.Now()
	ticket := &domain.Ticket{
		Customer: domain.Customer{
			Name:    input.CustomerName,
			Email:   input.Email,
			Phone:   input.Phone,
			Pincode: input.Pincode,
		},
		ContactMethod:     input.ContactMethod,
		Category:          input.Category,
		SubsidyStage:      input.SubsidyStage,
		RequiresSiteVisit: input.RequiresSiteVisit,
		Description:       input.Description,
		Attachments:       append([]domain.Attachment(nil), input.Attachments...),
		Priority:          domain.TicketPriorityMedium,
		Status:            domain.TicketStatusNew,
		CreatedAt:         now,
		Source:            source,
	}
	ticket.AppendTimeline(domain.TimelineEntry{
		Timestamp:  now,
		Actor:      actor,
		Message:    "Ticket created",
		Type:       domain.TimelineTypeCreate,
		Visibility: domain.VisibilityPublic,
	})

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.metrics != nil {
		s.metrics.TicketsCreated.Inc()
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketCreatedPayload{
			Category: ticket.Category,
			Priority: ticket.Priority,
			Source:   ticket.Source,
			Phone:    ticket.Customer.Phone,
		},
	})
	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("source", string(source)),
		zap.String("actor", actor))
	return ticket, nil
}

// normalizeIntake validates the payload and returns a copy with the phone
// reduced to digits.
func (s *IntakeService) normalizeIntake(input IntakeInput) (IntakeInput, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.Email = strings.TrimSpace(input.Email)
	input.Description = strings.TrimSpace(input.Description)
	input.Phone = digitsOnly(input.Phone)
	input.Pincode = strings.TrimSpace(input.Pincode)

	if err := s.validate.Struct(input); err != nil {
		return IntakeInput{}, apperrors.NewValidationError(intakeValidationMessage(err), nil)
	}
	if len(input.Phone) < 10 {
		return IntakeInput{}, apperrors.NewValidationError("phone number must contain at least 10 digits", nil)
	}
	return input, nil
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, ch := range raw {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func intakeValidationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid intake payload"
	}
	first := fieldErrs[0]
	switch first.Field() {
	case "CustomerName":
		return "customer name is required"
	case "Email":
		return "a valid email address is required"
	case "Phone":
		return "phone number is required"
	case "Pincode":
		return "pincode must be exactly 6 characters"
	case "Description":
		return "description is required"
	}
	return "invalid intake payload"
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
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

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

func newIntakeFixture(clock Clock) (*IntakeService, repository.TicketRepository, *eventRecorder) {
	repo := repository.NewMemoryTicketRepository()
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	recordAll(dispatcher, recorder,
		events.EventTicketCreated, events.EventTicketMerged)

	svc := NewIntakeService(IntakeDependencies{
		TicketRepo: repo,
		Locks:      NewTicketLocks(),
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	return svc, repo, recorder
}

func TestSubmitIntakeCreatesTicket(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, _, recorder := newIntakeFixture(clock)

	ticket, prompt, err := svc.SubmitIntake(context.Background(), validIntake(), domain.TicketSourcePublic, "operator")
	require.NoError(t, err)
	require.Nil(t, prompt)
	require.NotNil(t, ticket)

	assert.Equal(t, "CMP-20260314-001", ticket.ID)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "919876543210", ticket.Customer.Phone)
	require.Len(t, ticket.Timeline, 1)
	assert.Equal(t, "Ticket created", ticket.Timeline[0].Message)
	assert.Equal(t, domain.TimelineTypeCreate, ticket.Timeline[0].Type)
	assert.Len(t, recorder.ofType(events.EventTicketCreated), 1)
}

func TestSubmitIntakeValidation(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, _, _ := newIntakeFixture(clock)

	cases := []struct {
		name    string
		mutate  func(*IntakeInput)
		message string
	}{
		{"missing name", func(in *IntakeInput) { in.CustomerName = "  " }, "customer name is required"},
		{"bad email", func(in *IntakeInput) { in.Email = "not-an-email" }, "a valid email address is required"},
		{"missing phone", func(in *IntakeInput) { in.Phone = "" }, "phone number is required"},
		{"short phone", func(in *IntakeInput) { in.Phone = "98765" }, "phone number must contain at least 10 digits"},
		{"short pincode", func(in *IntakeInput) { in.Pincode = "5600" }, "pincode must be exactly 6 characters"},
		{"missing description", func(in *IntakeInput) { in.Description = "" }, "description is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validIntake()
			tc.mutate(&input)
			_, _, err := svc.SubmitIntake(context.Background(), input, domain.TicketSourcePublic, "operator")
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestSubmitIntakeDetectsDuplicateByPhone(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, _, _ := newIntakeFixture(clock)

	first, _, err := svc.SubmitIntake(context.Background(), validIntake(), domain.TicketSourcePublic, "operator")
	require.NoError(t, err)

	second := validIntake()
	second.CustomerName = "A. Verma"
	second.Email = "different@example.com"
	second.Phone = "(+91) 98765-43210" // same digits, different formatting
	second.Description = "Still failing"

	ticket, prompt, err := svc.SubmitIntake(context.Background(), second, domain.TicketSourcePublic, "operator")
	require.NoError(t, err)
	assert.Nil(t, ticket)
	require.NotNil(t, prompt)
	assert.Equal(t, first.ID, prompt.Existing.ID)
	assert.Equal(t, "919876543210", prompt.Pending.Phone)
}

func TestSubmitIntakeDetectsDuplicateByEmailCaseInsensitive(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, _, _ := newIntakeFixture(clock)

	first, _, err := svc.SubmitIntake(context.Background(), validIntake(), domain.TicketSourcePublic, "operator")
	require.NoError(t, err)

	second := validIntake()
	second.Email = "ASHA@Example.COM"
	second.Phone = "0000000000"

	_, prompt, err := svc.SubmitIntake(context.Background(), second, domain.TicketSourcePublic, "operator")
	require.NoError(t, err)
	require.NotNil(t, prompt)
	assert.Equal(t, first.ID, prompt.Existing.ID)
}

func TestMergeIntoExisting(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, repo, recorder := newIntakeFixture(clock)

	first, _, err := svc.SubmitIntake(context.Background(), validIntake(), domain.TicketSourcePublic, "operator")
	require.NoError(t, err)

	// simulate an earlier warning so the merge visibly resets the flags
	stored, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	stored.Flags.WarningSent = true
	require.NoError(t, repo.Update(context.Background(), stored))

	pending := validIntake()
	pending.Description = "Second report, same inverter"
	pending.Attachments = []domain.Attachment{{Name: "photo.jpg", Size: 2048, Mime: "image/jpeg"}}

	clock.Advance(time.Hour)
	merged, err := svc.MergeIntoExisting(context.Background(), first.ID, pending, "operator")
	require.NoError(t, err)

	assert.Equal(t, first.ID, merged.ID)
	assert.False(t, merged.Flags.WarningSent)
	assert.False(t, merged.Flags.BreachLogged)
	require.Len(t, merged.Attachments, 1)
	last := merged.Timeline[len(merged.Timeline)-1]
	assert.Equal(t, domain.TimelineTypeMerge, last.Type)
	assert.Contains(t, last.Message, "Merged duplicate intake")
	assert.Len(t, recorder.ofType(events.EventTicketMerged), 1)
}

func TestMergeIntoExistingUnknownTicket(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, _, _ := newIntakeFixture(clock)

	_, err := svc.MergeIntoExisting(context.Background(), "CMP-20260314-999", validIntake(), "operator")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateSeparateBypassesDedup(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	svc, _, _ := newIntakeFixture(clock)

	first, _, err := svc.SubmitIntake(context.Background(), validIntake(), domain.TicketSourcePublic, "operator")
	require.NoError(t, err)

	separate, err := svc.CreateSeparate(context.Background(), validIntake(), domain.TicketSourceInternal, "operator")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, separate.ID)
	assert.Equal(t, "CMP-20260314-002", separate.ID)
	assert.Equal(t, domain.TicketSourceInternal, separate.Source)
}

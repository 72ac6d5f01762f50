package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/repository"
)

// fakeClock is a settable clock for deterministic tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// eventRecorder captures every published event for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]events.Event, 0)
	for _, event := range r.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func recordAll(dispatcher events.Dispatcher, recorder *eventRecorder, types ...events.EventType) {
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, recorder.record)
	}
}

func validIntake() IntakeInput {
	return IntakeInput{
		CustomerName: "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "+91 98765 43210",
		Pincode:      "560001",
		Category:     "inverter fault",
		Description:  "Inverter shuts down at noon",
	}
}

func seedTicket(t *testing.T, repo repository.TicketRepository, clock Clock) *domain.Ticket {
	t.Helper()
	intake := validIntake()
	ticket := &domain.Ticket{
		Customer: domain.Customer{
			Name:    intake.CustomerName,
			Email:   intake.Email,
			Phone:   "919876543210",
			Pincode: intake.Pincode,
		},
		Category:    intake.Category,
		Description: intake.Description,
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusNew,
		CreatedAt:   clock.Now(),
		Source:      domain.TicketSourcePublic,
	}
	if err := repo.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

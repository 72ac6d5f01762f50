package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

func newTicket(createdAt time.Time, phone, email string) *domain.Ticket {
	return &domain.Ticket{
		Customer: domain.Customer{
			Name:  "Asha Verma",
			Email: email,
			Phone: phone,
		},
		Description: "Inverter shuts down at noon",
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusNew,
		CreatedAt:   createdAt,
		Source:      domain.TicketSourcePublic,
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	repo := NewMemoryTicketRepository()
	createdAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	first := newTicket(createdAt, "919876543210", "asha@example.com")
	require.NoError(t, repo.Create(context.Background(), first))
	second := newTicket(createdAt.Add(time.Hour), "918800112233", "other@example.com")
	require.NoError(t, repo.Create(context.Background(), second))

	assert.Equal(t, "CMP-20260314-001", first.ID)
	assert.Equal(t, "CMP-20260314-002", second.ID)

	// counter restarts per calendar day
	third := newTicket(createdAt.AddDate(0, 0, 1), "917700112233", "third@example.com")
	require.NoError(t, repo.Create(context.Background(), third))
	assert.Equal(t, "CMP-20260315-001", third.ID)
}

func TestGetByIDReturnsCopy(t *testing.T) {
	repo := NewMemoryTicketRepository()
	createdAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	ticket := newTicket(createdAt, "919876543210", "asha@example.com")
	require.NoError(t, repo.Create(context.Background(), ticket))

	loaded, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	loaded.Status = domain.TicketStatusResolved

	reloaded, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, reloaded.Status)
}

func TestUpdateUnknownTicket(t *testing.T) {
	repo := NewMemoryTicketRepository()
	err := repo.Update(context.Background(), &domain.Ticket{ID: "CMP-20260314-404"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListFiltersAndPaginates(t *testing.T) {
	repo := NewMemoryTicketRepository()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	assignee := "ravi"
	for i := 0; i < 5; i++ {
		ticket := newTicket(base.Add(time.Duration(i)*time.Hour), "919876543210", "asha@example.com")
		if i%2 == 0 {
			ticket.Status = domain.TicketStatusInProgress
			ticket.AssignedTo = &assignee
		}
		require.NoError(t, repo.Create(context.Background(), ticket))
	}

	status := domain.TicketStatusInProgress
	filtered, err := repo.List(context.Background(), TicketFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, filtered, 3)

	byAssignee, err := repo.List(context.Background(), TicketFilter{Assignee: &assignee})
	require.NoError(t, err)
	assert.Len(t, byAssignee, 3)

	page, err := repo.List(context.Background(), TicketFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	// newest first ordering
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))
}

func TestFindByContactOrdering(t *testing.T) {
	repo := NewMemoryTicketRepository()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	newer := newTicket(base.Add(time.Hour), "919876543210", "asha@example.com")
	require.NoError(t, repo.Create(context.Background(), newer))
	older := newTicket(base, "919876543210", "asha@example.com")
	require.NoError(t, repo.Create(context.Background(), older))

	matches, err := repo.FindByContact(context.Background(), "919876543210", "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	// oldest first so dedup surfaces the original ticket
	assert.Equal(t, older.ID, matches[0].ID)
}

func TestFindByContactEmailCaseInsensitive(t *testing.T) {
	repo := NewMemoryTicketRepository()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	ticket := newTicket(base, "919876543210", "Asha@Example.com")
	require.NoError(t, repo.Create(context.Background(), ticket))

	matches, err := repo.FindByContact(context.Background(), "", "asha@example.COM")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	none, err := repo.FindByContact(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListOpenWithSLA(t *testing.T) {
	repo := NewMemoryTicketRepository()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	due := base.Add(24 * time.Hour)

	withDue := newTicket(base, "919876543210", "a@example.com")
	withDue.SLADueDate = &due
	require.NoError(t, repo.Create(context.Background(), withDue))

	noDue := newTicket(base, "918800112233", "b@example.com")
	require.NoError(t, repo.Create(context.Background(), noDue))

	resolved := newTicket(base, "917700112233", "c@example.com")
	resolved.SLADueDate = &due
	resolved.Status = domain.TicketStatusResolved
	require.NoError(t, repo.Create(context.Background(), resolved))

	open, err := repo.ListOpenWithSLA(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, withDue.ID, open[0].ID)
}

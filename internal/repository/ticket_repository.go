package repository

import (
	"context"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status   *domain.TicketStatus
	Assignee *string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence. Create assigns the
// ticket ID (CMP-YYYYMMDD-NNN, monotonic per day) from the ticket's
// CreatedAt day.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// FindByContact returns tickets whose customer phone or email matches,
	// oldest first. Used for intake dedup.
	FindByContact(ctx context.Context, phone, email string) ([]domain.Ticket, error)
	// ListOpenWithSLA returns unresolved tickets that carry a due date,
	// for the watcher scan.
	ListOpenWithSLA(ctx context.Context) ([]domain.Ticket, error)
}

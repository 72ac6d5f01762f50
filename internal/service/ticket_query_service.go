package service

import (
	"context"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// TicketQueryService exposes read accessors over the ticket store.
type TicketQueryService struct {
	tickets repository.TicketRepository
}

// NewTicketQueryService constructs the service.
func NewTicketQueryService(tickets repository.TicketRepository) *TicketQueryService {
	return &TicketQueryService{tickets: tickets}
}

// ListTickets returns tickets matching the optional status/assignee
// filter, newest first.
func (s *TicketQueryService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches one ticket by ID.
func (s *TicketQueryService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// memoryTicketRepository keeps ticket aggregates in process memory. Reads
// and writes go through a store-level RWMutex; dedup scans therefore never
// race with in-flight creation.
type memoryTicketRepository struct {
	mu        sync.RWMutex
	tickets   map[string]*domain.Ticket
	sequences map[string]int
}

// NewMemoryTicketRepository instantiates the in-memory store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets:   make(map[string]*domain.Ticket),
		sequences: make(map[string]int),
	}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := ticket.CreatedAt.Format("20060102")
	r.sequences[day]++
	ticket.ID = fmt.Sprintf("CMP-%s-%03d", day, r.sequences[day])
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[ticket.ID]; !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
	}
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return ticket.Clone(), nil
}

func (r *memoryTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Assignee != nil {
			if ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.Assignee {
				continue
			}
		}
		result = append(result, *ticket.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *memoryTicketRepository) FindByContact(ctx context.Context, phone, email string) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]domain.Ticket, 0)
	for _, ticket := range r.tickets {
		if (phone != "" && ticket.Customer.Phone == phone) ||
			(email != "" && strings.EqualFold(ticket.Customer.Email, email)) {
			matches = append(matches, *ticket.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *memoryTicketRepository) ListOpenWithSLA(ctx context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Ticket, 0)
	for _, ticket := range r.tickets {
		if ticket.SLADueDate == nil || ticket.Status == domain.TicketStatusResolved {
			continue
		}
		result = append(result, *ticket.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func paginate(tickets []domain.Ticket, limit, offset int) []domain.Ticket {
	if offset > 0 {
		if offset >= len(tickets) {
			return []domain.Ticket{}
		}
		tickets = tickets[offset:]
	}
	if limit > 0 && limit < len(tickets) {
		tickets = tickets[:limit]
	}
	return tickets
}

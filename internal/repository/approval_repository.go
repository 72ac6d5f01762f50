package repository

import (
	"context"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// ApprovalRepository encapsulates approval persistence.
type ApprovalRepository interface {
	Create(ctx context.Context, approval *domain.Approval) error
	Update(ctx context.Context, approval *domain.Approval) error
	GetByID(ctx context.Context, id string) (*domain.Approval, error)
	List(ctx context.Context) ([]domain.Approval, error)
}

package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

type memoryApprovalRepository struct {
	mu        sync.RWMutex
	approvals map[string]*domain.Approval
}

// NewMemoryApprovalRepository instantiates the in-memory store.
func NewMemoryApprovalRepository() ApprovalRepository {
	return &memoryApprovalRepository{
		approvals: make(map[string]*domain.Approval),
	}
}

func (r *memoryApprovalRepository) Create(ctx context.Context, approval *domain.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *approval
	r.approvals[approval.ID] = &stored
	return nil
}

func (r *memoryApprovalRepository) Update(ctx context.Context, approval *domain.Approval) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.approvals[approval.ID]; !ok {
		return apperrors.NewNotFound("approval", map[string]any{"approval_id": approval.ID})
	}
	stored := *approval
	r.approvals[approval.ID] = &stored
	return nil
}

func (r *memoryApprovalRepository) GetByID(ctx context.Context, id string) (*domain.Approval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	approval, ok := r.approvals[id]
	if !ok {
		return nil, apperrors.NewNotFound("approval", map[string]any{"approval_id": id})
	}
	copy := *approval
	return &copy, nil
}

func (r *memoryApprovalRepository) List(ctx context.Context) ([]domain.Approval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Approval, 0, len(r.approvals))
	for _, approval := range r.approvals {
		result = append(result, *approval)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

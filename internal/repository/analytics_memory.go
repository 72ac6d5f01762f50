package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

type memoryAnalyticsRepository struct {
	mu      sync.RWMutex
	records []domain.AnalyticsRecord
}

// NewMemoryAnalyticsRepository instantiates the in-memory record store.
func NewMemoryAnalyticsRepository() AnalyticsRecordRepository {
	return &memoryAnalyticsRepository{}
}

func (r *memoryAnalyticsRepository) Insert(ctx context.Context, record domain.AnalyticsRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.Date.Equal(record.Date) && existing.Segment == record.Segment {
			return apperrors.NewConflict("analytics record already exists", map[string]any{
				"date":    record.Date,
				"segment": record.Segment,
			})
		}
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memoryAnalyticsRepository) List(ctx context.Context) ([]domain.AnalyticsRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.AnalyticsRecord, len(r.records))
	copy(result, r.records)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

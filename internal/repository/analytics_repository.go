package repository

import (
	"context"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// AnalyticsRecordRepository stores the periodic operational records the
// aggregator reads. Records are immutable once inserted.
type AnalyticsRecordRepository interface {
	Insert(ctx context.Context, record domain.AnalyticsRecord) error
	List(ctx context.Context) ([]domain.AnalyticsRecord, error)
}

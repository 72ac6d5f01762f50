package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/repository"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// Summary holds rolled-up operational metrics. All rates are raw ratios;
// percentage formatting belongs to the presentation layer.
type Summary struct {
	AvgTurnaroundHours         float64
	MedianTurnaroundHours      float64
	FirstContactResolutionRate float64
	InstallerProductivity      float64
	LeadConversionRate         float64
	DefectRate                 float64
	TotalResolved              int
	TotalJobs                  int
	Funnel                     map[domain.FunnelStage]int
	Aging                      map[domain.FunnelStage]float64
}

// AnalyticsService ingests and aggregates periodic operational records.
type AnalyticsService struct {
	records repository.AnalyticsRecordRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(records repository.AnalyticsRecordRepository) *AnalyticsService {
	return &AnalyticsService{records: records}
}

// Ingest stores one periodic record. The (Date, Segment) pair must be
// unique; a second record for the same pair is rejected as a conflict.
func (s *AnalyticsService) Ingest(ctx context.Context, record domain.AnalyticsRecord) error {
	if record.Date.IsZero() {
		return apperrors.NewValidationError("record date required", nil)
	}
	if record.Segment == "" {
		return apperrors.NewValidationError("record segment required", nil)
	}
	return apperrors.MapError(s.records.Insert(ctx, record))
}

// SummarizeWindow filters the stored records by date range and segment and
// summarizes the remainder.
func (s *AnalyticsService) SummarizeWindow(ctx context.Context, from, to *time.Time, segment string) (Summary, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return Summary{}, apperrors.MapError(err)
	}
	return Summarize(Filter(records, from, to, segment)), nil
}

// Filter narrows records to a time/segment window. The range is inclusive
// on from and inclusive through end-of-day on to; segment matching is
// case-insensitive, with "all" (or empty) bypassing the segment filter.
func Filter(records []domain.AnalyticsRecord, from, to *time.Time, segment string) []domain.AnalyticsRecord {
	matchSegment := segment != "" && !strings.EqualFold(segment, "all")
	var end time.Time
	if to != nil {
		y, m, d := to.Date()
		end = time.Date(y, m, d, 0, 0, 0, 0, to.Location()).AddDate(0, 0, 1)
	}

	result := make([]domain.AnalyticsRecord, 0, len(records))
	for _, record := range records {
		if from != nil && record.Date.Before(*from) {
			continue
		}
		if to != nil && !record.Date.Before(end) {
			continue
		}
		if matchSegment && !strings.EqualFold(record.Segment, segment) {
			continue
		}
		result = append(result, record)
	}
	return result
}

// Summarize rolls a record set into summary metrics.
func Summarize(records []domain.AnalyticsRecord) Summary {
	summary := Summary{
		Funnel: make(map[domain.FunnelStage]int),
		Aging:  make(map[domain.FunnelStage]float64),
	}
	if len(records) == 0 {
		return summary
	}

	var (
		weightedTurnaround float64
		medianSum          float64
		firstContact       int
		jobs               int
		teamSize           int
		leads              int
		conversions        int
		defects            int
		returns            int
	)
	agingSums := make(map[domain.FunnelStage]float64)

	for _, record := range records {
		summary.TotalResolved += record.ResolvedTickets
		weightedTurnaround += record.AvgTurnaroundHours * float64(record.ResolvedTickets)
		medianSum += record.MedianTurnaroundHours
		firstContact += record.FirstContactResolved
		jobs += record.InstallerJobsCompleted
		teamSize += record.InstallerTeamSize
		leads += record.Leads
		conversions += record.Conversions
		defects += record.Defects
		returns += record.Returns
		for stage, count := range record.Funnel {
			summary.Funnel[stage] += count
		}
		for stage, age := range record.Aging {
			agingSums[stage] += age
		}
	}
	summary.TotalJobs = jobs

	if summary.TotalResolved > 0 {
		summary.AvgTurnaroundHours = weightedTurnaround / float64(summary.TotalResolved)
		summary.FirstContactResolutionRate = float64(firstContact) / float64(summary.TotalResolved)
	}
	summary.MedianTurnaroundHours = medianSum / float64(len(records))
	if teamSize > 0 {
		summary.InstallerProductivity = float64(jobs) / float64(teamSize)
	} else {
		summary.InstallerProductivity = float64(jobs) / float64(len(records))
	}
	if leads > 0 {
		summary.LeadConversionRate = float64(conversions) / float64(leads)
	}
	if jobs > 0 {
		summary.DefectRate = float64(defects+returns) / float64(jobs)
	}
	for stage, sum := range agingSums {
		summary.Aging[stage] = sum / float64(len(records))
	}
	return summary
}

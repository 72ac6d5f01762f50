package dto

import (
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// IngestRecordRequest is one periodic operational record. Date is a
// calendar day in YYYY-MM-DD form.
type IngestRecordRequest struct {
	Date                   string             `json:"date"`
	Segment                string             `json:"segment"`
	ResolvedTickets        int                `json:"resolved_tickets"`
	FirstContactResolved   int                `json:"first_contact_resolved"`
	AvgTurnaroundHours     float64            `json:"avg_turnaround_hours"`
	MedianTurnaroundHours  float64            `json:"median_turnaround_hours"`
	InstallerJobsCompleted int                `json:"installer_jobs_completed"`
	InstallerTeamSize      int                `json:"installer_team_size"`
	Leads                  int                `json:"leads"`
	Conversions            int                `json:"conversions"`
	Defects                int                `json:"defects"`
	Returns                int                `json:"returns"`
	Funnel                 map[string]int     `json:"funnel"`
	Aging                  map[string]float64 `json:"aging"`
}

// ToAnalyticsRecord converts the request into a domain record. The caller
// parses Date beforehand.
func (r IngestRecordRequest) ToAnalyticsRecord(date time.Time) domain.AnalyticsRecord {
	funnel := make(map[domain.FunnelStage]int, len(r.Funnel))
	for stage, count := range r.Funnel {
		funnel[domain.FunnelStage(stage)] = count
	}
	aging := make(map[domain.FunnelStage]float64, len(r.Aging))
	for stage, age := range r.Aging {
		aging[domain.FunnelStage(stage)] = age
	}
	return domain.AnalyticsRecord{
		Date:                   date,
		Segment:                r.Segment,
		ResolvedTickets:        r.ResolvedTickets,
		FirstContactResolved:   r.FirstContactResolved,
		AvgTurnaroundHours:     r.AvgTurnaroundHours,
		MedianTurnaroundHours:  r.MedianTurnaroundHours,
		InstallerJobsCompleted: r.InstallerJobsCompleted,
		InstallerTeamSize:      r.InstallerTeamSize,
		Leads:                  r.Leads,
		Conversions:            r.Conversions,
		Defects:                r.Defects,
		Returns:                r.Returns,
		Funnel:                 funnel,
		Aging:                  aging,
	}
}

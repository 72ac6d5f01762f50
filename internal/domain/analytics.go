package domain

import "time"

// FunnelStage enumerates the staged progression tracked in analytics
// records.
type FunnelStage string

const (
	StageEnquiry      FunnelStage = "enquiry"
	StageSurvey       FunnelStage = "survey"
	StageApplication  FunnelStage = "application"
	StageInspection   FunnelStage = "inspection"
	StageDisbursement FunnelStage = "disbursement"
)

// FunnelStages lists all stages in pipeline order.
var FunnelStages = []FunnelStage{
	StageEnquiry,
	StageSurvey,
	StageApplication,
	StageInspection,
	StageDisbursement,
}

// AnalyticsRecord is one immutable periodic operational record, identified
// by (Date, Segment).
type AnalyticsRecord struct {
	Date                   time.Time
	Segment                string
	ResolvedTickets        int
	FirstContactResolved   int
	AvgTurnaroundHours     float64
	MedianTurnaroundHours  float64
	InstallerJobsCompleted int
	InstallerTeamSize      int
	Leads                  int
	Conversions            int
	Defects                int
	Returns                int
	Funnel                 map[FunnelStage]int
	Aging                  map[FunnelStage]float64
}

package domain

import (
	"fmt"
	"sort"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusWaiting    TicketStatus = "WAITING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// ParseTicketStatus validates a raw status value.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	switch TicketStatus(raw) {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusWaiting, TicketStatusResolved:
		return TicketStatus(raw), nil
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// ParseTicketPriority validates a raw priority value.
func ParseTicketPriority(raw string) (TicketPriority, error) {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriority(raw), nil
	}
	return "", fmt.Errorf("unknown ticket priority %q", raw)
}

// TicketSource distinguishes public intake from internally raised tickets.
type TicketSource string

const (
	TicketSourcePublic   TicketSource = "PUBLIC"
	TicketSourceInternal TicketSource = "INTERNAL"
)

// TimelineEntryType classifies audit timeline entries.
type TimelineEntryType string

const (
	TimelineTypeCreate     TimelineEntryType = "create"
	TimelineTypeMerge      TimelineEntryType = "merge"
	TimelineTypeTriage     TimelineEntryType = "triage"
	TimelineTypeStatus     TimelineEntryType = "status"
	TimelineTypeApproval   TimelineEntryType = "approval"
	TimelineTypeAutomation TimelineEntryType = "automation"
	TimelineTypeSLA        TimelineEntryType = "sla"
)

// TimelineVisibility controls who may see a timeline entry.
type TimelineVisibility string

const (
	VisibilityPublic   TimelineVisibility = "public"
	VisibilityInternal TimelineVisibility = "internal"
)

// Customer identifies the person behind a ticket. Phone or email acts as
// the dedup key.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Pincode string
}

// Attachment is file metadata carried by a ticket; blob storage is external.
type Attachment struct {
	Name string
	Size int64
	Mime string
}

// Resolution captures closing notes for a resolved ticket.
type Resolution struct {
	Notes      string
	ResolvedAt *time.Time
}

// Satisfaction captures post-resolution feedback.
type Satisfaction struct {
	FollowUp bool
	Rating   int
	Feedback string
}

// SLAFlags are idempotency guards for the SLA watcher. Each flips
// false->true at most once per slaDueDate value.
type SLAFlags struct {
	WarningSent  bool
	BreachLogged bool
}

// TimelineEntry is one audit record on a ticket.
type TimelineEntry struct {
	Timestamp  time.Time
	Actor      string
	Message    string
	Type       TimelineEntryType
	Visibility TimelineVisibility
}

// Ticket is the aggregate for service complaints.
type Ticket struct {
	ID                string
	Customer          Customer
	ContactMethod     string
	Category          string
	SubsidyStage      string
	RequiresSiteVisit bool
	Description       string
	Attachments       []Attachment
	Priority          TicketPriority
	Status            TicketStatus
	AssignedTo        *string
	SLADueDate        *time.Time
	Resolution        Resolution
	Satisfaction      Satisfaction
	Flags             SLAFlags
	Timeline          []TimelineEntry
	CreatedAt         time.Time
	Source            TicketSource
}

// AppendTimeline adds an entry keeping the timeline sorted ascending by
// timestamp.
func (t *Ticket) AppendTimeline(entry TimelineEntry) {
	t.Timeline = append(t.Timeline, entry)
	sort.SliceStable(t.Timeline, func(i, j int) bool {
		return t.Timeline[i].Timestamp.Before(t.Timeline[j].Timestamp)
	})
}

// SetSLADueDate reassigns the due date and resets both watcher flags.
func (t *Ticket) SetSLADueDate(due *time.Time) {
	t.SLADueDate = due
	t.Flags = SLAFlags{}
}

// Clone returns a deep copy so callers can read or mutate without aliasing
// store-held state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	clone := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		clone.AssignedTo = &v
	}
	if t.SLADueDate != nil {
		v := *t.SLADueDate
		clone.SLADueDate = &v
	}
	if t.Resolution.ResolvedAt != nil {
		v := *t.Resolution.ResolvedAt
		clone.Resolution.ResolvedAt = &v
	}
	clone.Attachments = append([]Attachment(nil), t.Attachments...)
	clone.Timeline = append([]TimelineEntry(nil), t.Timeline...)
	return &clone
}

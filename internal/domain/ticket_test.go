package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTimelineKeepsOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	ticket := &Ticket{}

	ticket.AppendTimeline(TimelineEntry{Timestamp: base.Add(2 * time.Hour), Message: "later"})
	ticket.AppendTimeline(TimelineEntry{Timestamp: base, Message: "earlier"})
	ticket.AppendTimeline(TimelineEntry{Timestamp: base.Add(time.Hour), Message: "middle"})

	require.Len(t, ticket.Timeline, 3)
	assert.Equal(t, "earlier", ticket.Timeline[0].Message)
	assert.Equal(t, "middle", ticket.Timeline[1].Message)
	assert.Equal(t, "later", ticket.Timeline[2].Message)
}

func TestSetSLADueDateResetsFlags(t *testing.T) {
	due := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	ticket := &Ticket{Flags: SLAFlags{WarningSent: true, BreachLogged: true}}

	ticket.SetSLADueDate(&due)
	assert.False(t, ticket.Flags.WarningSent)
	assert.False(t, ticket.Flags.BreachLogged)
	require.NotNil(t, ticket.SLADueDate)

	ticket.Flags.WarningSent = true
	ticket.SetSLADueDate(nil)
	assert.Nil(t, ticket.SLADueDate)
	assert.False(t, ticket.Flags.WarningSent)
}

func TestCloneIsDeep(t *testing.T) {
	assignee := "ravi"
	due := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	ticket := &Ticket{
		ID:          "CMP-20260314-001",
		AssignedTo:  &assignee,
		SLADueDate:  &due,
		Attachments: []Attachment{{Name: "photo.jpg"}},
		Timeline:    []TimelineEntry{{Message: "Ticket created"}},
	}

	clone := ticket.Clone()
	*clone.AssignedTo = "meera"
	clone.Attachments[0].Name = "other.png"
	clone.Timeline[0].Message = "mutated"

	assert.Equal(t, "ravi", *ticket.AssignedTo)
	assert.Equal(t, "photo.jpg", ticket.Attachments[0].Name)
	assert.Equal(t, "Ticket created", ticket.Timeline[0].Message)
}

func TestParseEnums(t *testing.T) {
	status, err := ParseTicketStatus("IN_PROGRESS")
	require.NoError(t, err)
	assert.Equal(t, TicketStatusInProgress, status)
	_, err = ParseTicketStatus("OPEN")
	assert.Error(t, err)

	priority, err := ParseTicketPriority("CRITICAL")
	require.NoError(t, err)
	assert.Equal(t, TicketPriorityCritical, priority)
	_, err = ParseTicketPriority("urgent")
	assert.Error(t, err)

	field, err := ParseApprovalField("slaDue")
	require.NoError(t, err)
	assert.Equal(t, ApprovalFieldSLADue, field)
	_, err = ParseApprovalField("assignee")
	assert.Error(t, err)

	severity, err := ParseAlertSeverity("HIGH")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, severity)
	_, err = ParseAlertSeverity("SEVERE")
	assert.Error(t, err)
}

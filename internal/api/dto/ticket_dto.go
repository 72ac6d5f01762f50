package dto

import (
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID                string                  `json:"id"`
	Customer          CustomerResponse        `json:"customer"`
	ContactMethod     string                  `json:"contact_method"`
	Category          string                  `json:"category"`
	SubsidyStage      string                  `json:"subsidy_stage,omitempty"`
	RequiresSiteVisit bool                    `json:"requires_site_visit"`
	Description       string                  `json:"description"`
	Attachments       []AttachmentResponse    `json:"attachments"`
	Priority          domain.TicketPriority   `json:"priority"`
	Status            domain.TicketStatus     `json:"status"`
	AssignedTo        *string                 `json:"assigned_to"`
	SLADueDate        *time.Time              `json:"sla_due_date"`
	Resolution        ResolutionResponse      `json:"resolution"`
	Satisfaction      SatisfactionResponse    `json:"satisfaction"`
	Timeline          []TimelineEntryResponse `json:"timeline"`
	CreatedAt         time.Time               `json:"created_at"`
	Source            domain.TicketSource     `json:"source"`
}

// CustomerResponse identity block.
type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Pincode string `json:"pincode,omitempty"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// ResolutionResponse closing info.
type ResolutionResponse struct {
	Notes      string     `json:"notes,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// SatisfactionResponse feedback info.
type SatisfactionResponse struct {
	FollowUp bool   `json:"follow_up"`
	Rating   int    `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// TimelineEntryResponse is one audit record.
type TimelineEntryResponse struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Actor      string                    `json:"actor"`
	Message    string                    `json:"message"`
	Type       domain.TimelineEntryType  `json:"type"`
	Visibility domain.TimelineVisibility `json:"visibility"`
}

// TriageRequest is a partial triage update.
type TriageRequest struct {
	Priority   *string `json:"priority"`
	Status     *string `json:"status"`
	Category   *string `json:"category"`
	Assignee   *string `json:"assignee"`
	SLADueDate *string `json:"sla_due_date"`
}

// StatusRequest sets the ticket status.
type StatusRequest struct {
	Status string `json:"status"`
}

// ResolutionRequest records resolution and satisfaction.
type ResolutionRequest struct {
	Notes    string `json:"notes"`
	FollowUp bool   `json:"follow_up"`
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// ToTicketResponse maps the domain aggregate.
func ToTicketResponse(ticket *domain.Ticket) TicketResponse {
	attachments := make([]AttachmentResponse, 0, len(ticket.Attachments))
	for _, att := range ticket.Attachments {
		attachments = append(attachments, AttachmentResponse{Name: att.Name, Size: att.Size, Mime: att.Mime})
	}
	timeline := make([]TimelineEntryResponse, 0, len(ticket.Timeline))
	for _, entry := range ticket.Timeline {
		timeline = append(timeline, TimelineEntryResponse{
			Timestamp:  entry.Timestamp,
			Actor:      entry.Actor,
			Message:    entry.Message,
			Type:       entry.Type,
			Visibility: entry.Visibility,
		})
	}
	return TicketResponse{
		ID: ticket.ID,
		Customer: CustomerResponse{
			Name:    ticket.Customer.Name,
			Email:   ticket.Customer.Email,
			Phone:   ticket.Customer.Phone,
			Pincode: ticket.Customer.Pincode,
		},
		ContactMethod:     ticket.ContactMethod,
		Category:          ticket.Category,
		SubsidyStage:      ticket.SubsidyStage,
		RequiresSiteVisit: ticket.RequiresSiteVisit,
		Description:       ticket.Description,
		Attachments:       attachments,
		Priority:          ticket.Priority,
		Status:            ticket.Status,
		AssignedTo:        ticket.AssignedTo,
		SLADueDate:        ticket.SLADueDate,
		Resolution: ResolutionResponse{
			Notes:      ticket.Resolution.Notes,
			ResolvedAt: ticket.Resolution.ResolvedAt,
		},
		Satisfaction: SatisfactionResponse{
			FollowUp: ticket.Satisfaction.FollowUp,
			Rating:   ticket.Satisfaction.Rating,
			Feedback: ticket.Satisfaction.Feedback,
		},
		Timeline:  timeline,
		CreatedAt: ticket.CreatedAt,
		Source:    ticket.Source,
	}
}

// ToTicketListResponse maps a ticket slice.
func ToTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, ToTicketResponse(&tickets[i]))
	}
	return result
}

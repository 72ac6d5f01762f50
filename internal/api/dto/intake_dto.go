package dto

import (
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/service"
)

// IntakeRequest is a raw complaint submission.
type IntakeRequest struct {
	CustomerName      string              `json:"customer_name"`
	Email             string              `json:"email"`
	Phone             string              `json:"phone"`
	Pincode           string              `json:"pincode"`
	ContactMethod     string              `json:"contact_method"`
	Category          string              `json:"category"`
	SubsidyStage      string              `json:"subsidy_stage"`
	RequiresSiteVisit bool                `json:"requires_site_visit"`
	Description       string              `json:"description"`
	Attachments       []AttachmentRequest `json:"attachments"`
	Source            string              `json:"source"`
}

// AttachmentRequest describes attachment metadata input.
type AttachmentRequest struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// ResolveDuplicateRequest resolves a duplicate prompt.
type ResolveDuplicateRequest struct {
	ExistingID string        `json:"existing_id"`
	Intake     IntakeRequest `json:"intake"`
}

// IntakeResponse is either a created ticket or a duplicate prompt.
type IntakeResponse struct {
	Ticket    *TicketResponse    `json:"ticket,omitempty"`
	Duplicate *DuplicateResponse `json:"duplicate,omitempty"`
}

// DuplicateResponse references the first matching ticket; callers resolve
// it through the merge or create-separate endpoints.
type DuplicateResponse struct {
	ExistingTicket TicketResponse `json:"existing_ticket"`
}

// ToIntakeInput maps the request into the service payload.
func (r IntakeRequest) ToIntakeInput() service.IntakeInput {
	attachments := make([]domain.Attachment, 0, len(r.Attachments))
	for _, att := range r.Attachments {
		attachments = append(attachments, domain.Attachment{Name: att.Name, Size: att.Size, Mime: att.Mime})
	}
	return service.IntakeInput{
		CustomerName:      r.CustomerName,
		Email:             r.Email,
		Phone:             r.Phone,
		Pincode:           r.Pincode,
		ContactMethod:     r.ContactMethod,
		Category:          r.Category,
		SubsidyStage:      r.SubsidyStage,
		RequiresSiteVisit: r.RequiresSiteVisit,
		Description:       r.Description,
		Attachments:       attachments,
	}
}

// SourceOrDefault maps the raw source, defaulting to public intake.
func (r IntakeRequest) SourceOrDefault() domain.TicketSource {
	if r.Source == string(domain.TicketSourceInternal) {
		return domain.TicketSourceInternal
	}
	return domain.TicketSourcePublic
}

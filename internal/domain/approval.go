package domain

import (
	"fmt"
	"time"
)

// ApprovalField enumerates the ticket fields gated behind approval.
type ApprovalField string

const (
	ApprovalFieldCategory          ApprovalField = "category"
	ApprovalFieldPriority          ApprovalField = "priority"
	ApprovalFieldSLADue            ApprovalField = "slaDue"
	ApprovalFieldContactMethod     ApprovalField = "contactMethod"
	ApprovalFieldRequiresSiteVisit ApprovalField = "requiresSiteVisit"
)

// ParseApprovalField validates a raw field name.
func ParseApprovalField(raw string) (ApprovalField, error) {
	switch ApprovalField(raw) {
	case ApprovalFieldCategory, ApprovalFieldPriority, ApprovalFieldSLADue,
		ApprovalFieldContactMethod, ApprovalFieldRequiresSiteVisit:
		return ApprovalField(raw), nil
	}
	return "", fmt.Errorf("unknown approval field %q", raw)
}

// ApprovalStatus enumerates the approval lifecycle. Approved and Rejected
// are terminal.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// Approval records a proposed ticket field change awaiting review.
// PreviousValue is captured when the change is proposed, not when it is
// resolved.
type Approval struct {
	ID            string
	TicketID      string
	Field         ApprovalField
	PreviousValue string
	NewValue      string
	ProposedBy    string
	Status        ApprovalStatus
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

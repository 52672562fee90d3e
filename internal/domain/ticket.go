package domain

import "slices"

// TicketStatus enumerates the approval states of a change ticket.
type TicketStatus string

const (
	TicketStatusPendingApproval TicketStatus = "Pending Approval"
	TicketStatusApproved        TicketStatus = "Approved"
	TicketStatusRejected        TicketStatus = "Rejected"
	TicketStatusInReview        TicketStatus = "In Review"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPendingApproval, TicketStatusApproved, TicketStatusRejected, TicketStatusInReview:
		return true
	}
	return false
}

// TicketPriority enumerates change urgency.
type TicketPriority string

const (
	TicketPriorityCritical TicketPriority = "Critical"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityLow      TicketPriority = "Low"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityCritical, TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// ComplianceStatus is the aggregate outcome of the compliance rules.
type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceWarning      ComplianceStatus = "warning"
	ComplianceNonCompliant ComplianceStatus = "non-compliant"
)

// TicketRecord holds the raw fields of a change ticket as they are seeded.
// A nil ApprovalChain or nil text pointer means the field is absent.
type TicketRecord struct {
	ID                 string         `json:"id" yaml:"id"`
	Number             string         `json:"number" yaml:"number"`
	ShortDescription   string         `json:"shortDescription" yaml:"shortDescription"`
	Description        string         `json:"description" yaml:"description"`
	RequestedBy        string         `json:"requestedBy" yaml:"requestedBy"`
	AssignedTo         string         `json:"assignedTo" yaml:"assignedTo"`
	Priority           TicketPriority `json:"priority" yaml:"priority"`
	Status             TicketStatus   `json:"status" yaml:"status"`
	CreatedAt          string         `json:"createdAt" yaml:"createdAt"`
	ScheduledStartDate string         `json:"scheduledStartDate" yaml:"scheduledStartDate"`
	ScheduledEndDate   string         `json:"scheduledEndDate" yaml:"scheduledEndDate"`
	ApprovalChain      []string       `json:"approvalChain" yaml:"approvalChain"`
	TestingEvidence    *string        `json:"testingEvidence" yaml:"testingEvidence"`
	RollbackPlan       *string        `json:"rollbackPlan" yaml:"rollbackPlan"`
	ChangeWindow       *string        `json:"changeWindow" yaml:"changeWindow"`
}

// Ticket is a change ticket with its precomputed compliance outcome.
type Ticket struct {
	TicketRecord
	ComplianceStatus  ComplianceStatus   `json:"complianceStatus"`
	ValidationResults []ValidationResult `json:"validationResults"`
}

// Clone returns a copy that shares no mutable state with t.
func (t Ticket) Clone() Ticket {
	out := t
	if t.ApprovalChain != nil {
		out.ApprovalChain = slices.Clone(t.ApprovalChain)
	}
	out.ValidationResults = slices.Clone(t.ValidationResults)
	return out
}

// FailedRules lists the rules t did not pass, in rule order.
func (t Ticket) FailedRules() []RuleName {
	failed := make([]RuleName, 0, len(t.ValidationResults))
	for _, r := range t.ValidationResults {
		if !r.Passed {
			failed = append(failed, r.Rule)
		}
	}
	return failed
}

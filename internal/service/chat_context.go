package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spec-kit/change-compliance/internal/domain"
)

// TicketSummary is the per-ticket projection handed to the chat model.
type TicketSummary struct {
	ID                 string                  `json:"id"`
	Number             string                  `json:"number"`
	ShortDescription   string                  `json:"shortDescription"`
	AssignedTo         string                  `json:"assignedTo"`
	RequestedBy        string                  `json:"requestedBy"`
	Priority           domain.TicketPriority   `json:"priority"`
	Status             domain.TicketStatus     `json:"status"`
	ComplianceStatus   domain.ComplianceStatus `json:"complianceStatus"`
	ScheduledStartDate string                  `json:"scheduledStartDate"`
	FailedValidations  []domain.RuleName       `json:"failedValidations"`
	HasApprovalChain   bool                    `json:"hasApprovalChain"`
	HasTestingEvidence bool                    `json:"hasTestingEvidence"`
	HasRollbackPlan    bool                    `json:"hasRollbackPlan"`
	HasChangeWindow    bool                    `json:"hasChangeWindow"`
}

const ticketsPlaceholder = "{tickets_data}"

const systemPromptTemplate = `You are a helpful assistant for a ServiceNow Change Ticket Compliance Dashboard.
You help controls team members review change tickets, understand compliance issues, and provide guidance on how to fix them.

You have access to the following ticket data:

{tickets_data}

Key concepts:
- Each ticket has a compliance status: "compliant" (green), "warning" (yellow), or "non-compliant" (red)
- Tickets are validated against 5 rules:
  1. Required Fields - All mandatory fields must be filled
  2. Approval Chain - Must have at least one approver assigned
  3. Testing Evidence - Must have test results or evidence attached
  4. Rollback Plan - Must document rollback procedure
  5. Change Window - Must specify a valid change window

Compliance status logic:
- Green (Compliant): All 5 rules pass
- Yellow (Warning): 1-2 rules fail (warnings only, no errors)
- Red (Non-compliant): 3+ rules fail OR any critical error (Required Fields, Approval Chain, or Rollback Plan)

You can help users:
- Find tickets by various criteria (assignee, priority, status, compliance)
- Explain why a ticket is non-compliant
- Suggest how to fix compliance issues
- Provide summaries and statistics
- Answer questions about specific tickets

Formatting guidelines:
- Always respond in Markdown format for better readability
- Use tables when presenting multiple tickets or comparing data (e.g., | Ticket | Status | Priority |)
- Use bullet points for lists of items or issues
- Use **bold** for ticket numbers and important terms
- Use headings (##, ###) to organize longer responses
- Use code blocks for technical details if needed
- Be concise but helpful
- Always reference ticket numbers (CHG...) when discussing specific tickets`

// BuildChatContext projects tickets into the summaries the model sees, in the
// order given.
func BuildChatContext(tickets []domain.Ticket) []TicketSummary {
	out := make([]TicketSummary, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, TicketSummary{
			ID:                 t.ID,
			Number:             t.Number,
			ShortDescription:   t.ShortDescription,
			AssignedTo:         t.AssignedTo,
			RequestedBy:        t.RequestedBy,
			Priority:           t.Priority,
			Status:             t.Status,
			ComplianceStatus:   t.ComplianceStatus,
			ScheduledStartDate: t.ScheduledStartDate,
			FailedValidations:  t.FailedRules(),
			HasApprovalChain:   len(t.ApprovalChain) > 0,
			HasTestingEvidence: t.TestingEvidence != nil,
			HasRollbackPlan:    t.RollbackPlan != nil,
			HasChangeWindow:    t.ChangeWindow != nil,
		})
	}
	return out
}

// BuildSystemPrompt renders the summaries as two-space indented JSON inside
// the assistant instructions.
func BuildSystemPrompt(summaries []TicketSummary) (string, error) {
	if summaries == nil {
		summaries = []TicketSummary{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return "", fmt.Errorf("encode ticket context: %w", err)
	}
	data := strings.TrimSuffix(buf.String(), "\n")
	return strings.Replace(systemPromptTemplate, ticketsPlaceholder, data, 1), nil
}

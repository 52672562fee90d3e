package domain

// RuleName identifies one compliance rule.
type RuleName string

const (
	RuleRequiredFields  RuleName = "Required Fields"
	RuleApprovalChain   RuleName = "Approval Chain"
	RuleTestingEvidence RuleName = "Testing Evidence"
	RuleChangeWindow    RuleName = "Change Window"
	RuleRollbackPlan    RuleName = "Rollback Plan"
)

// Severity grades a failed rule.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationResult is the outcome of one rule against one ticket.
type ValidationResult struct {
	Rule       RuleName `json:"rule"`
	Passed     bool     `json:"passed"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

// Package compliance evaluates change tickets against the fixed set of
// change-management rules.
package compliance

import "github.com/spec-kit/change-compliance/internal/domain"

// Evaluation is the result of running every rule against one record.
type Evaluation struct {
	Status  domain.ComplianceStatus
	Results []domain.ValidationResult
}

type rule struct {
	name       domain.RuleName
	severity   domain.Severity
	passMsg    string
	failMsg    string
	suggestion string
	check      func(domain.TicketRecord) bool
}

// rules run in this order; results keep it.
var rules = []rule{
	{
		name:       domain.RuleRequiredFields,
		severity:   domain.SeverityError,
		passMsg:    "All mandatory fields are filled",
		failMsg:    "Missing required fields",
		suggestion: "Fill in all mandatory fields: description, requestedBy, assignedTo, scheduled dates",
		check:      hasRequiredFields,
	},
	{
		name:       domain.RuleApprovalChain,
		severity:   domain.SeverityError,
		passMsg:    "Approval chain is configured",
		failMsg:    "No approvers assigned",
		suggestion: "Add at least one approver to the approval chain",
		check:      func(r domain.TicketRecord) bool { return len(r.ApprovalChain) > 0 },
	},
	{
		name:       domain.RuleTestingEvidence,
		severity:   domain.SeverityWarning,
		passMsg:    "Testing evidence attached",
		failMsg:    "No testing evidence found",
		suggestion: "Attach test results, screenshots, or documentation proving the change was tested",
		check:      func(r domain.TicketRecord) bool { return nonEmpty(r.TestingEvidence) },
	},
	{
		name:       domain.RuleChangeWindow,
		severity:   domain.SeverityWarning,
		passMsg:    "Change window specified",
		failMsg:    "No change window defined",
		suggestion: "Specify an approved change window (e.g., 'Saturday 2:00 AM - 6:00 AM EST')",
		check:      func(r domain.TicketRecord) bool { return nonEmpty(r.ChangeWindow) },
	},
	{
		name:       domain.RuleRollbackPlan,
		severity:   domain.SeverityError,
		passMsg:    "Rollback plan documented",
		failMsg:    "No rollback plan provided",
		suggestion: "Document a step-by-step rollback procedure in case the change fails",
		check:      func(r domain.TicketRecord) bool { return nonEmpty(r.RollbackPlan) },
	},
}

// RuleCount is the number of results Evaluate always produces.
func RuleCount() int {
	return len(rules)
}

// Evaluate runs all rules against record. Every rule runs regardless of
// earlier failures.
func Evaluate(record domain.TicketRecord) Evaluation {
	results := make([]domain.ValidationResult, 0, len(rules))
	for _, r := range rules {
		passed := r.check(record)
		res := domain.ValidationResult{
			Rule:     r.name,
			Passed:   passed,
			Severity: r.severity,
			Message:  r.passMsg,
		}
		if !passed {
			res.Message = r.failMsg
			res.Suggestion = r.suggestion
		}
		results = append(results, res)
	}
	return Evaluation{Status: DeriveStatus(results), Results: results}
}

// DeriveStatus folds rule results into a compliance status. The failed >= 3
// arm cannot fire with today's rule set but must stay.
func DeriveStatus(results []domain.ValidationResult) domain.ComplianceStatus {
	failed, errs := 0, 0
	for _, r := range results {
		if r.Passed {
			continue
		}
		failed++
		if r.Severity == domain.SeverityError {
			errs++
		}
	}

	switch {
	case failed == 0:
		return domain.ComplianceCompliant
	case errs > 0 || failed >= 3:
		return domain.ComplianceNonCompliant
	default:
		return domain.ComplianceWarning
	}
}

func hasRequiredFields(r domain.TicketRecord) bool {
	for _, v := range []string{
		r.ShortDescription,
		r.Description,
		r.RequestedBy,
		r.AssignedTo,
		r.ScheduledStartDate,
		r.ScheduledEndDate,
	} {
		if v == "" {
			return false
		}
	}
	return true
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

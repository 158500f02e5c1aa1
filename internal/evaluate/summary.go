package evaluate

import "genlens/internal/rules"

// Compliance status derived from a violation list.
const (
	StatusCompliant    = "compliant"
	StatusWarnings     = "warnings"
	StatusNonCompliant = "non_compliant"
)

// Summary aggregates a violation list for reporting.
type Summary struct {
	Total      int                    `json:"total_violations"`
	BySeverity map[rules.Severity]int `json:"by_severity"`
	ByRule     map[string]int         `json:"by_rule"`
	Status     string                 `json:"status"`
}

// Summarize counts violations per severity and rule and derives the overall
// status: any error makes the result non_compliant, any warning alone makes
// it warnings, otherwise compliant.
func Summarize(violations []Violation) Summary {
	s := Summary{
		BySeverity: make(map[rules.Severity]int),
		ByRule:     make(map[string]int),
		Status:     StatusCompliant,
	}

	for _, v := range violations {
		s.Total++
		s.BySeverity[v.Severity]++
		s.ByRule[v.RuleID]++
	}

	switch {
	case s.BySeverity[rules.SeverityError] > 0:
		s.Status = StatusNonCompliant
	case s.BySeverity[rules.SeverityWarning] > 0:
		s.Status = StatusWarnings
	}

	return s
}

// Package evaluate runs a rule set against a structural representation and
// emits located, deduplicated Violation records. One broken rule never takes
// down the whole evaluation: predicate panics are contained per rule and
// surfaced as faults on the result.
package evaluate

import (
	"fmt"
	"sort"

	"genlens/internal/rules"
	"genlens/internal/structure"
)

// DefaultSnippetWidth bounds the source excerpt attached to a violation.
const DefaultSnippetWidth = 120

// Violation is one located instance of a rule matching the analyzed code.
// Never mutated after creation.
type Violation struct {
	RuleID   string         `json:"rule_id"`
	Severity rules.Severity `json:"severity"`
	Line     int            `json:"line"`   // 1-based
	Column   int            `json:"column"` // 0-based
	Message  string         `json:"message"`
	Snippet  string         `json:"snippet"`
}

// RuleFault records a predicate that panicked during evaluation. The fault
// is diagnostic only; the rule simply contributes zero matches.
type RuleFault struct {
	RuleID string `json:"rule_id"`
	Reason string `json:"reason"`
}

// Evaluation is the outcome of running one rule set over one source.
type Evaluation struct {
	// Violations is ordered by (line, column), then rule id on ties.
	Violations []Violation `json:"violations"`
	// Skipped lists tree-only rules that could not run against a pattern
	// view. Skipping is coverage degradation, not an error.
	Skipped []string `json:"skipped,omitempty"`
	// Faults lists rules whose predicate panicked.
	Faults []RuleFault `json:"faults,omitempty"`
}

// Degraded reports whether any rule was skipped or faulted.
func (e *Evaluation) Degraded() bool {
	return len(e.Skipped) > 0 || len(e.Faults) > 0
}

// Run applies every enabled rule whose capability the structure variant
// satisfies. Input-data problems never propagate as errors; they narrow the
// result instead.
func Run(src *structure.Source, set *rules.RuleSet, snippetWidth int) Evaluation {
	if snippetWidth <= 0 {
		snippetWidth = DefaultSnippetWidth
	}

	var ev Evaluation
	seen := make(map[violationKey]bool)

	for _, rule := range set.Enabled() {
		if rule.Capability == rules.CapTree && src.Mode() != structure.ModeParsed {
			ev.Skipped = append(ev.Skipped, rule.ID)
			continue
		}

		matches, fault := runPredicate(rule, src)
		if fault != "" {
			ev.Faults = append(ev.Faults, RuleFault{RuleID: rule.ID, Reason: fault})
			continue
		}

		for _, m := range matches {
			key := violationKey{rule.ID, m.Span.StartLine, m.Span.StartCol}
			if seen[key] {
				continue
			}
			seen[key] = true

			ev.Violations = append(ev.Violations, Violation{
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Line:     m.Span.StartLine,
				Column:   m.Span.StartCol,
				Message:  rule.ExpandMessage(m),
				Snippet:  src.Snippet(m.Span.StartLine, snippetWidth),
			})
		}
	}

	sort.SliceStable(ev.Violations, func(i, j int) bool {
		a, b := ev.Violations[i], ev.Violations[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.RuleID < b.RuleID
	})

	return ev
}

type violationKey struct {
	ruleID string
	line   int
	column int
}

// runPredicate executes one predicate with panic containment.
func runPredicate(rule rules.Rule, src *structure.Source) (matches []rules.Match, fault string) {
	defer func() {
		if r := recover(); r != nil {
			matches = nil
			fault = fmt.Sprintf("predicate panic: %v", r)
		}
	}()
	return rule.Predicate(src, rule.Params), ""
}

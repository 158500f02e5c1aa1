package evaluate

import (
	"context"
	"reflect"
	"testing"

	"genlens/internal/rules"
	"genlens/internal/structure"
)

func patternSource(t *testing.T, fragment string) *structure.Source {
	t.Helper()
	return structure.Build(context.Background(), fragment, "unknown-lang")
}

func customSet(t *testing.T, doc string) *rules.RuleSet {
	t.Helper()
	set, err := rules.ParseCatalog([]byte(doc), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestRunHardcodedSecret(t *testing.T) {
	src := patternSource(t, `API_KEY = "sk-12345"`)
	ev := Run(src, rules.DefaultRuleSet(), 0)

	var found *Violation
	for i := range ev.Violations {
		if ev.Violations[i].RuleID == "no-hardcoded-secret" {
			found = &ev.Violations[i]
		}
	}
	if found == nil {
		t.Fatalf("no-hardcoded-secret missing from %+v", ev.Violations)
	}
	if found.Line != 1 {
		t.Errorf("line = %d, want 1", found.Line)
	}
	if found.Severity != rules.SeverityError {
		t.Errorf("severity = %s, want error", found.Severity)
	}
	if found.Snippet == "" {
		t.Error("violation has no snippet")
	}
}

func TestRunSkipsTreeRulesOnPatternView(t *testing.T) {
	src := patternSource(t, "x = input()\nrun_query(x)\n")
	ev := Run(src, rules.DefaultRuleSet(), 0)

	for _, v := range ev.Violations {
		if v.RuleID == "sanitize-inputs" || v.RuleID == "no-global-mutable-state" {
			t.Errorf("tree-only rule %s produced a violation on a pattern view", v.RuleID)
		}
	}
	if !ev.Degraded() {
		t.Error("evaluation with skipped rules not marked degraded")
	}

	skipped := map[string]bool{}
	for _, id := range ev.Skipped {
		skipped[id] = true
	}
	for _, id := range []string{"no-global-mutable-state", "sanitize-inputs", "require-error-handling", "max-function-length"} {
		if !skipped[id] {
			t.Errorf("tree-only rule %s not in skipped list %v", id, ev.Skipped)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	src := patternSource(t, "API_KEY = \"sk-12345\"\npassword = 'admin123'\n")
	set := rules.DefaultRuleSet()

	first := Run(src, set, 0)
	second := Run(src, set, 0)
	if !reflect.DeepEqual(first.Violations, second.Violations) {
		t.Errorf("evaluation not idempotent:\nfirst:  %+v\nsecond: %+v", first.Violations, second.Violations)
	}
}

func TestRunOrdering(t *testing.T) {
	// Two custom rules firing on interleaved lines: output must sort by
	// (line, column) then rule id, regardless of catalog order.
	set := customSet(t, `
rules:
  - id: z-rule
    severity: info
    pattern: 'alpha'
  - id: a-rule
    severity: info
    pattern: 'alpha'
  - id: m-rule
    severity: info
    pattern: 'beta'
`)

	src := patternSource(t, "beta\nalpha\n")
	ev := Run(src, set, 0)

	var got []string
	for _, v := range ev.Violations {
		got = append(got, v.RuleID)
	}
	want := []string{"m-rule", "a-rule", "z-rule"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("violation order = %v, want %v", got, want)
	}
}

func TestRunDeduplicates(t *testing.T) {
	// Identical (rule, line, column) triples collapse to one violation.
	set := customSet(t, `
rules:
  - id: dup-prone
    severity: info
    pattern: 'target'
`)
	src := patternSource(t, "target target\n")
	ev := Run(src, set, 0)
	if len(ev.Violations) != 1 {
		t.Errorf("got %d violations, want 1 after dedup", len(ev.Violations))
	}
}

func TestRunContainsPanickingPredicate(t *testing.T) {
	// A predicate that faults is zero matches plus a fault record; other
	// rules still run.
	set := customSet(t, `
rules:
  - id: healthy
    severity: info
    pattern: 'x = 1'
`)

	broken := rules.Rule{
		ID:         "broken",
		Severity:   rules.SeverityError,
		Enabled:    true,
		Capability: rules.CapPattern,
		Message:    "unreachable",
		Predicate: func(src *structure.Source, p rules.Params) []rules.Match {
			panic("unexpected tree shape")
		},
	}
	withBroken := injectRule(t, set, broken)

	src := patternSource(t, "x = 1\n")
	ev := Run(src, withBroken, 0)

	if len(ev.Faults) != 1 || ev.Faults[0].RuleID != "broken" {
		t.Fatalf("faults = %+v, want one for broken", ev.Faults)
	}
	if len(ev.Violations) != 1 || ev.Violations[0].RuleID != "healthy" {
		t.Errorf("violations = %+v, want healthy's match to survive", ev.Violations)
	}
	if !ev.Degraded() {
		t.Error("faulted evaluation not marked degraded")
	}
}

// injectRule rebuilds a set with one extra rule appended.
func injectRule(t *testing.T, set *rules.RuleSet, extra rules.Rule) *rules.RuleSet {
	t.Helper()
	combined := append(append([]rules.Rule(nil), set.Rules()...), extra)
	out, err := rules.NewRuleSet("test", combined...)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSummarize(t *testing.T) {
	violations := []Violation{
		{RuleID: "a", Severity: rules.SeverityError},
		{RuleID: "a", Severity: rules.SeverityError},
		{RuleID: "b", Severity: rules.SeverityWarning},
	}
	s := Summarize(violations)
	if s.Total != 3 {
		t.Errorf("total = %d, want 3", s.Total)
	}
	if s.ByRule["a"] != 2 {
		t.Errorf("by_rule[a] = %d, want 2", s.ByRule["a"])
	}
	if s.Status != StatusNonCompliant {
		t.Errorf("status = %s, want non_compliant", s.Status)
	}

	if got := Summarize(nil).Status; got != StatusCompliant {
		t.Errorf("empty summary status = %s, want compliant", got)
	}
	warnOnly := Summarize([]Violation{{RuleID: "b", Severity: rules.SeverityWarning}})
	if warnOnly.Status != StatusWarnings {
		t.Errorf("warning-only status = %s, want warnings", warnOnly.Status)
	}
}

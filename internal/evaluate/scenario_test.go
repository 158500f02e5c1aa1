//go:build cgo

package evaluate

import (
	"context"
	"testing"

	"genlens/internal/rules"
	"genlens/internal/structure"
)

func TestRawQueryWithUnsanitizedInput(t *testing.T) {
	fragment := `x = input(); run_query("SELECT * FROM t WHERE id=" + x)` + "\n"
	src := structure.Build(context.Background(), fragment, "python")
	if src.Mode() != structure.ModeParsed {
		t.Fatalf("fragment did not parse: %s", src.Reason())
	}

	ev := Run(src, rules.DefaultRuleSet(), 0)

	byRule := map[string]Violation{}
	for _, v := range ev.Violations {
		byRule[v.RuleID] = v
	}

	raw, ok := byRule["disallow-raw-query"]
	if !ok {
		t.Fatalf("disallow-raw-query missing from %+v", ev.Violations)
	}
	if raw.Line != 1 || raw.Severity != rules.SeverityError {
		t.Errorf("disallow-raw-query at line %d severity %s, want line 1 error", raw.Line, raw.Severity)
	}

	san, ok := byRule["sanitize-inputs"]
	if !ok {
		t.Fatalf("sanitize-inputs missing from %+v", ev.Violations)
	}
	if san.Line != 1 || san.Severity != rules.SeverityError {
		t.Errorf("sanitize-inputs at line %d severity %s, want line 1 error", san.Line, san.Severity)
	}
}

func TestParsedModeRunsEverything(t *testing.T) {
	src := structure.Build(context.Background(), "def f() -> int:\n    return 1\n", "python")
	if src.Mode() != structure.ModeParsed {
		t.Fatalf("fragment did not parse: %s", src.Reason())
	}

	ev := Run(src, rules.DefaultRuleSet(), 0)
	if len(ev.Skipped) != 0 {
		t.Errorf("parsed source skipped rules: %v", ev.Skipped)
	}
	if ev.Degraded() {
		t.Error("clean parsed evaluation marked degraded")
	}
	if len(ev.Violations) != 0 {
		t.Errorf("clean fragment produced violations: %+v", ev.Violations)
	}
}

package analyze

import (
	"context"
	"testing"

	"genlens/internal/rules"
	"genlens/internal/scoring"
	"genlens/internal/structure"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := rules.NewRegistry(rules.DefaultRuleSet())
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(reg, Options{EntropyThreshold: 0.5}, nil)
}

func TestAnalyzeMergesScoresAndViolations(t *testing.T) {
	e := newTestEngine(t)

	res := e.Analyze(context.Background(), Request{
		Fragment: `API_KEY = "sk-12345"`,
		Language: "unknown-lang",
		Candidates: [][]scoring.TokenCandidate{
			{{Text: "a", Probability: 0.5}, {Text: "b", Probability: 0.3}, {Text: "c", Probability: 0.2}},
		},
	})

	if res.ID == "" {
		t.Error("result has no id")
	}
	if len(res.DecisionPoints) != 1 {
		t.Errorf("got %d decision points, want 1", len(res.DecisionPoints))
	}

	var hasSecret bool
	for _, v := range res.Violations {
		if v.RuleID == "no-hardcoded-secret" && v.Line == 1 {
			hasSecret = true
		}
	}
	if !hasSecret {
		t.Errorf("no-hardcoded-secret missing from %+v", res.Violations)
	}
	if res.Summary.Status != "non_compliant" {
		t.Errorf("summary status = %s, want non_compliant", res.Summary.Status)
	}
}

func TestAnalyzePatternFallbackIsPartial(t *testing.T) {
	e := newTestEngine(t)
	res := e.Analyze(context.Background(), Request{Fragment: "x = 1", Language: "cobol"})

	if res.StructuralMode != structure.ModePattern {
		t.Errorf("mode = %s, want pattern", res.StructuralMode)
	}
	if !res.Partial {
		t.Error("pattern fallback not marked partial")
	}
	if res.FallbackReason == "" {
		t.Error("no fallback reason recorded")
	}
}

func TestAnalyzeNoCandidatesNoDecisionPoints(t *testing.T) {
	e := newTestEngine(t)
	res := e.Analyze(context.Background(), Request{Fragment: "x = 1", Language: "cobol"})

	if res.DecisionPoints == nil || len(res.DecisionPoints) != 0 {
		t.Errorf("decision points = %+v, want empty non-nil", res.DecisionPoints)
	}
}

func TestAnalyzeBadCandidatePositionIsPartial(t *testing.T) {
	e := newTestEngine(t)
	res := e.Analyze(context.Background(), Request{
		Fragment: "x = 1",
		Language: "cobol",
		Candidates: [][]scoring.TokenCandidate{
			{{Text: "a", Probability: 0.5}, {Text: "b", Probability: 0}},
		},
	})

	if res.FailedPositions != 1 {
		t.Errorf("failed positions = %d, want 1", res.FailedPositions)
	}
	if !res.Partial {
		t.Error("failed scoring position not marked partial")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	e := newTestEngine(t)
	req := Request{
		Fragment: "API_KEY = \"sk-12345\"\npassword = 'admin123'\n",
		Language: "cobol",
	}

	first := e.Analyze(context.Background(), req)
	second := e.Analyze(context.Background(), req)

	if len(first.Violations) != len(second.Violations) {
		t.Fatalf("violation counts differ: %d vs %d", len(first.Violations), len(second.Violations))
	}
	for i := range first.Violations {
		if first.Violations[i] != second.Violations[i] {
			t.Errorf("violation %d differs: %+v vs %+v", i, first.Violations[i], second.Violations[i])
		}
	}
}

func TestAnalyzeSeesOneRuleSetVersion(t *testing.T) {
	set, err := rules.ParseCatalog([]byte(`
rules:
  - id: no-hardcoded-secret
    severity: error
`), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	reg, err := rules.NewRegistry(set)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(reg, Options{}, nil)

	res := e.Analyze(context.Background(), Request{Fragment: "x = 1", Language: "cobol"})
	if res.RuleSetVersion != set.Version() {
		t.Errorf("rule set version = %q, want %q", res.RuleSetVersion, set.Version())
	}
}

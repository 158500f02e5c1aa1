package rules

import (
	"context"
	"testing"

	"genlens/internal/structure"
)

// Pattern predicates run on the lexical view, so these tests use an
// unsupported language id to force pattern mode regardless of build flags.
func patternSource(t *testing.T, fragment string) *structure.Source {
	t.Helper()
	src := structure.Build(context.Background(), fragment, "unknown-lang")
	if src.Mode() != structure.ModePattern {
		t.Fatalf("expected pattern mode, got %s", src.Mode())
	}
	return src
}

func TestMatchHardcodedSecret(t *testing.T) {
	cases := []struct {
		name     string
		fragment string
		want     int
		line     int
	}{
		{"api key", `API_KEY = "sk-12345"`, 1, 1},
		{"api key no spaces", `API_KEY="sk-12345"`, 1, 1},
		{"password", `password = 'admin123'`, 1, 1},
		{"tight comparison", `if password=="x":`, 0, 0},
		{"annotated", `db_token: str = "abc123xyz"`, 1, 1},
		{"second line", "x = 1\nSECRET = \"hunter2!\"", 1, 2},
		{"comparison not assignment", `if password == "x":`, 0, 0},
		{"no literal", `api_key = os.environ["KEY"]`, 0, 0},
		{"unrelated ident", `count = "three"`, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches := matchHardcodedSecret(patternSource(t, tc.fragment), nil)
			if len(matches) != tc.want {
				t.Fatalf("got %d matches %+v, want %d", len(matches), matches, tc.want)
			}
			if tc.want > 0 && matches[0].Span.StartLine != tc.line {
				t.Errorf("match line = %d, want %d", matches[0].Span.StartLine, tc.line)
			}
		})
	}
}

func TestMatchRawQuery(t *testing.T) {
	cases := []struct {
		name     string
		fragment string
		want     int
	}{
		{"concatenated select", `run_query("SELECT * FROM t WHERE id=" + x)`, 1},
		{"formatted insert", `cursor.execute("INSERT INTO users VALUES (%s)" % name)`, 1},
		{"parameterized", `run_query("SELECT * FROM t WHERE id = ?", x)`, 0},
		{"static text", `run_query("SELECT id FROM sessions")`, 0},
		{"not a sink", `log("SELECT * FROM t WHERE id=" + x)`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			matches := matchRawQuery(patternSource(t, tc.fragment), nil)
			if len(matches) != tc.want {
				t.Errorf("got %d matches %+v, want %d", len(matches), matches, tc.want)
			}
		})
	}
}

func TestPatternRulePredicate(t *testing.T) {
	set, err := ParseCatalog([]byte(`
rules:
  - id: no-eval
    severity: error
    pattern: 'eval\s*\('
`), "yaml")
	if err != nil {
		t.Fatal(err)
	}

	rule, _ := set.Get("no-eval")
	src := patternSource(t, "x = 1\nresult = eval(expr)\n")
	matches := rule.Predicate(src, rule.Params)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Span.StartLine != 2 {
		t.Errorf("match line = %d, want 2", matches[0].Span.StartLine)
	}
}

func TestExpandMessage(t *testing.T) {
	r := &Rule{Message: "credential assigned to {detail}"}
	got := r.ExpandMessage(Match{Detail: "API_KEY"})
	if got != "credential assigned to API_KEY" {
		t.Errorf("ExpandMessage = %q", got)
	}

	static := &Rule{Message: "no placeholders here"}
	if static.ExpandMessage(Match{Detail: "x"}) != "no placeholders here" {
		t.Error("static message altered")
	}
}

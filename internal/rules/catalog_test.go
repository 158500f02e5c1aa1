package rules

import (
	"errors"
	"testing"
)

func TestParseCatalogYAML(t *testing.T) {
	doc := []byte(`
rules:
  - id: no-hardcoded-secret
    severity: error
  - id: max-function-length
    severity: warning
    params:
      max_lines: 30
  - id: custom-no-eval
    severity: error
    pattern: 'eval\s*\('
    message: eval can execute arbitrary code
`)

	set, err := ParseCatalog(doc, "yaml")
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("got %d rules, want 3", set.Len())
	}

	r, ok := set.Get("max-function-length")
	if !ok {
		t.Fatal("max-function-length missing")
	}
	if r.Params.Int("max_lines", 50) != 30 {
		t.Errorf("max_lines param = %d, want 30", r.Params.Int("max_lines", 50))
	}
	if r.Message == "" {
		t.Error("built-in default message not inherited")
	}

	custom, ok := set.Get("custom-no-eval")
	if !ok {
		t.Fatal("custom-no-eval missing")
	}
	if custom.Capability != CapPattern {
		t.Errorf("custom rule capability = %q, want pattern", custom.Capability)
	}
}

func TestParseCatalogJSON(t *testing.T) {
	doc := []byte(`{"rules": [{"id": "no-hardcoded-secret", "severity": "error"}]}`)
	set, err := ParseCatalog(doc, "json")
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("got %d rules, want 1", set.Len())
	}
}

func TestParseCatalogTOML(t *testing.T) {
	doc := []byte(`
[[rules]]
id = "disallow-raw-query"
severity = "error"

[[rules]]
id = "no-print"
severity = "info"
pattern = 'print\('
message = "replace print with logging"
`)
	set, err := ParseCatalog(doc, "toml")
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("got %d rules, want 2", set.Len())
	}
}

func TestParseCatalogDuplicateID(t *testing.T) {
	doc := []byte(`
rules:
  - id: no_global_vars
    severity: warning
    pattern: 'global '
  - id: no_global_vars
    severity: error
    pattern: 'global '
`)
	_, err := ParseCatalog(doc, "yaml")
	if !errors.Is(err, ErrDuplicateRule) {
		t.Errorf("err = %v, want ErrDuplicateRule", err)
	}
}

func TestParseCatalogUnknownSeverity(t *testing.T) {
	doc := []byte("rules:\n  - id: no-hardcoded-secret\n    severity: fatal\n")
	_, err := ParseCatalog(doc, "yaml")
	if !errors.Is(err, ErrUnknownSeverity) {
		t.Errorf("err = %v, want ErrUnknownSeverity", err)
	}
}

func TestParseCatalogEmpty(t *testing.T) {
	_, err := ParseCatalog([]byte("rules: []\n"), "yaml")
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("err = %v, want ErrEmptyCatalog", err)
	}
}

func TestParseCatalogUnknownRuleID(t *testing.T) {
	doc := []byte("rules:\n  - id: not-a-real-rule\n    severity: info\n")
	_, err := ParseCatalog(doc, "yaml")
	if !errors.Is(err, ErrUnknownRule) {
		t.Errorf("err = %v, want ErrUnknownRule", err)
	}
}

func TestParseCatalogBadPattern(t *testing.T) {
	doc := []byte("rules:\n  - id: broken\n    severity: info\n    pattern: '['\n")
	if _, err := ParseCatalog(doc, "yaml"); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestDefaultRuleSet(t *testing.T) {
	set := DefaultRuleSet()
	if set.Len() != 7 {
		t.Fatalf("got %d built-in rules, want 7", set.Len())
	}
	for _, r := range set.Rules() {
		if !r.Enabled {
			t.Errorf("built-in rule %s disabled by default", r.ID)
		}
		if r.Predicate == nil {
			t.Errorf("built-in rule %s has no predicate", r.ID)
		}
	}

	secret, _ := set.Get("no-hardcoded-secret")
	if secret.Severity != SeverityError {
		t.Errorf("no-hardcoded-secret severity = %s, want error", secret.Severity)
	}
	if secret.Capability != CapPattern {
		t.Errorf("no-hardcoded-secret capability = %s, want pattern", secret.Capability)
	}
}

func TestDisabledRuleExcludedFromEnabled(t *testing.T) {
	off := false
	set, err := buildRuleSet(Catalog{Rules: []CatalogRule{
		{ID: "no-hardcoded-secret", Severity: "error"},
		{ID: "disallow-raw-query", Severity: "error", Enabled: &off},
	}}, "test")
	if err != nil {
		t.Fatalf("buildRuleSet: %v", err)
	}
	enabled := set.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "no-hardcoded-secret" {
		t.Errorf("Enabled() = %+v, want only no-hardcoded-secret", enabled)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := fingerprint([]byte("rules: []"))
	b := fingerprint([]byte("rules: []"))
	c := fingerprint([]byte("rules: [x]"))
	if a != b {
		t.Error("fingerprint not deterministic")
	}
	if a == c {
		t.Error("fingerprint collision on different content")
	}
}

package rules

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk rule configuration document. Rules are a list, not a
// map, so that document order is preserved and duplicate ids are detectable.
type Catalog struct {
	Rules []CatalogRule `json:"rules" yaml:"rules" toml:"rules"`
}

// CatalogRule configures one rule. A rule either references a built-in
// predicate by id or supplies a regex pattern for a custom pattern rule.
type CatalogRule struct {
	ID          string         `json:"id" yaml:"id" toml:"id"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Severity    string         `json:"severity" yaml:"severity" toml:"severity"`
	Enabled     *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Message     string         `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
	Pattern     string         `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Params      map[string]any `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// LoadCatalog reads and validates a catalog file, building the rule set it
// describes. The format is chosen by extension: .yaml/.yml, .json, or .toml.
// Validation is all-or-nothing; an invalid document builds no rule set.
func LoadCatalog(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	set, err := ParseCatalog(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return set, nil
}

// ParseCatalog decodes catalog bytes in the given format ("yaml", "json",
// "toml") and builds the rule set.
func ParseCatalog(data []byte, format string) (*RuleSet, error) {
	var cat Catalog

	switch format {
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %q", format)
	}

	return buildRuleSet(cat, fingerprint(data))
}

// DefaultRuleSet returns the built-in rules with their default configuration,
// used when no catalog file is configured.
func DefaultRuleSet() *RuleSet {
	set, err := buildRuleSet(defaultCatalog(), "builtin")
	if err != nil {
		// The built-in catalog is static; a failure here is a programming
		// error, not a runtime condition.
		panic(fmt.Sprintf("built-in catalog invalid: %v", err))
	}
	return set
}

func buildRuleSet(cat Catalog, version string) (*RuleSet, error) {
	if len(cat.Rules) == 0 {
		return nil, ErrEmptyCatalog
	}

	set := &RuleSet{
		byID:    make(map[string]*Rule, len(cat.Rules)),
		version: version,
	}

	for _, cr := range cat.Rules {
		if cr.ID == "" {
			return nil, fmt.Errorf("rule with empty id")
		}
		if _, dup := set.byID[cr.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, cr.ID)
		}

		sev, err := ParseSeverity(cr.Severity)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", cr.ID, err)
		}

		rule := Rule{
			ID:          cr.ID,
			Description: cr.Description,
			Severity:    sev,
			Enabled:     cr.Enabled == nil || *cr.Enabled,
			Message:     cr.Message,
			Params:      Params(cr.Params),
		}

		switch {
		case cr.Pattern != "":
			re, err := regexp.Compile(cr.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: compile pattern: %w", cr.ID, err)
			}
			rule.Capability = CapPattern
			rule.Predicate = patternRulePredicate(re)

		default:
			b, ok := builtins[cr.ID]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownRule, cr.ID)
			}
			rule.Capability = b.capability
			rule.Predicate = b.predicate
			if rule.Description == "" {
				rule.Description = b.description
			}
			if rule.Message == "" {
				rule.Message = b.message
			}
		}

		set.rules = append(set.rules, rule)
		set.byID[cr.ID] = &set.rules[len(set.rules)-1]
	}

	// Appends above may have reallocated; rebuild the index against the
	// final backing array.
	for i := range set.rules {
		set.byID[set.rules[i].ID] = &set.rules[i]
	}

	return set, nil
}

// fingerprint derives a short content hash identifying a catalog revision.
func fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

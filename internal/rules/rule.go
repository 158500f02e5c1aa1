// Package rules holds the configurable constraint rule catalog: built-in
// structural predicates, user-defined pattern rules, catalog loading with
// fail-fast validation, and an atomically reloadable process-wide registry.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"genlens/internal/structure"
)

// Load-time validation failures. A catalog that trips any of these is
// rejected wholesale; a previously active rule set stays in effect.
var (
	ErrDuplicateRule   = errors.New("duplicate rule id")
	ErrUnknownSeverity = errors.New("unknown severity")
	ErrEmptyCatalog    = errors.New("catalog contains no rules")
	ErrUnknownRule     = errors.New("no built-in predicate and no pattern for rule")
)

// Capability names the structural variant a predicate needs.
type Capability string

const (
	// CapTree predicates walk the parsed structural tree. They are skipped,
	// not failed, when only the pattern view is available.
	CapTree Capability = "tree"
	// CapPattern predicates run on the line/token pattern view, which both
	// structural variants expose.
	CapPattern Capability = "pattern"
)

// Match is one location where a rule predicate fired.
type Match struct {
	Span structure.Span
	// Detail optionally names what matched (an identifier, a call) for
	// message template expansion.
	Detail string
}

// Predicate inspects a structural representation and returns every location
// that violates the rule. Predicates must be pure and safe for concurrent use;
// a predicate that panics is contained by the evaluator and counted as zero
// matches.
type Predicate func(src *structure.Source, params Params) []Match

// Params carries optional per-rule tuning values from the catalog.
type Params map[string]any

// Int returns an integer param, tolerating the numeric types the various
// catalog decoders produce.
func (p Params) Int(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Strings returns a string-list param.
func (p Params) Strings(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Rule is one configured constraint. Rules are read-only during request
// handling; replacing the active set goes through the Registry.
type Rule struct {
	ID          string
	Description string
	Severity    Severity
	Enabled     bool
	Capability  Capability
	Message     string
	Params      Params
	Predicate   Predicate
}

// ExpandMessage fills the rule's message template for one match. The only
// placeholder is {detail}, replaced by the match's Detail.
func (r *Rule) ExpandMessage(m Match) string {
	if !strings.Contains(r.Message, "{detail}") {
		return r.Message
	}
	return strings.ReplaceAll(r.Message, "{detail}", m.Detail)
}

// RuleSet is an ordered, immutable collection of rules. Order follows the
// catalog document and fixes evaluation order, not precedence: every enabled
// rule always runs.
type RuleSet struct {
	rules   []Rule
	byID    map[string]*Rule
	version string
}

// Version is a content fingerprint of the catalog this set was built from.
func (s *RuleSet) Version() string { return s.version }

// Len returns the number of rules, enabled or not.
func (s *RuleSet) Len() int { return len(s.rules) }

// Rules returns all rules in catalog order.
func (s *RuleSet) Rules() []Rule { return s.rules }

// Enabled returns the enabled rules in catalog order.
func (s *RuleSet) Enabled() []Rule {
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// Get looks a rule up by id.
func (s *RuleSet) Get(id string) (*Rule, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// WithDisabled returns a copy of the set with the given rule ids disabled.
// Unknown ids are ignored; projects may disable rules their catalog does
// not carry. The receiver is left untouched.
func (s *RuleSet) WithDisabled(ids ...string) *RuleSet {
	if len(ids) == 0 {
		return s
	}
	off := make(map[string]bool, len(ids))
	for _, id := range ids {
		off[id] = true
	}

	out := &RuleSet{
		rules:   append([]Rule(nil), s.rules...),
		byID:    make(map[string]*Rule, len(s.rules)),
		version: s.version,
	}
	for i := range out.rules {
		if off[out.rules[i].ID] {
			out.rules[i].Enabled = false
		}
		out.byID[out.rules[i].ID] = &out.rules[i]
	}
	return out
}

// NewRuleSet builds a rule set from already-constructed rules, for callers
// that assemble rules programmatically rather than from a catalog document.
// The same validation applies: at least one rule, unique ids.
func NewRuleSet(version string, rs ...Rule) (*RuleSet, error) {
	if len(rs) == 0 {
		return nil, ErrEmptyCatalog
	}

	set := &RuleSet{
		rules:   append([]Rule(nil), rs...),
		byID:    make(map[string]*Rule, len(rs)),
		version: version,
	}
	for i := range set.rules {
		id := set.rules[i].ID
		if _, dup := set.byID[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRule, id)
		}
		set.byID[id] = &set.rules[i]
	}
	return set, nil
}

package rules

// builtin describes one built-in predicate and its default metadata. Catalog
// entries referencing the id inherit whatever they do not override.
type builtin struct {
	capability  Capability
	description string
	message     string
	severity    Severity
	predicate   Predicate
}

var builtins = map[string]builtin{
	"no-global-mutable-state": {
		capability:  CapTree,
		description: "Prevent module-level mutable state",
		message:     "Global mutable state can cause hidden side effects and makes code harder to test and maintain.",
		severity:    SeverityWarning,
		predicate:   matchGlobalMutableState,
	},
	"sanitize-inputs": {
		capability:  CapTree,
		description: "Ensure external inputs are sanitized before reaching a sink",
		message:     "External input reaches {detail} without sanitization; validate or escape it first to prevent injection attacks.",
		severity:    SeverityError,
		predicate:   matchSanitizeInputs,
	},
	"disallow-raw-query": {
		capability:  CapPattern,
		description: "Disallow string-built query text in query-execution calls",
		message:     "Query text built by concatenation or formatting; use parameterized queries instead.",
		severity:    SeverityError,
		predicate:   matchRawQuery,
	},
	"no-hardcoded-secret": {
		capability:  CapPattern,
		description: "Disallow hardcoded credentials",
		message:     "Hardcoded credential assigned to {detail}; load secrets from the environment or a secret store.",
		severity:    SeverityError,
		predicate:   matchHardcodedSecret,
	},
	"require-error-handling": {
		capability:  CapTree,
		description: "Require error handling around fallible operations",
		message:     "Call to fallible operation {detail} without an enclosing error-handling construct.",
		severity:    SeverityWarning,
		predicate:   matchRequireErrorHandling,
	},
	"max-function-length": {
		capability:  CapTree,
		description: "Limit function body length",
		message:     "Function {detail} exceeds the configured length limit; consider splitting it.",
		severity:    SeverityWarning,
		predicate:   matchMaxFunctionLength,
	},
	"require-type-hints": {
		capability:  CapTree,
		description: "Require type annotations on function signatures",
		message:     "{detail}; annotate the signature so callers and tools can check it.",
		severity:    SeverityInfo,
		predicate:   matchRequireTypeHints,
	},
}

// defaultCatalog enables every built-in rule with its default severity.
func defaultCatalog() Catalog {
	order := []string{
		"no-global-mutable-state",
		"sanitize-inputs",
		"disallow-raw-query",
		"no-hardcoded-secret",
		"require-error-handling",
		"max-function-length",
		"require-type-hints",
	}

	cat := Catalog{}
	for _, id := range order {
		b := builtins[id]
		cat.Rules = append(cat.Rules, CatalogRule{
			ID:          id,
			Description: b.description,
			Severity:    string(b.severity),
			Message:     b.message,
		})
	}
	return cat
}

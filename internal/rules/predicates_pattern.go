package rules

import (
	"regexp"
	"strings"

	"genlens/internal/structure"
)

// Pattern predicates run on the lexical line/token view, so they work in both
// structural modes. They trade precision for resilience: generated code that
// does not parse still gets this coverage. Pattern shapes follow well-known
// secret and injection signatures.

// secretAssignRe matches a string literal assigned to a credential-like
// identifier. '==' comparisons never match: the second '=' sits where the
// opening quote is required.
var secretAssignRe = regexp.MustCompile(
	`(?i)\b([A-Za-z0-9_]*(?:key|secret|token|password|passwd|pwd))\b\s*(?::\s*[A-Za-z_\[\]]+\s*)?=\s*["'][^"']+["']`)

// sqlTextRe recognizes query-looking string content.
var sqlTextRe = regexp.MustCompile(`(?i)\b(SELECT\s+.+\s+FROM|INSERT\s+INTO|UPDATE\s+\S+\s+SET|DELETE\s+FROM|DROP\s+TABLE|CREATE\s+TABLE)\b`)

// querySinkNames are call names that execute query text.
var querySinkNames = map[string]bool{
	"execute":       true,
	"execute_query": true,
	"executequery":  true,
	"run_query":     true,
	"runquery":      true,
	"query":         true,
	"rawquery":      true,
	"raw_query":     true,
	"exec":          true,
}

// matchHardcodedSecret flags string-literal assignments to identifiers whose
// name looks credential-like (key/secret/token/password).
func matchHardcodedSecret(src *structure.Source, _ Params) []Match {
	var matches []Match
	for _, line := range src.Lines() {
		loc := secretAssignRe.FindStringSubmatchIndex(line.Text)
		if loc == nil {
			continue
		}
		matches = append(matches, Match{
			Span: structure.Span{
				StartLine: line.Number,
				StartCol:  loc[2],
				EndLine:   line.Number,
				EndCol:    loc[1],
			},
			Detail: line.Text[loc[2]:loc[3]],
		})
	}
	return matches
}

// matchRawQuery flags query text built by string concatenation or formatting
// and handed to a query-execution call on the same line.
func matchRawQuery(src *structure.Source, _ Params) []Match {
	var matches []Match
	for _, line := range src.Lines() {
		tokens := line.Tokens

		for i, tok := range tokens {
			if tok.Kind != "ident" || !querySinkNames[strings.ToLower(tok.Text)] {
				continue
			}
			if i+1 >= len(tokens) || tokens[i+1].Text != "(" {
				continue
			}

			// Inspect the argument region: a SQL-looking string literal plus
			// evidence of dynamic construction (concatenation or formatting).
			var hasSQL, hasDynamic bool
			for _, arg := range tokens[i+2:] {
				switch {
				case arg.Kind == "string" && sqlTextRe.MatchString(arg.Text):
					hasSQL = true
				case arg.Kind == "punct" && (arg.Text == "+" || arg.Text == "%"):
					hasDynamic = true
				case arg.Kind == "ident" && (arg.Text == "format" || arg.Text == "f"):
					hasDynamic = true
				}
			}

			if hasSQL && hasDynamic {
				matches = append(matches, Match{
					Span: structure.Span{
						StartLine: line.Number,
						StartCol:  tok.Column,
						EndLine:   line.Number,
						EndCol:    tok.Column + len(tok.Text),
					},
					Detail: tok.Text,
				})
				break // one finding per line is enough
			}
		}
	}
	return matches
}

// patternRulePredicate adapts a user-supplied regex from the catalog into a
// predicate over the pattern view. Each line yields at most one match.
func patternRulePredicate(re *regexp.Regexp) Predicate {
	return func(src *structure.Source, _ Params) []Match {
		var matches []Match
		for _, line := range src.Lines() {
			loc := re.FindStringIndex(line.Text)
			if loc == nil {
				continue
			}
			matches = append(matches, Match{
				Span: structure.Span{
					StartLine: line.Number,
					StartCol:  loc[0],
					EndLine:   line.Number,
					EndCol:    loc[1],
				},
				Detail: line.Text[loc[0]:loc[1]],
			})
		}
		return matches
	}
}

package structure

import (
	"context"
	"strings"
	"unicode"
)

// Source is the structural representation of one code fragment. Both variants
// expose the pattern view; only a parsed Source exposes tree nodes. A Source
// is immutable after Build and safe for concurrent reads.
type Source struct {
	fragment string
	lang     Language
	mode     Mode
	lines    []Line
	tree     *tree
	reason   string
}

// Build constructs the structural representation for a fragment. It attempts
// a real parse for declared languages with a known grammar and falls back to
// the pattern view on any parse failure. Build never fails for input-data
// reasons; the returned Source reports which variant was built.
func Build(ctx context.Context, fragment, languageID string) *Source {
	src := &Source{
		fragment: fragment,
		mode:     ModePattern,
		lines:    lexLines(fragment),
	}

	lang, ok := LanguageFromID(languageID)
	if !ok {
		src.reason = "unsupported language: " + languageID
		return src
	}
	src.lang = lang

	t, err := parseTree(ctx, []byte(fragment), lang)
	if err != nil {
		src.reason = err.Error()
		return src
	}

	src.tree = t
	src.mode = ModeParsed
	return src
}

// Mode reports which structural variant was built.
func (s *Source) Mode() Mode { return s.mode }

// Language returns the recognized language, or "" when the declared
// identifier had no known grammar.
func (s *Source) Language() Language { return s.lang }

// Fragment returns the original fragment text.
func (s *Source) Fragment() string { return s.fragment }

// Lines returns the pattern view. Available in both modes.
func (s *Source) Lines() []Line { return s.lines }

// Reason explains why only the pattern view is available.
// Empty for parsed sources.
func (s *Source) Reason() string { return s.reason }

// Root returns the structural tree root. ok is false in pattern mode.
func (s *Source) Root() (Node, bool) {
	if s.tree == nil {
		return Node{}, false
	}
	return s.tree.root(), true
}

// FindNodes returns every tree node whose kind is in kinds, in document
// order. Returns nil in pattern mode.
func (s *Source) FindNodes(kinds ...string) []Node {
	root, ok := s.Root()
	if !ok {
		return nil
	}

	var found []Node
	var walk func(Node)
	walk = func(n Node) {
		for _, k := range kinds {
			if n.Kind() == k {
				found = append(found, n)
				break
			}
		}
		for i := 0; i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return found
}

// LineText returns the text of a 1-based line, or "" when out of range.
func (s *Source) LineText(line int) string {
	if line < 1 || line > len(s.lines) {
		return ""
	}
	return s.lines[line-1].Text
}

// Snippet extracts a bounded-length excerpt of the given line for violation
// reports. Leading whitespace is stripped; text beyond width runes is
// truncated with an ellipsis.
func (s *Source) Snippet(line, width int) string {
	text := strings.TrimSpace(s.LineText(line))
	if width <= 0 || len([]rune(text)) <= width {
		return text
	}
	runes := []rune(text)
	return string(runes[:width]) + "..."
}

// lexLines splits the fragment into lines and tokenizes each one into a
// coarse lexical stream: identifiers, numbers, string literals, and
// punctuation runs. This is the parse-free approximation backing regex-class
// rule predicates.
func lexLines(fragment string) []Line {
	raw := strings.Split(fragment, "\n")
	lines := make([]Line, len(raw))
	for i, text := range raw {
		lines[i] = Line{
			Number: i + 1,
			Text:   text,
			Tokens: lexLine(text),
		}
	}
	return lines
}

func lexLine(text string) []LexToken {
	var tokens []LexToken
	runes := []rune(text)

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '"' || r == '\'' || r == '`':
			quote := r
			start := i
			i++
			for i < len(runes) {
				if runes[i] == '\\' && i+1 < len(runes) {
					i += 2
					continue
				}
				if runes[i] == quote {
					i++
					break
				}
				i++
			}
			tokens = append(tokens, LexToken{
				Text:   string(runes[start:i]),
				Column: start,
				Kind:   "string",
			})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, LexToken{
				Text:   string(runes[start:i]),
				Column: start,
				Kind:   "ident",
			})

		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.' || runes[i] == 'x' ||
				('a' <= runes[i] && runes[i] <= 'f') || ('A' <= runes[i] && runes[i] <= 'F')) {
				i++
			}
			tokens = append(tokens, LexToken{
				Text:   string(runes[start:i]),
				Column: start,
				Kind:   "number",
			})

		default:
			tokens = append(tokens, LexToken{
				Text:   string(r),
				Column: i,
				Kind:   "punct",
			})
			i++
		}
	}

	return tokens
}

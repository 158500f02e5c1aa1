// Package structure turns a code fragment into a structural representation:
// a parsed tree when the declared language has a known grammar, or a degraded
// line/token pattern view when parsing fails or the language is unsupported.
// Generated code is frequently incomplete, so the fallback is the normal path,
// not an error.
package structure

import "strings"

// Language identifies a programming language with a known grammar.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// Mode indicates which structural representation was built.
type Mode string

const (
	// ModeParsed means the fragment parsed into a structural tree.
	ModeParsed Mode = "parsed"
	// ModePattern means only the lexical pattern view is available.
	ModePattern Mode = "pattern"
)

// Span locates a region of the fragment. Lines are 1-based, columns 0-based.
type Span struct {
	StartLine int `json:"startLine"`
	StartCol  int `json:"startCol"`
	EndLine   int `json:"endLine"`
	EndCol    int `json:"endCol"`
}

// LexToken is one lexical token within a line of the pattern view.
type LexToken struct {
	// Text is the token as it appears in the source.
	Text string `json:"text"`
	// Column is the zero-based column of the token's first character.
	Column int `json:"column"`
	// Kind is a coarse lexical class: "ident", "number", "string", "punct".
	Kind string `json:"kind"`
}

// Line is one source line of the pattern view with its lexical tokens.
type Line struct {
	Number int        `json:"number"` // 1-based
	Text   string     `json:"text"`
	Tokens []LexToken `json:"tokens"`
}

// LanguageFromID maps a caller-declared language identifier to a Language.
// Identifiers are matched case-insensitively and accept common aliases.
func LanguageFromID(id string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "go", "golang":
		return LangGo, true
	case "javascript", "js", "jsx":
		return LangJavaScript, true
	case "typescript", "ts":
		return LangTypeScript, true
	case "tsx":
		return LangTSX, true
	case "python", "py", "python3":
		return LangPython, true
	case "rust", "rs":
		return LangRust, true
	case "java":
		return LangJava, true
	case "kotlin", "kt":
		return LangKotlin, true
	default:
		return "", false
	}
}

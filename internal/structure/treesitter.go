//go:build cgo

package structure

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// tree wraps a parsed tree-sitter tree together with the source bytes the
// node spans index into.
type tree struct {
	sitterTree *sitter.Tree
	src        []byte
}

// parseTree parses the fragment with the grammar for lang. It returns an
// error for syntax errors as well as parser failures; callers treat any error
// as "fall back to the pattern view".
func parseTree(ctx context.Context, src []byte, lang Language) (*tree, error) {
	tsLang, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)
	parsed, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	root := parsed.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse produced no tree")
	}
	if root.HasError() {
		return nil, fmt.Errorf("syntax error in %s fragment", lang)
	}

	return &tree{sitterTree: parsed, src: src}, nil
}

func (t *tree) root() Node {
	return Node{inner: t.sitterTree.RootNode(), src: t.src}
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("no grammar for language: %s", lang)
	}
}

// Node is one node of the structural tree. The zero Node is invalid; check
// IsValid before use when a Node may come from a lookup that can miss.
type Node struct {
	inner *sitter.Node
	src   []byte
}

// IsValid reports whether the node refers to an actual tree node.
func (n Node) IsValid() bool { return n.inner != nil }

// Kind returns the grammar's node type name, e.g. "call" or "assignment".
func (n Node) Kind() string {
	if n.inner == nil {
		return ""
	}
	return n.inner.Type()
}

// Text returns the source text the node spans.
func (n Node) Text() string {
	if n.inner == nil {
		return ""
	}
	return string(n.src[n.inner.StartByte():n.inner.EndByte()])
}

// Span returns the node's location (1-based lines, 0-based columns).
func (n Node) Span() Span {
	if n.inner == nil {
		return Span{}
	}
	start := n.inner.StartPoint()
	end := n.inner.EndPoint()
	return Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}

// ChildCount returns the number of children, named and anonymous.
func (n Node) ChildCount() int {
	if n.inner == nil {
		return 0
	}
	return int(n.inner.ChildCount())
}

// Child returns the i-th child.
func (n Node) Child(i int) Node {
	if n.inner == nil {
		return Node{}
	}
	return Node{inner: n.inner.Child(i), src: n.src}
}

// ChildByField returns the child bound to a grammar field name, e.g.
// "function" on a call node.
func (n Node) ChildByField(name string) Node {
	if n.inner == nil {
		return Node{}
	}
	return Node{inner: n.inner.ChildByFieldName(name), src: n.src}
}

// Parent returns the parent node, invalid at the root.
func (n Node) Parent() Node {
	if n.inner == nil {
		return Node{}
	}
	return Node{inner: n.inner.Parent(), src: n.src}
}

// TreeAvailable reports whether this build can parse structural trees.
// Tree-sitter needs CGO; without it every fragment gets the pattern view.
func TreeAvailable() bool { return true }

//go:build !cgo

package structure

import (
	"context"
	"errors"
)

// ErrNoCGO is returned by parseTree when tree-sitter is unavailable.
// Build treats it like any other parse failure: the pattern view is used.
var ErrNoCGO = errors.New("structural parsing requires CGO (tree-sitter)")

type tree struct{}

func parseTree(ctx context.Context, src []byte, lang Language) (*tree, error) {
	return nil, ErrNoCGO
}

func (t *tree) root() Node { return Node{} }

// Node is one node of the structural tree.
// Stub implementation for non-CGO builds; never valid.
type Node struct{}

// IsValid reports whether the node refers to an actual tree node.
func (n Node) IsValid() bool { return false }

// Kind returns the grammar's node type name.
func (n Node) Kind() string { return "" }

// Text returns the source text the node spans.
func (n Node) Text() string { return "" }

// Span returns the node's location.
func (n Node) Span() Span { return Span{} }

// ChildCount returns the number of children.
func (n Node) ChildCount() int { return 0 }

// Child returns the i-th child.
func (n Node) Child(i int) Node { return Node{} }

// ChildByField returns the child bound to a grammar field name.
func (n Node) ChildByField(name string) Node { return Node{} }

// Parent returns the parent node.
func (n Node) Parent() Node { return Node{} }

// TreeAvailable reports whether this build can parse structural trees.
// Returns false when CGO is disabled.
func TreeAvailable() bool { return false }

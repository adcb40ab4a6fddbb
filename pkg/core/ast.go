package core

import (
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	format.Pretty
	// Span returns the source range of the node, or token.NoSpan for nodes
	// built programmatically.
	Span() token.Span
}

// spanned carries the diagnostic span of a node.
type spanned struct {
	span token.Span
}

// Span implements Node.
func (s spanned) Span() token.Span { return s.span }

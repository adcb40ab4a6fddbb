// Package format is the pretty-printing framework shared by all AST nodes.
//
// A node renders itself in two forms. The inline form is context free and
// fits on one line; it backs every node's String method and is used for
// diagnostics. The pretty form receives an indentation level and is what
// the source formatter emits. Nodes with no internal structure to indent
// accept the level and ignore it.
package format

// Node is implemented by every AST node that can render inline.
type Node interface {
	FormatInline(p *Printer)
}

// Pretty is implemented by AST nodes that render at an indentation level.
type Pretty interface {
	Node
	FormatPretty(p *Printer, indent int)
}

// String renders the inline form of n.
func String(n Node, opts ...Option) string {
	p := NewPrinter(opts...)
	n.FormatInline(p)
	return p.String()
}

// Format renders the pretty form of n at indentation level zero.
func Format(n Pretty, opts ...Option) string {
	return FormatAt(n, 0, opts...)
}

// FormatAt renders the pretty form of n at the given indentation level.
func FormatAt(n Pretty, indent int, opts ...Option) string {
	p := NewPrinter(opts...)
	n.FormatPretty(p, indent)
	return p.String()
}

// JoinInline prints the inline form of each item separated by sep.
func JoinInline[T Node](p *Printer, sep string, items []T) {
	p.List(len(items), func(i int) { items[i].FormatInline(p) }, sep, false)
}

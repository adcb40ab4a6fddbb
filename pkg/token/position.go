package token

import "fmt"

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String returns "line:column", or "-" for an invalid position.
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source text.
// Spans are diagnostics only and never take part in node equality.
type Span struct {
	Start Position
	End   Position
}

// NoSpan is the zero span used for nodes built programmatically.
var NoSpan = Span{}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start.Offset && offset < s.End.Offset
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}

// String returns "start-end" for diagnostics.
func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}
	return s.Start.String() + "-" + s.End.String()
}

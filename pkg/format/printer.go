package format

import (
	"strings"

	"github.com/leapstack-labs/leapql/pkg/token"
)

// DefaultIndentSize is the number of spaces per indentation level.
const DefaultIndentSize = 4

// Printer accumulates rendered source text. It carries the options every
// node needs while rendering: spaces per indentation level and keyword
// casing. A Printer is not safe for concurrent use; nodes are, so render
// the same tree from several goroutines with one Printer each.
type Printer struct {
	output     strings.Builder
	indentSize int
	keywords   token.Case
}

// Option configures a Printer.
type Option func(*Printer)

// WithIndentSize sets the number of spaces per indentation level.
// Negative sizes are treated as zero.
func WithIndentSize(n int) Option {
	return func(p *Printer) {
		if n < 0 {
			n = 0
		}
		p.indentSize = n
	}
}

// WithKeywordCase sets the casing applied to keyword spellings.
func WithKeywordCase(c token.Case) Option {
	return func(p *Printer) {
		p.keywords = c
	}
}

// NewPrinter returns an empty Printer.
func NewPrinter(opts ...Option) *Printer {
	p := &Printer{indentSize: DefaultIndentSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// String returns the output written so far.
func (p *Printer) String() string {
	return p.output.String()
}

// Len returns the number of bytes written so far.
func (p *Printer) Len() int {
	return p.output.Len()
}

// Write appends s verbatim.
func (p *Printer) Write(s string) {
	p.output.WriteString(s)
}

// Writeln appends a newline.
func (p *Printer) Writeln() {
	p.output.WriteByte('\n')
}

// Space appends a single space.
func (p *Printer) Space() {
	p.output.WriteByte(' ')
}

// Indent writes the indentation for the given level.
func (p *Printer) Indent(level int) {
	for i := 0; i < level*p.indentSize; i++ {
		p.output.WriteByte(' ')
	}
}

// Keyword prints the spelling of each token, separated by spaces, in the
// configured casing.
func (p *Printer) Keyword(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.Space()
		}
		p.output.WriteString(p.keywords.Apply(t.Spelling()))
	}
}

// List prints count items separated by sep. each is called for every index.
// multiline adds a newline after each separator.
func (p *Printer) List(count int, each func(i int), sep string, multiline bool) {
	for i := 0; i < count; i++ {
		each(i)
		if i < count-1 {
			p.Write(sep)
			if multiline {
				p.Writeln()
			}
		}
	}
}

// Package formatter rewrites reduce, check and first statements into their
// canonical layout.
//
// A Formatter parses a document, re-emits every statement through the
// printer and puts comment lines back in front of the statement they
// preceded. File operations run concurrently with a bounded worker count.
package formatter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Style selects the surface form statements are printed in.
type Style string

// Styles.
const (
	StylePretty Style = "pretty"
	StyleInline Style = "inline"
)

// ParseStyle validates a style name. Empty means pretty.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(s)) {
	case "", StylePretty:
		return StylePretty, nil
	case StyleInline:
		return StyleInline, nil
	}
	return "", fmt.Errorf("unknown style %q (want pretty or inline)", s)
}

// Options controls the output layout.
type Options struct {
	Style       Style
	IndentSize  int
	KeywordCase token.Case
	// Concurrency bounds the number of files processed at once. Zero or
	// less means one.
	Concurrency int
}

// DefaultOptions returns pretty output with the printer's default indent.
func DefaultOptions() Options {
	return Options{
		Style:       StylePretty,
		IndentSize:  format.DefaultIndentSize,
		KeywordCase: token.CaseLower,
		Concurrency: 4,
	}
}

// Formatter formats documents. It is safe for concurrent use.
type Formatter struct {
	opts   Options
	logger *slog.Logger
}

// New creates a formatter. A nil logger discards log output.
func New(opts Options, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Style == "" {
		opts.Style = StylePretty
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Formatter{opts: opts, logger: logger}
}

// Options returns the formatter's options.
func (f *Formatter) Options() Options {
	return f.opts
}

func (f *Formatter) printerOptions() []format.Option {
	return []format.Option{
		format.WithIndentSize(f.opts.IndentSize),
		format.WithKeywordCase(f.opts.KeywordCase),
	}
}

// Format parses src and returns it in canonical layout. The result ends
// with a newline unless it is empty.
func (f *Formatter) Format(src string) (string, error) {
	doc, err := parser.ParseDocument(src)
	if err != nil {
		return "", err
	}
	return f.FormatDocument(doc), nil
}

// FormatDocument prints a parsed document. Statements are separated by a
// newline; a statement with leading comments gets a blank line before them
// unless it is the first.
func (f *Formatter) FormatDocument(doc *parser.Document) string {
	var b strings.Builder
	for i, stmt := range doc.Statements {
		if i > 0 && len(stmt.Comments) > 0 {
			b.WriteString("\n")
		}
		for _, c := range stmt.Comments {
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
		if f.opts.Style == StyleInline {
			b.WriteString(format.String(stmt.Node, f.printerOptions()...))
		} else {
			b.WriteString(format.Format(stmt.Node, f.printerOptions()...))
		}
		b.WriteString("\n")
	}
	if len(doc.Trailing) > 0 && len(doc.Statements) > 0 {
		b.WriteString("\n")
	}
	for _, c := range doc.Trailing {
		b.WriteString(c.Text)
		b.WriteString("\n")
	}
	return b.String()
}


package lsp

import (
	"errors"

	"github.com/leapstack-labs/leapql/pkg/lint"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
)

const diagnosticSource = "leapql"

// publishDiagnostics parses the document and publishes syntax errors or,
// when it parses, lint findings.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: s.diagnose(doc),
	})
}

// diagnose never returns nil so the notification clears stale markers.
func (s *Server) diagnose(doc *Document) []Diagnostic {
	diagnostics := []Diagnostic{}

	parsed, err := parser.ParseDocument(doc.Content)
	if err != nil {
		return append(diagnostics, syntaxDiagnostic(doc, err))
	}

	for _, d := range s.analyzer.AnalyzeDocument(parsed) {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    doc.SpanToRange(d.Span),
			Severity: toLSPSeverity(d.Severity),
			Code:     d.RuleID,
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return diagnostics
}

// syntaxDiagnostic places a parse or lex error at its reported position.
// Errors without a position land at the start of the document.
func syntaxDiagnostic(doc *Document, err error) Diagnostic {
	d := Diagnostic{
		Severity: DiagnosticSeverityError,
		Code:     "syntax",
		Source:   diagnosticSource,
		Message:  err.Error(),
	}

	var pos token.Position
	var parseErr *parser.ParseError
	var lexErr *parser.LexError
	switch {
	case errors.As(err, &parseErr):
		pos, d.Message = parseErr.Pos, parseErr.Message
	case errors.As(err, &lexErr):
		pos, d.Message = lexErr.Pos, lexErr.Message
	}

	d.Range = doc.SpanToRange(token.Span{Start: pos, End: pos})
	return d
}

func toLSPSeverity(sev lint.Severity) DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return DiagnosticSeverityError
	case lint.SeverityWarning:
		return DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}

package lint

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError indicates a critical issue that should be fixed.
	SeverityError Severity = iota
	// SeverityWarning indicates a potential issue that should be reviewed.
	SeverityWarning
	// SeverityInfo indicates informational feedback.
	SeverityInfo
	// SeverityHint indicates a suggestion for improvement.
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, ok := ParseSeverity(string(text))
	if !ok {
		return fmt.Errorf("unknown severity %q", text)
	}
	*s = sev
	return nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// RuleDef is a data-driven rule definition.
// Rules are stateless; all context comes through the node passed to Check.
type RuleDef struct {
	ID          string    // Unique identifier, e.g. "RD01"
	Name        string    // Human-readable name, e.g. "reduce.duplicate_target"
	Group       string    // Category: "reduce" or "first"
	Description string    // One-line description
	Severity    Severity  // Default severity
	Check       CheckFunc // The check function

	// Documentation fields shown by "leapql rules <id>"
	Rationale   string
	BadExample  string
	GoodExample string
}

// CheckFunc analyzes one statement and returns diagnostics. Diagnostics
// carry the rule's default severity; the Analyzer applies overrides.
type CheckFunc func(node core.Node) []Diagnostic

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string
	Severity Severity
	Message  string
	Span     token.Span // NoSpan for nodes built without positions
}

// Pos returns the start of the diagnostic's span.
func (d Diagnostic) Pos() token.Position {
	return d.Span.Start
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Span.Start, d.Severity, d.Message, d.RuleID)
}

// RuleInfo provides metadata about a rule for documentation and tooling.
type RuleInfo struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Group           string   `json:"group" yaml:"group"`
	Description     string   `json:"description" yaml:"description"`
	DefaultSeverity Severity `json:"default_severity" yaml:"default_severity"`
	Rationale       string   `json:"rationale,omitempty" yaml:"rationale,omitempty"`
	BadExample      string   `json:"bad_example,omitempty" yaml:"bad_example,omitempty"`
	GoodExample     string   `json:"good_example,omitempty" yaml:"good_example,omitempty"`
}

// Info extracts the documentation metadata of a rule.
func (r RuleDef) Info() RuleInfo {
	return RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
	}
}

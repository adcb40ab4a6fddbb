package lint

import (
	"sort"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/parser"
)

// Analyzer runs the registered lint rules against parsed statements.
type Analyzer struct {
	config *Config
	only   map[string]bool // restrict to these rule IDs (empty = all)
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Only restricts the analyzer to the given rule IDs.
func (a *Analyzer) Only(ids ...string) *Analyzer {
	a.only = make(map[string]bool, len(ids))
	for _, id := range ids {
		if rule, ok := GetByID(id); ok {
			a.only[rule.ID] = true
		}
	}
	return a
}

func (a *Analyzer) rules() []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if a.config.IsDisabled(rule.ID) {
			continue
		}
		if len(a.only) > 0 && !a.only[rule.ID] {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// Analyze runs the enabled rules against one statement.
func (a *Analyzer) Analyze(node core.Node) []Diagnostic {
	if node == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range a.rules() {
		diags := rule.Check(node)

		// Apply severity overrides
		for i := range diags {
			diags[i].RuleID = rule.ID
			diags[i].Severity = a.config.GetSeverity(rule.ID, rule.Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}
	return diagnostics
}

// AnalyzeDocument runs the enabled rules against every statement of a
// document. Diagnostics are ordered by position, then rule ID.
func (a *Analyzer) AnalyzeDocument(doc *parser.Document) []Diagnostic {
	if doc == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, stmt := range doc.Statements {
		diagnostics = append(diagnostics, a.Analyze(stmt.Node)...)
	}
	sort.SliceStable(diagnostics, func(i, j int) bool {
		pi, pj := diagnostics[i].Span.Start, diagnostics[j].Span.Start
		if pi.Offset != pj.Offset {
			return pi.Offset < pj.Offset
		}
		return diagnostics[i].RuleID < diagnostics[j].RuleID
	})
	return diagnostics
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

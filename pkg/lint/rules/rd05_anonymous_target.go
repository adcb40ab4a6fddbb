package rules

import (
	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(AnonymousTarget)
}

// AnonymousTarget detects $_ used as a reduce target.
var AnonymousTarget = lint.RuleDef{
	ID:          "RD05",
	Name:        "reduce.anonymous_target",
	Group:       "reduce",
	Description: "The anonymous variable $_ is used as a reduce target.",
	Severity:    lint.SeverityWarning,
	Check:       checkAnonymousTarget,
	Rationale:   `Nothing can refer to $_ afterwards, so the aggregate is computed and dropped.`,
	BadExample:  "reduce $_ = count;",
	GoodExample: "reduce $n = count;",
}

func checkAnonymousTarget(node core.Node) []lint.Diagnostic {
	r, ok := node.(*core.Reduce)
	if !ok {
		return nil
	}

	var diags []lint.Diagnostic
	for _, a := range r.Reductions {
		if a.AssignTo.IsAnonymous() {
			diags = append(diags, diag(a.AssignTo, "$_ cannot be read after the reduce stage"))
		}
	}
	return diags
}

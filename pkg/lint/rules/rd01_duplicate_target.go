package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(DuplicateTarget)
}

// DuplicateTarget detects a reduce stage that assigns the same variable twice.
var DuplicateTarget = lint.RuleDef{
	ID:          "RD01",
	Name:        "reduce.duplicate_target",
	Group:       "reduce",
	Description: "A reduce stage assigns the same variable more than once.",
	Severity:    lint.SeverityError,
	Check:       checkDuplicateTarget,
	Rationale: `Each reduce target names one output column. Two aggregates assigned
to the same variable leave only one of them visible to later stages.`,
	BadExample:  "reduce $n = count, $n = count($x);",
	GoodExample: "reduce $answers = count, $xs = count($x);",
}

func checkDuplicateTarget(node core.Node) []lint.Diagnostic {
	r, ok := node.(*core.Reduce)
	if !ok {
		return nil
	}

	targets := make([]core.Variable, 0, len(r.Reductions))
	for _, a := range r.Reductions {
		if !a.AssignTo.IsAnonymous() {
			targets = append(targets, a.AssignTo)
		}
	}

	var diags []lint.Diagnostic
	repeated(targets, func(v core.Variable) {
		diags = append(diags, diag(v, fmt.Sprintf("$%s is assigned more than once", v.Name)))
	})
	return diags
}

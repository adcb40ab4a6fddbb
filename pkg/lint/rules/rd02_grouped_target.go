package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(GroupedTarget)
}

// GroupedTarget detects a reduce target that is also a grouping variable.
var GroupedTarget = lint.RuleDef{
	ID:          "RD02",
	Name:        "reduce.grouped_target",
	Group:       "reduce",
	Description: "A reduce target is also listed in the within group.",
	Severity:    lint.SeverityError,
	Check:       checkGroupedTarget,
	Rationale: `Grouping variables keep their values in the output of a reduce stage,
so assigning an aggregate to one of them is ambiguous.`,
	BadExample:  "reduce $city = count within $city;",
	GoodExample: "reduce $residents = count within $city;",
}

func checkGroupedTarget(node core.Node) []lint.Diagnostic {
	r, ok := node.(*core.Reduce)
	if !ok || len(r.WithinGroup) == 0 {
		return nil
	}

	group := groupNames(r)
	var diags []lint.Diagnostic
	for _, a := range r.Reductions {
		if group[a.AssignTo.Name] {
			diags = append(diags, diag(a.AssignTo,
				fmt.Sprintf("$%s is both a reduce target and a grouping variable", a.AssignTo.Name)))
		}
	}
	return diags
}

package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(GroupedInput)
}

// GroupedInput detects an aggregate over a grouping variable.
var GroupedInput = lint.RuleDef{
	ID:          "RD04",
	Name:        "reduce.grouped_input",
	Group:       "reduce",
	Description: "An aggregate reads a variable that is also a grouping variable.",
	Severity:    lint.SeverityWarning,
	Check:       checkGroupedInput,
	Rationale: `Within one group a grouping variable has a single value, so sum, max
or count over it says nothing the group key does not already say.`,
	BadExample:  "reduce $total = sum($age) within $age;",
	GoodExample: "reduce $total = sum($age) within $city;",
}

func checkGroupedInput(node core.Node) []lint.Diagnostic {
	r, ok := node.(*core.Reduce)
	if !ok || len(r.WithinGroup) == 0 {
		return nil
	}

	group := groupNames(r)
	var diags []lint.Diagnostic
	for _, a := range r.Reductions {
		in, ok := inputOf(a.Value)
		if !ok || !group[in.Name] {
			continue
		}
		diags = append(diags, diag(a.Value,
			fmt.Sprintf("%s aggregates the grouping variable $%s", format.String(a.Value), in.Name)))
	}
	return diags
}

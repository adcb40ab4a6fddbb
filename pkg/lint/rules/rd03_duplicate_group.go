package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(DuplicateGroup)
}

// DuplicateGroup detects a variable listed twice in a within group.
var DuplicateGroup = lint.RuleDef{
	ID:          "RD03",
	Name:        "reduce.duplicate_group",
	Group:       "reduce",
	Description: "A variable appears more than once in the within group.",
	Severity:    lint.SeverityWarning,
	Check:       checkDuplicateGroup,
	BadExample:  "reduce $n = count within $city, $city;",
	GoodExample: "reduce $n = count within $city;",
}

func checkDuplicateGroup(node core.Node) []lint.Diagnostic {
	r, ok := node.(*core.Reduce)
	if !ok {
		return nil
	}

	var diags []lint.Diagnostic
	repeated(r.WithinGroup, func(v core.Variable) {
		diags = append(diags, diag(v,
			fmt.Sprintf("$%s appears more than once in the within group", v.Name)))
	})
	return diags
}

package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(FirstDuplicateVariable)
}

// FirstDuplicateVariable detects a first reduction that lists a variable twice.
var FirstDuplicateVariable = lint.RuleDef{
	ID:          "FR01",
	Name:        "first.duplicate_variable",
	Group:       "first",
	Description: "A first reduction lists the same variable more than once.",
	Severity:    lint.SeverityWarning,
	Check:       checkFirstDuplicateVariable,
	BadExample:  "first($p, $p);",
	GoodExample: "first($p);",
}

func checkFirstDuplicateVariable(node core.Node) []lint.Diagnostic {
	f, ok := node.(*core.First)
	if !ok {
		return nil
	}

	var diags []lint.Diagnostic
	repeated(f.Variables, func(v core.Variable) {
		diags = append(diags, diag(v,
			fmt.Sprintf("$%s is listed more than once", v.Name)))
	})
	return diags
}

package rules

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

func init() {
	lint.Register(SelfReference)
}

// SelfReference detects a target assigned an aggregate of itself.
var SelfReference = lint.RuleDef{
	ID:          "RD06",
	Name:        "reduce.self_reference",
	Group:       "reduce",
	Description: "A reduce target is assigned an aggregate of the same variable.",
	Severity:    lint.SeverityHint,
	Check:       checkSelfReference,
	Rationale: `Later stages see the aggregate under the input's name, which reads like
the per-answer value.`,
	BadExample:  "reduce $age = max($age);",
	GoodExample: "reduce $oldest = max($age);",
}

func checkSelfReference(node core.Node) []lint.Diagnostic {
	r, ok := node.(*core.Reduce)
	if !ok {
		return nil
	}

	var diags []lint.Diagnostic
	for _, a := range r.Reductions {
		in, ok := inputOf(a.Value)
		if !ok || in.IsAnonymous() || !in.Equal(a.AssignTo) {
			continue
		}
		diags = append(diags, diag(a.AssignTo,
			fmt.Sprintf("$%s is replaced by %s", in.Name, format.String(a.Value))))
	}
	return diags
}

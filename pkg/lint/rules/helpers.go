package rules

import (
	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/lint"
)

// inputOf returns the variable a reduce value reads, if any.
func inputOf(v core.ReduceValue) (core.Variable, bool) {
	switch v := v.(type) {
	case *core.Count:
		if v.Variable == nil {
			return core.Variable{}, false
		}
		return *v.Variable, true
	case *core.Stat:
		return v.Variable, true
	}
	return core.Variable{}, false
}

// groupNames returns the names in a within group.
func groupNames(r *core.Reduce) map[string]bool {
	names := make(map[string]bool, len(r.WithinGroup))
	for _, v := range r.WithinGroup {
		names[v.Name] = true
	}
	return names
}

// diag reports message at node. The analyzer fills in the rule ID and
// severity.
func diag(node core.Node, message string) lint.Diagnostic {
	return lint.Diagnostic{
		Message: message,
		Span:    node.Span(),
	}
}

// repeated calls fn for every variable whose name already appeared
// earlier in vars.
func repeated(vars []core.Variable, fn func(core.Variable)) {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v.Name] {
			fn(v)
			continue
		}
		seen[v.Name] = true
	}
}

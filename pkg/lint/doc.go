// Package lint checks parsed reduce, check and first statements for
// constructs that parse but are almost certainly mistakes.
//
// The package defines the shared types, the rule registry and the
// Analyzer. Rule implementations live in pkg/lint/rules and register
// themselves from init().
//
// # Rule Registration
//
// Rules are registered via init() functions when their package is imported:
//
//	import _ "github.com/leapstack-labs/leapql/pkg/lint/rules"
//
// # Rule Groups
//
//   - RD (reduce): target and grouping variable mistakes in reduce stages
//   - FR (first): projection mistakes in first reductions
//
// # Using the Analyzer
//
//	doc, err := parser.ParseDocument(src)
//	...
//	config := lint.NewConfig()
//	config.Disable("RD05")
//	config.SetSeverity("RD04", lint.SeverityError)
//	diags := lint.NewAnalyzer(config).AnalyzeDocument(doc)
//
// # Creating Custom Rules
//
//	var MyRule = lint.RuleDef{
//		ID:          "MY01",
//		Name:        "custom.my_rule",
//		Group:       "custom",
//		Description: "My custom rule description",
//		Severity:    lint.SeverityWarning,
//		Check:       checkMyRule,
//	}
//
//	func init() {
//		lint.Register(MyRule)
//	}
package lint

// Package core defines the AST of the query language's IR layer.
//
// This package contains:
//   - Query variables and the constrained-variable builder
//   - The literal model (Tag, ValueLiteral, Literal)
//   - The reduce stage model (Reduce, ReduceAssign, Reduction, ReduceValue)
//
// All nodes are immutable values once constructed and are safe for
// concurrent reads. Every node renders through pkg/format in an inline form
// (String) and an indentation-aware pretty form (FormatPretty).
//
// Spans are diagnostics only. Structural equality (the Equal methods)
// ignores them.
//
// The Golden Rule: pkg/core imports ONLY pkg/token, pkg/format and stdlib.
package core

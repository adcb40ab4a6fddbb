package core

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Reduce is the aggregation stage of a query pipeline:
//
//	reduce $n = count, $s = sum($x) within $g1, $g2;
//
// Reductions are printed in order and form the output columns. WithinGroup
// is the ordered grouping key; an empty list means no within clause.
type Reduce struct {
	Reductions  []ReduceAssign
	WithinGroup []Variable
}

// NewReduce builds a reduce stage. It performs no validation: duplicate
// targets, an empty reductions list or unused grouping variables are left
// to semantic checks.
func NewReduce(reductions []ReduceAssign, withinGroup []Variable) *Reduce {
	return &Reduce{Reductions: reductions, WithinGroup: withinGroup}
}

// Span implements Node. A reduce stage carries no span of its own.
func (r *Reduce) Span() token.Span { return token.NoSpan }

// FormatPretty implements format.Pretty. Grouping variables are listed
// without parentheses.
func (r *Reduce) FormatPretty(p *format.Printer, indent int) {
	p.Indent(indent)
	r.formatReductions(p)
	if len(r.WithinGroup) > 0 {
		p.Space()
		p.Keyword(token.WITHIN)
		p.Space()
		format.JoinInline(p, ", ", r.WithinGroup)
	}
	p.Write(";")
}

// FormatInline implements format.Node. Grouping variables are wrapped in
// parentheses.
func (r *Reduce) FormatInline(p *format.Printer) {
	r.formatReductions(p)
	if len(r.WithinGroup) > 0 {
		p.Space()
		p.Keyword(token.WITHIN)
		p.Write(" (")
		format.JoinInline(p, ", ", r.WithinGroup)
		p.Write(")")
	}
	p.Write(";")
}

func (r *Reduce) formatReductions(p *format.Printer) {
	p.Keyword(token.REDUCE)
	if len(r.Reductions) > 0 {
		p.Space()
		format.JoinInline(p, ", ", r.Reductions)
	}
}

func (r *Reduce) String() string {
	return format.String(r)
}

// Equal reports structural equality, ignoring spans.
func (r *Reduce) Equal(other *Reduce) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.Reductions) != len(other.Reductions) {
		return false
	}
	for i := range r.Reductions {
		if !r.Reductions[i].Equal(other.Reductions[i]) {
			return false
		}
	}
	return equalVariables(r.WithinGroup, other.WithinGroup)
}

// ReduceAssign binds the result of a reduce value to a variable.
type ReduceAssign struct {
	AssignTo Variable
	Value    ReduceValue
}

// NewReduceAssign returns target = value.
func NewReduceAssign(target Variable, value ReduceValue) ReduceAssign {
	return ReduceAssign{AssignTo: target, Value: value}
}

// Span implements Node.
func (a ReduceAssign) Span() token.Span { return a.AssignTo.Span() }

// FormatPretty implements format.Pretty.
func (a ReduceAssign) FormatPretty(p *format.Printer, indent int) {
	p.Indent(indent)
	a.FormatInline(p)
}

// FormatInline implements format.Node.
func (a ReduceAssign) FormatInline(p *format.Printer) {
	a.AssignTo.FormatInline(p)
	p.Write(" = ")
	a.Value.FormatInline(p)
}

func (a ReduceAssign) String() string {
	return format.String(a)
}

// Equal reports structural equality, ignoring spans.
func (a ReduceAssign) Equal(other ReduceAssign) bool {
	return a.AssignTo.Equal(other.AssignTo) && EqualReduceValues(a.Value, other.Value)
}

// ---------- Reduction ----------

// Reduction is the surface form higher layers use for a reduction.
//
// This is a sealed interface. Implementations: *Check, *First,
// ReductionValues.
type Reduction interface {
	Node
	fmt.Stringer
	reduction()
}

// ReductionValues computes a vector of reduce values.
type ReductionValues []ReduceValue

func (*Check) reduction()          {}
func (*First) reduction()          {}
func (ReductionValues) reduction() {}

// Span implements Node.
func (v ReductionValues) Span() token.Span {
	if len(v) == 0 {
		return token.NoSpan
	}
	return token.Span{Start: v[0].Span().Start, End: v[len(v)-1].Span().End}
}

// FormatInline implements format.Node.
func (v ReductionValues) FormatInline(p *format.Printer) {
	format.JoinInline(p, ", ", []ReduceValue(v))
}

// FormatPretty implements format.Pretty.
func (v ReductionValues) FormatPretty(p *format.Printer, _ int) {
	v.FormatInline(p)
}

func (v ReductionValues) String() string {
	return format.String(v)
}

// Check asks whether at least one answer exists.
type Check struct {
	spanned
}

// NewCheck returns a check reduction.
func NewCheck(span token.Span) *Check {
	return &Check{spanned: spanned{span: span}}
}

// FormatInline implements format.Node.
func (c *Check) FormatInline(p *format.Printer) {
	p.Keyword(token.CHECK)
	p.Write(";")
}

// FormatPretty implements format.Pretty.
func (c *Check) FormatPretty(p *format.Printer, _ int) {
	c.FormatInline(p)
}

func (c *Check) String() string {
	return format.String(c)
}

// First takes the first answer, optionally projected onto variables.
type First struct {
	spanned
	Variables []Variable
}

// NewFirst returns a first reduction.
func NewFirst(span token.Span, variables []Variable) *First {
	return &First{spanned: spanned{span: span}, Variables: variables}
}

// FormatInline implements format.Node.
func (f *First) FormatInline(p *format.Printer) {
	p.Keyword(token.FIRST)
	p.Write("(")
	format.JoinInline(p, ", ", f.Variables)
	p.Write(");")
}

// FormatPretty implements format.Pretty.
func (f *First) FormatPretty(p *format.Printer, _ int) {
	f.FormatInline(p)
}

func (f *First) String() string {
	return format.String(f)
}

// EqualReductions reports structural equality of two reductions, ignoring
// spans.
func EqualReductions(a, b Reduction) bool {
	switch a := a.(type) {
	case *Check:
		_, ok := b.(*Check)
		return ok
	case *First:
		b, ok := b.(*First)
		return ok && equalVariables(a.Variables, b.Variables)
	case ReductionValues:
		b, ok := b.(ReductionValues)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !EqualReduceValues(a[i], b[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("core: unknown reduction %T", a))
	}
}

// ---------- ReduceValue ----------

// ReduceValue is one aggregate.
//
// This is a sealed interface. Implementations: *Count, *Stat.
type ReduceValue interface {
	Node
	fmt.Stringer
	reduceValue()
}

func (*Count) reduceValue() {}
func (*Stat) reduceValue()  {}

// Count counts answers, or values of one variable.
type Count struct {
	spanned
	Variable *Variable // nil counts answers
}

// NewCount returns count or count(v). Pass nil to count answers.
func NewCount(span token.Span, variable *Variable) *Count {
	return &Count{spanned: spanned{span: span}, Variable: variable}
}

// FormatInline implements format.Node.
func (c *Count) FormatInline(p *format.Printer) {
	p.Keyword(token.COUNT)
	if c.Variable != nil {
		p.Write("(")
		c.Variable.FormatInline(p)
		p.Write(")")
	}
}

// FormatPretty implements format.Pretty.
func (c *Count) FormatPretty(p *format.Printer, _ int) {
	c.FormatInline(p)
}

func (c *Count) String() string {
	return format.String(c)
}

// Stat applies a statistic operator (sum, max, mean, ...) to one variable.
type Stat struct {
	spanned
	Operator token.TokenType
	Variable Variable
}

// NewStat returns op(v). The operator must satisfy token.IsStatOperator;
// this is not checked here.
func NewStat(span token.Span, op token.TokenType, variable Variable) *Stat {
	return &Stat{spanned: spanned{span: span}, Operator: op, Variable: variable}
}

// FormatInline implements format.Node.
func (s *Stat) FormatInline(p *format.Printer) {
	p.Keyword(s.Operator)
	p.Write("(")
	s.Variable.FormatInline(p)
	p.Write(")")
}

// FormatPretty implements format.Pretty.
func (s *Stat) FormatPretty(p *format.Printer, _ int) {
	s.FormatInline(p)
}

func (s *Stat) String() string {
	return format.String(s)
}

// EqualReduceValues reports structural equality of two reduce values,
// ignoring spans.
func EqualReduceValues(a, b ReduceValue) bool {
	switch a := a.(type) {
	case *Count:
		b, ok := b.(*Count)
		if !ok {
			return false
		}
		if a.Variable == nil || b.Variable == nil {
			return a.Variable == nil && b.Variable == nil
		}
		return a.Variable.Equal(*b.Variable)
	case *Stat:
		b, ok := b.(*Stat)
		return ok && a.Operator == b.Operator && a.Variable.Equal(b.Variable)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("core: unknown reduce value %T", a))
	}
}

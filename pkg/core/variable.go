package core

import (
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// anonymousName is the name of the anonymous variable $_.
const anonymousName = "_"

// Variable is a reference to a query variable such as $x.
type Variable struct {
	spanned
	Name string // without the leading '$'
}

// NewVariable returns a variable reference without a span.
func NewVariable(name string) Variable {
	return Variable{Name: name}
}

// NewVariableAt returns a variable reference with a span.
func NewVariableAt(span token.Span, name string) Variable {
	return Variable{spanned: spanned{span: span}, Name: name}
}

// AnonymousVariable returns the anonymous variable $_.
func AnonymousVariable() Variable {
	return Variable{Name: anonymousName}
}

// IsAnonymous reports whether v is $_.
func (v Variable) IsAnonymous() bool {
	return v.Name == anonymousName
}

// Equal reports whether v and other name the same variable.
func (v Variable) Equal(other Variable) bool {
	return v.Name == other.Name
}

// FormatInline implements format.Node.
func (v Variable) FormatInline(p *format.Printer) {
	p.Write("$")
	p.Write(v.Name)
}

// FormatPretty implements format.Pretty.
func (v Variable) FormatPretty(p *format.Printer, _ int) {
	v.FormatInline(p)
}

func (v Variable) String() string {
	return format.String(v)
}

// ToIsConstraint implements IsSource: a variable is its own identity target.
func (v Variable) ToIsConstraint() (IsConstraint, error) {
	return NewIsConstraint(v), nil
}

func equalVariables(a, b []Variable) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

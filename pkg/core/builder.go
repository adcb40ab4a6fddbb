package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// IsConstraint is the identity constraint "is $y".
type IsConstraint struct {
	spanned
	Variable Variable
}

// NewIsConstraint returns "is v".
func NewIsConstraint(v Variable) IsConstraint {
	return IsConstraint{Variable: v}
}

// NewIsConstraintAt returns "is v" with a span.
func NewIsConstraintAt(span token.Span, v Variable) IsConstraint {
	return IsConstraint{spanned: spanned{span: span}, Variable: v}
}

// FormatInline implements format.Node.
func (c IsConstraint) FormatInline(p *format.Printer) {
	p.Keyword(token.IS)
	p.Space()
	c.Variable.FormatInline(p)
}

// FormatPretty implements format.Pretty.
func (c IsConstraint) FormatPretty(p *format.Printer, _ int) {
	c.FormatInline(p)
}

func (c IsConstraint) String() string {
	return format.String(c)
}

// ToIsConstraint implements IsSource.
func (c IsConstraint) ToIsConstraint() (IsConstraint, error) {
	return c, nil
}

// Equal reports structural equality, ignoring spans.
func (c IsConstraint) Equal(other IsConstraint) bool {
	return c.Variable.Equal(other.Variable)
}

// IsSource is anything that converts into an identity constraint.
// Conversion may fail, for example when a variable name is malformed.
type IsSource interface {
	ToIsConstraint() (IsConstraint, error)
}

// VariableName is a variable name given as text, with or without the
// leading '$'. It is validated when converted.
type VariableName string

var variableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ToIsConstraint implements IsSource.
func (n VariableName) ToIsConstraint() (IsConstraint, error) {
	name := strings.TrimPrefix(string(n), "$")
	if !variableNamePattern.MatchString(name) {
		return IsConstraint{}, &BuildError{Message: fmt.Sprintf("invalid variable name %q", string(n))}
	}
	return NewIsConstraint(NewVariable(name)), nil
}

// ConstraintAcceptor is a variable that can take an identity constraint.
type ConstraintAcceptor interface {
	ConstrainIs(c IsConstraint) *ConceptVariable
}

// UnboundVariable is a bare variable placeholder with no constraints yet.
type UnboundVariable struct {
	Variable Variable
}

// NewUnboundVariable returns a placeholder for $name.
func NewUnboundVariable(name string) *UnboundVariable {
	return &UnboundVariable{Variable: NewVariable(name)}
}

// ConstrainIs implements ConstraintAcceptor.
func (u *UnboundVariable) ConstrainIs(c IsConstraint) *ConceptVariable {
	return &ConceptVariable{Variable: u.Variable, Is: []IsConstraint{c}}
}

// ToIsConstraint implements IsSource.
func (u *UnboundVariable) ToIsConstraint() (IsConstraint, error) {
	return NewIsConstraint(u.Variable), nil
}

func (u *UnboundVariable) String() string {
	return u.Variable.String()
}

// ConceptVariable is a variable with identity constraints, printed as
// "$x is $y, is $z".
type ConceptVariable struct {
	Variable Variable
	Is       []IsConstraint
}

// ConstrainIs implements ConstraintAcceptor. It returns a new variable; the
// receiver is not modified.
func (v *ConceptVariable) ConstrainIs(c IsConstraint) *ConceptVariable {
	is := make([]IsConstraint, 0, len(v.Is)+1)
	is = append(is, v.Is...)
	is = append(is, c)
	return &ConceptVariable{Variable: v.Variable, Is: is}
}

// Span implements Node.
func (v *ConceptVariable) Span() token.Span { return v.Variable.Span() }

// FormatInline implements format.Node.
func (v *ConceptVariable) FormatInline(p *format.Printer) {
	v.Variable.FormatInline(p)
	if len(v.Is) > 0 {
		p.Space()
		format.JoinInline(p, ", ", v.Is)
	}
}

// FormatPretty implements format.Pretty.
func (v *ConceptVariable) FormatPretty(p *format.Printer, indent int) {
	p.Indent(indent)
	v.FormatInline(p)
}

func (v *ConceptVariable) String() string {
	return format.String(v)
}

// Equal reports structural equality, ignoring spans.
func (v *ConceptVariable) Equal(other *ConceptVariable) bool {
	if v == nil || other == nil {
		return v == other
	}
	if !v.Variable.Equal(other.Variable) || len(v.Is) != len(other.Is) {
		return false
	}
	for i := range v.Is {
		if !v.Is[i].Equal(other.Is[i]) {
			return false
		}
	}
	return true
}

// Is constrains a with the identity constraint converted from src.
// If the conversion fails its error is returned unchanged. A nil acceptor
// or source yields a *BuildError.
func Is(a ConstraintAcceptor, src IsSource) (*ConceptVariable, error) {
	if isNilAcceptor(a) {
		return nil, &BuildError{Message: "constraint has no variable"}
	}
	if isNilSource(src) {
		return nil, &BuildError{Message: "constraint has no source"}
	}
	c, err := src.ToIsConstraint()
	if err != nil {
		return nil, err
	}
	return a.ConstrainIs(c), nil
}

// Chain threads builder results through further Is calls. Once a step has
// failed, later steps are skipped and their sources never converted:
//
//	v, err := core.Then(core.Is(x, y)).Is(z).Result()
type Chain struct {
	acceptor ConstraintAcceptor
	err      error
}

// Start begins a chain from a bare acceptor.
func Start(a ConstraintAcceptor) Chain {
	return Chain{acceptor: a}
}

// Then begins a chain from the result of a previous builder call.
func Then(v *ConceptVariable, err error) Chain {
	if err != nil {
		return Chain{err: err}
	}
	return Chain{acceptor: v}
}

// Is applies one more identity constraint unless the chain already failed.
func (c Chain) Is(src IsSource) Chain {
	if c.err != nil {
		return c
	}
	if isNilAcceptor(c.acceptor) {
		return Chain{err: &BuildError{Message: "constraint chain has no variable"}}
	}
	v, err := Is(c.acceptor, src)
	if err != nil {
		return Chain{err: err}
	}
	return Chain{acceptor: v}
}

// Result returns the constrained variable or the first error, unwrapped.
func (c Chain) Result() (*ConceptVariable, error) {
	if c.err != nil {
		return nil, c.err
	}
	v, ok := c.acceptor.(*ConceptVariable)
	if !ok || v == nil {
		return nil, &BuildError{Message: "no constraint was applied"}
	}
	return v, nil
}

func isNilAcceptor(a ConstraintAcceptor) bool {
	switch a := a.(type) {
	case nil:
		return true
	case *ConceptVariable:
		return a == nil
	case *UnboundVariable:
		return a == nil
	}
	return false
}

func isNilSource(src IsSource) bool {
	switch src := src.(type) {
	case nil:
		return true
	case *UnboundVariable:
		return src == nil
	}
	return false
}

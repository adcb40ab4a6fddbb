package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// ---------- Reduce ----------
//
// reduce       → REDUCE assign ("," assign)* [WITHIN group] ";"
// group        → var_list | "(" var_list ")"
// assign       → VARIABLE "=" reduce_value
// reduce_value → COUNT ["(" VARIABLE ")"] | STAT "(" VARIABLE ")"

// ParseReduce parses one reduce stage. Both the pretty form
// (within $a, $b) and the inline form (within ($a, $b)) are accepted.
func ParseReduce(input string) (*core.Reduce, error) {
	p := NewParser(input)
	r := p.parseReduce()
	if !p.failed() {
		p.expectEOF()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Parser) parseReduce() *core.Reduce {
	if !p.expect(token.REDUCE) {
		return nil
	}

	// An empty list is accepted so that every stage the printer writes
	// reads back.
	var assigns []core.ReduceAssign
	if !p.check(token.SEMICOLON) && !p.check(token.WITHIN) {
		for {
			a, ok := p.parseAssign()
			if !ok {
				return nil
			}
			assigns = append(assigns, a)
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	var group []core.Variable
	if p.match(token.WITHIN) {
		if p.match(token.LPAREN) {
			group = p.parseVariableList()
			if group == nil || !p.expect(token.RPAREN) {
				return nil
			}
		} else if group = p.parseVariableList(); group == nil {
			return nil
		}
	}

	if !p.expect(token.SEMICOLON) {
		return nil
	}
	return core.NewReduce(assigns, group)
}

func (p *Parser) parseAssign() (core.ReduceAssign, bool) {
	target, ok := p.parseVariable()
	if !ok || !p.expect(token.ASSIGN) {
		return core.ReduceAssign{}, false
	}
	value := p.parseReduceValue()
	if value == nil {
		return core.ReduceAssign{}, false
	}
	return core.NewReduceAssign(target, value), true
}

func (p *Parser) parseReduceValue() core.ReduceValue {
	start := p.token.Span.Start
	op := p.token.Type

	switch {
	case op == token.COUNT:
		p.nextToken()
		if !p.match(token.LPAREN) {
			return core.NewCount(p.spanFrom(start), nil)
		}
		v, ok := p.parseVariable()
		if !ok || !p.expect(token.RPAREN) {
			return nil
		}
		return core.NewCount(p.spanFrom(start), &v)

	case token.IsStatOperator(op):
		p.nextToken()
		if !p.expect(token.LPAREN) {
			return nil
		}
		v, ok := p.parseVariable()
		if !ok || !p.expect(token.RPAREN) {
			return nil
		}
		return core.NewStat(p.spanFrom(start), op, v)
	}

	p.addError(fmt.Sprintf(ErrExpectedReduce, describe(p.token)))
	return nil
}

// ---------- Reduction ----------
//
// reduction → check | first | reduce_value ("," reduce_value)*
// check     → CHECK ";"
// first     → FIRST "(" [var_list] ")" ";"

// ParseReduction parses a check, a first or a list of reduce values.
func ParseReduction(input string) (core.Reduction, error) {
	p := NewParser(input)
	r := p.parseReduction()
	if !p.failed() {
		p.expectEOF()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Parser) parseReduction() core.Reduction {
	switch p.token.Type {
	case token.CHECK:
		if c := p.parseCheck(); c != nil {
			return c
		}
		return nil
	case token.FIRST:
		if f := p.parseFirst(); f != nil {
			return f
		}
		return nil
	}

	var values core.ReductionValues
	for {
		v := p.parseReduceValue()
		if v == nil {
			return nil
		}
		values = append(values, v)
		if !p.match(token.COMMA) {
			break
		}
	}
	return values
}

func (p *Parser) parseCheck() *core.Check {
	start := p.token.Span.Start
	if !p.expect(token.CHECK) || !p.expect(token.SEMICOLON) {
		return nil
	}
	return core.NewCheck(p.spanFrom(start))
}

func (p *Parser) parseFirst() *core.First {
	start := p.token.Span.Start
	if !p.expect(token.FIRST) || !p.expect(token.LPAREN) {
		return nil
	}
	var vars []core.Variable
	if !p.check(token.RPAREN) {
		if vars = p.parseVariableList(); vars == nil {
			return nil
		}
	}
	if !p.expect(token.RPAREN) || !p.expect(token.SEMICOLON) {
		return nil
	}
	return core.NewFirst(p.spanFrom(start), vars)
}

// ---------- Variables ----------
//
// var_list → VARIABLE ("," VARIABLE)*

func (p *Parser) parseVariable() (core.Variable, bool) {
	tok := p.token
	if !p.expect(token.VARIABLE) {
		return core.Variable{}, false
	}
	return core.NewVariableAt(tok.Span, tok.Literal[1:]), true
}

// parseVariableList returns nil on error.
func (p *Parser) parseVariableList() []core.Variable {
	var vars []core.Variable
	for {
		v, ok := p.parseVariable()
		if !ok {
			return nil
		}
		vars = append(vars, v)
		if !p.match(token.COMMA) {
			return vars
		}
	}
}

// ---------- Concept variables ----------
//
// concept → VARIABLE IS VARIABLE ("," IS VARIABLE)*

// ParseConceptVariable parses a variable with identity constraints, such
// as "$x is $y, is $z".
func ParseConceptVariable(input string) (*core.ConceptVariable, error) {
	p := NewParser(input)
	v := p.parseConceptVariable()
	if !p.failed() {
		p.expectEOF()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return v, nil
}

func (p *Parser) parseConceptVariable() *core.ConceptVariable {
	subject, ok := p.parseVariable()
	if !ok {
		return nil
	}

	chain := core.Start(&core.UnboundVariable{Variable: subject})
	for {
		start := p.token.Span.Start
		if !p.expect(token.IS) {
			return nil
		}
		target, ok := p.parseVariable()
		if !ok {
			return nil
		}
		chain = chain.Is(core.NewIsConstraintAt(p.spanFrom(start), target))
		if !p.match(token.COMMA) {
			break
		}
	}

	v, err := chain.Result()
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	return v
}

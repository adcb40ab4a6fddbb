package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Statement is one top-level statement with the comment lines that precede
// it.
type Statement struct {
	Comments []Comment
	Node     core.Node // *core.Reduce, *core.Check or *core.First
}

// Document is a parsed source file.
type Document struct {
	Statements []Statement
	Trailing   []Comment // comments after the last statement
}

// ParseDocument parses a sequence of reduce, check and first statements.
func ParseDocument(input string) (*Document, error) {
	p := NewParser(input)
	doc := &Document{}

	for !p.check(token.EOF) && !p.failed() {
		comments := p.takeComments(p.token.Span.Start.Offset)
		node := p.parseStatement()
		if node == nil {
			break
		}
		doc.Statements = append(doc.Statements, Statement{Comments: comments, Node: node})
	}

	if err := p.Err(); err != nil {
		return nil, err
	}
	doc.Trailing = p.takeComments(len(input) + 1)
	return doc, nil
}

func (p *Parser) parseStatement() core.Node {
	switch p.token.Type {
	case token.REDUCE:
		if r := p.parseReduce(); r != nil {
			return r
		}
	case token.CHECK:
		if c := p.parseCheck(); c != nil {
			return c
		}
	case token.FIRST:
		if f := p.parseFirst(); f != nil {
			return f
		}
	default:
		p.addError(fmt.Sprintf(ErrExpectedStatement, describe(p.token)))
	}
	return nil
}

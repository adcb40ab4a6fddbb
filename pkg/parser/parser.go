// Package parser turns query source into AST nodes from pkg/core.
//
// # Usage
//
//	r, err := parser.ParseReduce("reduce $n = count within $g;")
//	if err != nil {
//	    // handle error
//	}
//
// The package also owns the literal decoder: DecodeString resolves string
// escapes and the New*Literal constructors package already lexed fragments
// into tagged literals.
//
// # Grammar Overview
//
//	document     → statement*
//	statement    → reduce | check | first
//	reduce       → REDUCE assign ("," assign)* [WITHIN group] ";"
//	group        → var_list | "(" var_list ")"
//	assign       → VARIABLE "=" reduce_value
//	reduce_value → COUNT ["(" VARIABLE ")"] | STAT "(" VARIABLE ")"
//	check        → CHECK ";"
//	first        → FIRST "(" [var_list] ")" ";"
//	reduction    → check | first | reduce_value ("," reduce_value)*
//	literal      → ["+"|"-"] NUMBER | STRING | TRUE | FALSE
//	             | DATE | DATETIME | DATETIME_TZ | DURATION
//	concept      → VARIABLE IS VARIABLE ("," IS VARIABLE)*
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapql/pkg/token"
)

// Parser parses query source into AST nodes.
type Parser struct {
	lexer  *Lexer
	prev   Token // last consumed token
	token  Token // current token
	peek   Token // lookahead token
	errors []error

	comments int // lexer comments already handed out
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Err returns the first error found so far. Lexical errors come first since
// they usually cause the parse errors that follow them.
func (p *Parser) Err() error {
	if errs := p.lexer.Errors(); len(errs) > 0 {
		return errs[0]
	}
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prev = p.token
	p.token = p.peek
	p.peek = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), t))
	return false
}

// expectEOF adds an error unless all input was consumed.
func (p *Parser) expectEOF() {
	if !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrTrailingInput, describe(p.token)))
	}
}

// addError adds a parse error.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Span.Start,
		Message: msg,
	})
}

// failed reports whether any error has been recorded.
func (p *Parser) failed() bool {
	return len(p.errors) > 0 || len(p.lexer.Errors()) > 0
}

// takeComments returns the collected comments that start before offset and
// have not been returned yet.
func (p *Parser) takeComments(offset int) []Comment {
	all := p.lexer.Comments
	start := p.comments
	for p.comments < len(all) && all[p.comments].Span.Start.Offset < offset {
		p.comments++
	}
	if start == p.comments {
		return nil
	}
	return all[start:p.comments:p.comments]
}

// describe renders a token for error messages.
func describe(tok Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.VARIABLE, token.NUMBER, token.STRING, token.DATE,
		token.DATETIME, token.DATETIME_TZ, token.DURATION, token.IDENT, token.ILLEGAL:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Type.Spelling())
}

// spanFrom returns the span from start to the end of the last consumed
// token.
func (p *Parser) spanFrom(start Position) token.Span {
	return token.Span{Start: start, End: p.prev.Span.End}
}

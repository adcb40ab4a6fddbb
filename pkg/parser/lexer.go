package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/leapql/pkg/token"
)

// Comment is a '#' line comment collected while lexing.
type Comment struct {
	Text string // including the leading '#'
	Span token.Span
}

// Lexer tokenizes query source.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	errors []error

	// Comments collected during lexing (for the formatter)
	Comments []Comment
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors found so far.
func (l *Lexer) Errors() []error {
	return l.errors
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// advance consumes n characters.
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		l.readChar()
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// peekCharAt returns the character n bytes after the current one.
func (l *Lexer) peekCharAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// atEOF reports whether all input has been consumed.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// tokenFrom builds a token of type t covering input from start to the
// current position.
func (l *Lexer) tokenFrom(t TokenType, start Position) Token {
	return Token{
		Type:    t,
		Literal: l.input[start.Offset:l.pos],
		Span:    token.Span{Start: start, End: l.currentPos()},
	}
}

// addError records a lexical error at pos.
func (l *Lexer) addError(pos Position, format string, args ...any) {
	l.errors = append(l.errors, &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	if l.atEOF() {
		return Token{Type: token.EOF, Span: token.Span{Start: pos, End: pos}}
	}

	switch l.ch {
	case '=':
		return l.single(token.ASSIGN, pos)
	case ',':
		return l.single(token.COMMA, pos)
	case ';':
		return l.single(token.SEMICOLON, pos)
	case '(':
		return l.single(token.LPAREN, pos)
	case ')':
		return l.single(token.RPAREN, pos)
	case '+':
		return l.single(token.PLUS, pos)
	case '-':
		return l.single(token.MINUS, pos)
	case '"', '\'':
		return l.readString(pos)
	case '$':
		return l.readVariable(pos)
	}

	switch {
	case l.isDurationStart():
		return l.readDuration(pos)
	case isLetter(l.ch) || l.ch == '_':
		l.readIdentifier()
		tok := l.tokenFrom(token.IDENT, pos)
		tok.Type = token.LookupIdent(tok.Literal)
		return tok
	case isDigit(l.ch):
		return l.readNumberOrDate(pos)
	}

	l.addError(pos, ErrIllegalCharacter, string(l.ch))
	return l.single(token.ILLEGAL, pos)
}

// single consumes the current character as a token of type t.
func (l *Lexer) single(t TokenType, pos Position) Token {
	l.readChar()
	return l.tokenFrom(t, pos)
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '#' {
			l.collectLineComment()
			continue
		}

		break
	}
}

// collectLineComment collects a line comment.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()

	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}

	l.Comments = append(l.Comments, Comment{
		Text: l.input[startPos.Offset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// readString reads a single- or double-quoted string literal. The token
// literal keeps the quotes and escapes; DecodeString resolves them.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	l.readChar() // skip opening quote

	for !l.atEOF() {
		switch l.ch {
		case '\\':
			l.readChar()
			if !l.atEOF() {
				l.readChar()
			}
		case quote:
			l.readChar() // skip closing quote
			return l.tokenFrom(token.STRING, pos)
		default:
			l.readChar()
		}
	}

	l.addError(pos, ErrUnterminatedString)
	return l.tokenFrom(token.ILLEGAL, pos)
}

// readVariable reads $name.
func (l *Lexer) readVariable(pos Position) Token {
	l.readChar() // skip '$'
	if !isLetter(l.ch) && l.ch != '_' {
		l.addError(pos, "expected variable name after '$'")
		return l.tokenFrom(token.ILLEGAL, pos)
	}
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '-' {
		l.readChar()
	}
	return l.tokenFrom(token.VARIABLE, pos)
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() {
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
}

// isDurationStart reports whether the input continues with P<digit> or
// PT<digit> and the word there is not a keyword. Registered operators such
// as p90 print as P90 under upper casing.
func (l *Lexer) isDurationStart() bool {
	if l.ch != 'P' {
		return false
	}
	next := l.peekChar()
	if !isDigit(next) && (next != 'T' || !isDigit(l.peekCharAt(2))) {
		return false
	}
	end := l.pos
	for end < len(l.input) && (isLetter(l.input[end]) || isDigit(l.input[end]) || l.input[end] == '_') {
		end++
	}
	return token.LookupIdent(l.input[l.pos:end]) == token.IDENT
}

var durationPattern = regexp.MustCompile(`^P(?:\d+[YMW])?(?:\d+D|T\d+[HM]|T\d+(?:\.\d+)?S)?`)

// readDuration reads an ISO 8601 duration with at most one date part and
// one time part.
func (l *Lexer) readDuration(pos Position) Token {
	rest := l.input[l.pos:]
	n := len(durationPattern.FindString(rest))
	end := n
	for end < len(rest) && isWordChar(rest[end]) {
		end++
	}
	if n <= 1 || end != n {
		l.advance(end)
		l.addError(pos, ErrInvalidDuration, rest[:end])
		return l.tokenFrom(token.ILLEGAL, pos)
	}
	l.advance(n)
	return l.tokenFrom(token.DURATION, pos)
}

var (
	datePattern   = regexp.MustCompile(`^\d{4,}-\d{2}-\d{2}`)
	timePattern   = regexp.MustCompile(`^T\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?`)
	offsetPattern = regexp.MustCompile(`^(?:Z|[+-]\d{2}(?::?\d{2})?)`)
	ianaPattern   = regexp.MustCompile(`^ [A-Za-z_][A-Za-z0-9_+-]*(?:/[A-Za-z0-9_+-]+)*`)

	numberPattern = regexp.MustCompile(`^\d+(?:\.\d+)?(?:[eE][+-]?\d+)?(?:dec)?`)
)

// readNumberOrDate reads a numeral, date, date-time or date-time with zone.
func (l *Lexer) readNumberOrDate(pos Position) Token {
	rest := l.input[l.pos:]

	date := datePattern.FindString(rest)
	if date == "" {
		n := len(numberPattern.FindString(rest))
		if n < len(rest) && isLetter(rest[n]) {
			end := n
			for end < len(rest) && isWordChar(rest[end]) {
				end++
			}
			l.advance(end)
			l.addError(pos, ErrInvalidNumber, rest[:end])
			return l.tokenFrom(token.ILLEGAL, pos)
		}
		l.advance(n)
		return l.tokenFrom(token.NUMBER, pos)
	}

	n := len(date)
	tm := timePattern.FindString(rest[n:])
	if tm == "" {
		l.advance(n)
		return l.tokenFrom(token.DATE, pos)
	}
	n += len(tm)

	if zone := offsetPattern.FindString(rest[n:]); zone != "" {
		l.advance(n + len(zone))
		return l.tokenFrom(token.DATETIME_TZ, pos)
	}
	if zone := ianaPattern.FindString(rest[n:]); zone != "" &&
		(strings.Contains(zone, "/") || token.LookupIdent(zone[1:]) == token.IDENT) {
		l.advance(n + len(zone))
		return l.tokenFrom(token.DATETIME_TZ, pos)
	}
	l.advance(n)
	return l.tokenFrom(token.DATETIME, pos)
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '.'
}

// Tokenize returns all tokens from the input, ending with EOF, and the
// first lexical error if any.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if len(l.errors) > 0 {
		return tokens, l.errors[0]
	}
	return tokens, nil
}

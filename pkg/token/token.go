// Package token defines the token vocabulary of the query language.
//
// Built-in tokens are constants (IDs 0-999) for switch performance.
// Extension reduce operators are registered dynamically via
// RegisterReduceOperator. Every keyword and punctuation token knows its
// canonical spelling, which printers use verbatim.
package token

import (
	"fmt"

	"golang.org/x/text/cases"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT       // person, name
	VARIABLE    // $x, $_
	NUMBER      // 12, 3.5, 1e10, 12dec
	STRING      // "hello", 'hello'
	DATE        // 2024-01-31
	DATETIME    // 2024-01-31T10:30:00.5
	DATETIME_TZ // 2024-01-31T10:30Z, 2024-01-31T10:30 Europe/London
	DURATION    // P1Y, PT2H, P3W4D

	// Punctuation
	ASSIGN    // =
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	PLUS      // +
	MINUS     // -

	// Clause keywords
	REDUCE
	WITHIN
	IS

	// Boolean keywords
	TRUE
	FALSE

	// Reduce operators (alphabetical)
	CHECK
	COUNT
	FIRST
	LIST
	MAX
	MEAN
	MEDIAN
	MIN
	STD
	SUM

	// Sentinel - dynamic tokens start after this
	maxBuiltin TokenType = 999
)

// String returns the canonical spelling for keywords and punctuation and
// the class name for literal tokens.
func (t TokenType) String() string {
	if name, ok := getDynamicName(t); ok {
		return name
	}
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// Spelling returns the canonical source spelling of a keyword or
// punctuation token. It is the same as String and exists so printers read
// as "spell this keyword" rather than "debug this token".
func (t TokenType) Spelling() string {
	return t.String()
}

// tokenNames maps builtin token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:       "IDENT",
	VARIABLE:    "VARIABLE",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	DATE:        "DATE",
	DATETIME:    "DATETIME",
	DATETIME_TZ: "DATETIME_TZ",
	DURATION:    "DURATION",

	ASSIGN:    "=",
	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	PLUS:      "+",
	MINUS:     "-",

	REDUCE: "reduce",
	WITHIN: "within",
	IS:     "is",
	TRUE:   "true",
	FALSE:  "false",

	CHECK:  "check",
	COUNT:  "count",
	FIRST:  "first",
	LIST:   "list",
	MAX:    "max",
	MEAN:   "mean",
	MEDIAN: "median",
	MIN:    "min",
	STD:    "std",
	SUM:    "sum",
}

// keywords maps folded keyword strings to their token types.
var keywords = map[string]TokenType{
	"reduce": REDUCE,
	"within": WITHIN,
	"is":     IS,
	"true":   TRUE,
	"false":  FALSE,
	"check":  CHECK,
	"count":  COUNT,
	"first":  FIRST,
	"list":   LIST,
	"max":    MAX,
	"mean":   MEAN,
	"median": MEDIAN,
	"min":    MIN,
	"std":    STD,
	"sum":    SUM,
}

// LookupIdent returns the token type for the given identifier.
// Keywords match case-insensitively so that upper-cased output re-parses.
// Registered reduce operators are consulted after the builtin keywords.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	folded := cases.Fold().String(ident)
	if tok, ok := keywords[folded]; ok {
		return tok
	}
	if tok, ok := LookupDynamicKeyword(folded); ok {
		return tok
	}
	return IDENT
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return (t >= REDUCE && t <= SUM) || IsDynamic(t)
}

// IsReduceOperator returns true if the token names a reduce operator,
// builtin or registered.
func IsReduceOperator(t TokenType) bool {
	return (t >= CHECK && t <= SUM) || IsDynamic(t)
}

// IsStatOperator returns true if the token is a reduce operator applied to
// exactly one variable (everything except check, count and first).
func IsStatOperator(t TokenType) bool {
	if !IsReduceOperator(t) {
		return false
	}
	switch t {
	case CHECK, COUNT, FIRST:
		return false
	}
	return true
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

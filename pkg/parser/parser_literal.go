package parser

import (
	"fmt"
	"regexp"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// ---------- Literals ----------
//
// literal → ["+"|"-"] NUMBER | STRING | TRUE | FALSE
//         | DATE | DATETIME | DATETIME_TZ | DURATION

// ParseLiteral parses a single literal with no type context, so ambiguous
// numerals are tagged Integral or Fractional.
func ParseLiteral(input string) (*core.Literal, error) {
	return ParseLiteralAs(input, core.TagNone)
}

// ParseLiteralAs parses a single literal in a position that expects the
// given tag. The context only affects numeral tagging.
func ParseLiteralAs(input string, context core.Tag) (*core.Literal, error) {
	p := NewParser(input)
	lit := p.parseLiteral(context)
	if !p.failed() {
		p.expectEOF()
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseLiteral(context core.Tag) *core.Literal {
	start := p.token.Span.Start

	sign, signed := core.Plus, false
	switch {
	case p.match(token.MINUS):
		sign, signed = core.Minus, true
	case p.match(token.PLUS):
		signed = true
	}
	if signed && !p.check(token.NUMBER) {
		p.addError(fmt.Sprintf(ErrExpectedLiteral, describe(p.token)))
		return nil
	}

	tok := p.token
	span := token.Span{Start: start, End: tok.Span.End}

	var (
		lit *core.Literal
		err error
	)
	switch tok.Type {
	case token.NUMBER:
		lit, err = NumberLiteral(span, sign, tok.Literal, context)
	case token.STRING:
		lit, err = NewStringLiteral(span, tok.Literal)
	case token.TRUE:
		lit = NewBooleanLiteral(span, true)
	case token.FALSE:
		lit = NewBooleanLiteral(span, false)
	case token.DATE, token.DATETIME, token.DATETIME_TZ:
		lit, err = DateTimeLiteral(span, tok.Literal)
	case token.DURATION:
		lit, err = DurationLiteral(span, tok.Literal)
	default:
		p.addError(fmt.Sprintf(ErrExpectedLiteral, describe(tok)))
		return nil
	}
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	p.nextToken()
	return lit
}

var numberParts = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:[eE]([+-]?)(\d+))?(dec)?$`)

// NumberLiteral builds the literal for the text of a NUMBER token. A bare
// digit string becomes an integer; a fraction, exponent or dec suffix makes
// a decimal. The tag follows ResolveNumericTag.
func NumberLiteral(span token.Span, sign core.Sign, text string, context core.Tag) (*core.Literal, error) {
	m := numberParts.FindStringSubmatch(text)
	if m == nil {
		return nil, &ParseError{Pos: span.Start, Message: fmt.Sprintf(ErrInvalidNumber, text)}
	}
	integral, fractional, expSign, expDigits, suffix := m[1], m[2], m[3], m[4], m[5]

	if fractional == "" && expDigits == "" && suffix == "" {
		return NewIntegerLiteral(span, sign, integral, context), nil
	}

	d := core.SignedDecimalLiteral{Sign: sign, Integral: integral, Fractional: fractional}
	if expDigits != "" {
		d.Exponent = &core.Exponent{Digits: expDigits}
		if expSign == "-" {
			d.Exponent.Sign = core.Minus
		}
	}
	return NewDecimalLiteral(span, d, suffix != "", context), nil
}

var dateTimeParts = regexp.MustCompile(
	`^(\d{4,})-(\d{2})-(\d{2})` +
		`(?:T(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d+))?)?` +
		`(?:(Z|[+-]\d{2}(?::?\d{2})?)| ([A-Za-z_][A-Za-z0-9_+/-]*))?)?$`)

// DateTimeLiteral builds the literal for the text of a DATE, DATETIME or
// DATETIME_TZ token.
func DateTimeLiteral(span token.Span, text string) (*core.Literal, error) {
	m := dateTimeParts.FindStringSubmatch(text)
	if m == nil {
		return nil, &ParseError{Pos: span.Start, Message: fmt.Sprintf(ErrInvalidDateTime, text)}
	}

	date := core.DateFragment{Year: m[1], Month: m[2], Day: m[3]}
	if m[4] == "" {
		return NewDateLiteral(span, date), nil
	}

	tm := core.TimeFragment{Hour: m[4], Minute: m[5], Second: m[6], SecondFraction: m[7]}
	switch {
	case m[8] != "":
		return NewDateTimeTZLiteral(span, date, tm, NewTimeZone(m[8])), nil
	case m[9] != "":
		return NewDateTimeTZLiteral(span, date, tm, NewTimeZone(m[9])), nil
	}
	return NewDateTimeLiteral(span, date, tm), nil
}

var durationParts = regexp.MustCompile(`^P(?:(\d+)([YMW]))?(?:(\d+)D|T(\d+)([HM])|T(\d+(?:\.\d+)?)S)?$`)

var durationDateUnits = map[string]core.DurationDateUnit{
	"Y": core.Years,
	"M": core.Months,
	"W": core.Weeks,
}

var durationTimeUnits = map[string]core.DurationTimeUnit{
	"H": core.Hours,
	"M": core.Minutes,
}

// DurationLiteral builds the literal for the text of a DURATION token.
func DurationLiteral(span token.Span, text string) (*core.Literal, error) {
	m := durationParts.FindStringSubmatch(text)
	if m == nil || text == "P" {
		return nil, &ParseError{Pos: span.Start, Message: fmt.Sprintf(ErrInvalidDuration, text)}
	}

	var (
		date *core.DurationDate
		tm   *core.DurationTime
	)
	if m[1] != "" {
		date = &core.DurationDate{Unit: durationDateUnits[m[2]], Value: m[1]}
	}
	switch {
	case m[3] != "":
		tm = &core.DurationTime{Unit: core.Days, Value: m[3]}
	case m[4] != "":
		tm = &core.DurationTime{Unit: durationTimeUnits[m[5]], Value: m[4]}
	case m[6] != "":
		tm = &core.DurationTime{Unit: core.Seconds, Value: m[6]}
	}
	return NewDurationLiteral(span, date, tm), nil
}

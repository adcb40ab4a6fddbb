package parser

import (
	"strings"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// NumericKind is the lexical shape of a numeral.
type NumericKind int

// Numeral shapes.
const (
	// KindIntegral is a bare digit string: 12.
	KindIntegral NumericKind = iota
	// KindFractional has a fraction or exponent and no suffix: 1.5, 2e3.
	KindFractional
	// KindDecimal carries the dec suffix: 1.5dec, 12dec.
	KindDecimal
)

func (k NumericKind) String() string {
	switch k {
	case KindIntegral:
		return "integral"
	case KindFractional:
		return "fractional"
	case KindDecimal:
		return "decimal"
	}
	return "unknown"
}

// ResolveNumericTag returns the tag for a numeral of the given shape. context
// is the tag a typed position expects, or core.TagNone when nothing is known.
//
// A dec-suffixed numeral is always a Decimal and needs no tag. Otherwise a
// compatible context is passed through and anything else leaves the
// ambiguity open: integral numerals fit Long, Double or Decimal and are
// tagged Integral; fractional numerals fit Double or Decimal and are tagged
// Fractional. A numeral is never rejected here; an incompatible context is a
// type error for the semantic layer.
func ResolveNumericTag(kind NumericKind, context core.Tag) core.Tag {
	switch kind {
	case KindDecimal:
		return core.TagNone
	case KindIntegral:
		switch context {
		case core.TagLong, core.TagDouble, core.TagDecimal:
			return context
		}
		return core.TagIntegral
	default:
		switch context {
		case core.TagDouble, core.TagDecimal:
			return context
		}
		return core.TagFractional
	}
}

// NewBooleanLiteral returns true or false.
func NewBooleanLiteral(span token.Span, value bool) *core.Literal {
	return core.NewLiteral(span, core.TagNone, &core.BooleanLiteral{Value: value})
}

// NewIntegerLiteral packages a bare digit string.
func NewIntegerLiteral(span token.Span, sign core.Sign, digits string, context core.Tag) *core.Literal {
	return core.NewLiteral(span, ResolveNumericTag(KindIntegral, context),
		&core.SignedIntegerLiteral{Sign: sign, Integral: digits})
}

// NewDecimalLiteral packages a numeral with fraction and/or exponent, or one
// written with the dec suffix (suffixed).
func NewDecimalLiteral(span token.Span, d core.SignedDecimalLiteral, suffixed bool, context core.Tag) *core.Literal {
	kind := KindFractional
	if suffixed {
		kind = KindDecimal
	}
	return core.NewLiteral(span, ResolveNumericTag(kind, context), &d)
}

// NewDateLiteral packages a calendar date.
func NewDateLiteral(span token.Span, date core.DateFragment) *core.Literal {
	return core.NewLiteral(span, core.TagNone, &core.DateLiteral{Date: date})
}

// NewDateTimeLiteral packages a date and time without zone.
func NewDateTimeLiteral(span token.Span, date core.DateFragment, tm core.TimeFragment) *core.Literal {
	return core.NewLiteral(span, core.TagNone, &core.DateTimeLiteral{Date: date, Time: tm})
}

// NewDateTimeTZLiteral packages a date and time in a zone.
func NewDateTimeTZLiteral(span token.Span, date core.DateFragment, tm core.TimeFragment, zone core.TimeZone) *core.Literal {
	return core.NewLiteral(span, core.TagNone, &core.DateTimeTZLiteral{Date: date, Time: tm, TimeZone: zone})
}

// NewDurationLiteral packages a duration. Either part may be nil.
func NewDurationLiteral(span token.Span, date *core.DurationDate, tm *core.DurationTime) *core.Literal {
	return core.NewLiteral(span, core.TagNone, &core.DurationLiteral{Date: date, Time: tm})
}

// NewStringLiteral decodes a quoted string literal.
func NewStringLiteral(span token.Span, raw string) (*core.Literal, error) {
	s, err := DecodeString(raw)
	if err != nil {
		return nil, err
	}
	return core.NewLiteral(span, core.TagNone, &core.StringLiteral{Value: s}), nil
}

// NewTimeZone returns the zone named by text: an ISO offset ("Z", "+01:00",
// "-0530") or an IANA name split at its first slash. A name without a
// slash, such as UTC, is all Region.
func NewTimeZone(text string) core.TimeZone {
	if text == "Z" || strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		return core.ISOTimeZone{Offset: text}
	}
	region, name, _ := strings.Cut(text, "/")
	return core.IANATimeZone{Region: region, Name: name}
}

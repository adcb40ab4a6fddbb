package core

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Tag names the value type of a literal.
//
// Integral and Fractional are grouping tags: they mark a numeral whose
// concrete type the lexer could not decide and are never the intrinsic type
// of a literal. TagNone means the literal's syntax already decides its type.
type Tag int

// Tag values.
const (
	TagNone Tag = iota
	TagBoolean
	TagLong
	TagDouble
	TagDecimal
	TagDate
	TagDateTime
	TagDateTimeTZ
	TagDuration
	TagString
	TagIntegral   // Long or Decimal
	TagFractional // Double or Decimal
)

var tagNames = [...]string{
	TagNone:       "",
	TagBoolean:    "Boolean",
	TagLong:       "Long",
	TagDouble:     "Double",
	TagDecimal:    "Decimal",
	TagDate:       "Date",
	TagDateTime:   "DateTime",
	TagDateTimeTZ: "DateTimeTZ",
	TagDuration:   "Duration",
	TagString:     "String",
	TagIntegral:   "Integral",
	TagFractional: "Fractional",
}

func (t Tag) String() string {
	if t < 0 || int(t) >= len(tagNames) {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return tagNames[t]
}

// ParseTag returns the tag named s, ignoring case. The empty name is
// TagNone.
func ParseTag(s string) (Tag, bool) {
	for t := TagNone; t <= TagFractional; t++ {
		if strings.EqualFold(tagNames[t], s) {
			return t, true
		}
	}
	return TagNone, false
}

// IsGrouping reports whether t is an ambiguity tag.
func (t Tag) IsGrouping() bool {
	return t == TagIntegral || t == TagFractional
}

// ValueLiteral is the payload of a Literal.
//
// This is a sealed interface. Implementations: *BooleanLiteral,
// *SignedIntegerLiteral, *SignedDecimalLiteral, *DateLiteral,
// *DateTimeLiteral, *DateTimeTZLiteral, *DurationLiteral, *StringLiteral.
// Numeric and temporal fragments are verbatim digit strings; interpreting
// them is left to the consumer (see pkg/value).
type ValueLiteral interface {
	format.Node
	fmt.Stringer
	valueLiteral()
}

// Sign is the sign of a numeral or exponent.
type Sign int8

// Signs. The zero value is Plus, which prints as nothing.
const (
	Plus Sign = iota
	Minus
)

func (s Sign) String() string {
	if s == Minus {
		return "-"
	}
	return ""
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	Value bool
}

// SignedIntegerLiteral is an integral numeral.
type SignedIntegerLiteral struct {
	Sign     Sign
	Integral string
}

// Exponent is the signed exponent of a decimal numeral.
type Exponent struct {
	Sign   Sign
	Digits string
}

// SignedDecimalLiteral is a numeral with an optional fraction and exponent.
// Fractional is empty when absent; Exponent is nil when absent.
type SignedDecimalLiteral struct {
	Sign       Sign
	Integral   string
	Fractional string
	Exponent   *Exponent
}

// DateFragment holds the digits of a calendar date.
type DateFragment struct {
	Year  string
	Month string
	Day   string
}

// TimeFragment holds the digits of a time of day. Second and
// SecondFraction are empty when absent.
type TimeFragment struct {
	Hour           string
	Minute         string
	Second         string
	SecondFraction string
}

// TimeZone is either an IANA zone or a fixed ISO offset.
//
// This is a sealed interface. Implementations: IANATimeZone, ISOTimeZone.
type TimeZone interface {
	format.Node
	timeZone()
}

// IANATimeZone is a named zone such as Europe/London. Name keeps any
// further slashes (America/Argentina/Buenos_Aires has Name
// "Argentina/Buenos_Aires").
type IANATimeZone struct {
	Region string
	Name   string
}

// String returns the zone name. Zones without a slash, such as UTC, have
// an empty Name.
func (z IANATimeZone) String() string {
	if z.Name == "" {
		return z.Region
	}
	return z.Region + "/" + z.Name
}

// ISOTimeZone is a fixed offset such as "Z", "+01:00" or "-0530".
type ISOTimeZone struct {
	Offset string
}

// DateLiteral is a calendar date.
type DateLiteral struct {
	Date DateFragment
}

// DateTimeLiteral is a date and time without zone.
type DateTimeLiteral struct {
	Date DateFragment
	Time TimeFragment
}

// DateTimeTZLiteral is a date and time in a zone.
type DateTimeTZLiteral struct {
	Date     DateFragment
	Time     TimeFragment
	TimeZone TimeZone
}

// DurationDateUnit is the unit of the date part of a duration.
type DurationDateUnit int

// Date part units.
const (
	Years DurationDateUnit = iota
	Months
	Weeks
)

// DurationTimeUnit is the unit of the time part of a duration.
type DurationTimeUnit int

// Time part units.
const (
	Days DurationTimeUnit = iota
	Hours
	Minutes
	Seconds
)

// DurationDate is the date part of a duration.
type DurationDate struct {
	Unit  DurationDateUnit
	Value string
}

// DurationTime is the time part of a duration. Seconds may carry a
// fraction ("1.5").
type DurationTime struct {
	Unit  DurationTimeUnit
	Value string
}

// DurationLiteral is an ISO 8601 duration. Either part may be nil.
type DurationLiteral struct {
	Date *DurationDate
	Time *DurationTime
}

// StringLiteral holds already unescaped string content.
type StringLiteral struct {
	Value string
}

func (*BooleanLiteral) valueLiteral()       {}
func (*SignedIntegerLiteral) valueLiteral() {}
func (*SignedDecimalLiteral) valueLiteral() {}
func (*DateLiteral) valueLiteral()          {}
func (*DateTimeLiteral) valueLiteral()      {}
func (*DateTimeTZLiteral) valueLiteral()    {}
func (*DurationLiteral) valueLiteral()      {}
func (*StringLiteral) valueLiteral()        {}

func (IANATimeZone) timeZone() {}
func (ISOTimeZone) timeZone()  {}

// ---------- Printing ----------

// FormatInline implements format.Node.
func (l *BooleanLiteral) FormatInline(p *format.Printer) {
	if l.Value {
		p.Keyword(token.TRUE)
	} else {
		p.Keyword(token.FALSE)
	}
}

// FormatInline implements format.Node.
func (l *SignedIntegerLiteral) FormatInline(p *format.Printer) {
	p.Write(l.Sign.String())
	p.Write(l.Integral)
}

// FormatInline implements format.Node.
func (l *SignedDecimalLiteral) FormatInline(p *format.Printer) {
	p.Write(l.Sign.String())
	p.Write(l.Integral)
	if l.Fractional != "" {
		p.Write(".")
		p.Write(l.Fractional)
	}
	if l.Exponent != nil {
		p.Write("e")
		p.Write(l.Exponent.Sign.String())
		p.Write(l.Exponent.Digits)
	}
}

// FormatInline implements format.Node.
func (d DateFragment) FormatInline(p *format.Printer) {
	p.Write(d.Year)
	p.Write("-")
	p.Write(d.Month)
	p.Write("-")
	p.Write(d.Day)
}

// FormatInline implements format.Node.
func (t TimeFragment) FormatInline(p *format.Printer) {
	p.Write(t.Hour)
	p.Write(":")
	p.Write(t.Minute)
	if t.Second != "" {
		p.Write(":")
		p.Write(t.Second)
		if t.SecondFraction != "" {
			p.Write(".")
			p.Write(t.SecondFraction)
		}
	}
}

// FormatInline implements format.Node.
func (z IANATimeZone) FormatInline(p *format.Printer) {
	p.Write(z.String())
}

// FormatInline implements format.Node.
func (z ISOTimeZone) FormatInline(p *format.Printer) {
	p.Write(z.Offset)
}

// FormatInline implements format.Node.
func (l *DateLiteral) FormatInline(p *format.Printer) {
	l.Date.FormatInline(p)
}

// FormatInline implements format.Node.
func (l *DateTimeLiteral) FormatInline(p *format.Printer) {
	l.Date.FormatInline(p)
	p.Write("T")
	l.Time.FormatInline(p)
}

// FormatInline implements format.Node.
func (l *DateTimeTZLiteral) FormatInline(p *format.Printer) {
	l.Date.FormatInline(p)
	p.Write("T")
	l.Time.FormatInline(p)
	// Named zones are separated by a space, offsets attach directly.
	if _, ok := l.TimeZone.(IANATimeZone); ok {
		p.Space()
	}
	l.TimeZone.FormatInline(p)
}

var dateUnitDesignators = [...]string{Years: "Y", Months: "M", Weeks: "W"}

var timeUnitDesignators = [...]string{Days: "D", Hours: "H", Minutes: "M", Seconds: "S"}

// FormatInline implements format.Node. A duration with neither part prints
// as the zero duration PT0S.
func (l *DurationLiteral) FormatInline(p *format.Printer) {
	p.Write("P")
	if l.Date == nil && l.Time == nil {
		p.Write("T0S")
		return
	}
	if l.Date != nil {
		p.Write(l.Date.Value)
		p.Write(dateUnitDesignators[l.Date.Unit])
	}
	if l.Time != nil {
		if l.Time.Unit != Days {
			p.Write("T")
		}
		p.Write(l.Time.Value)
		p.Write(timeUnitDesignators[l.Time.Unit])
	}
}

// FormatInline implements format.Node. The content is re-escaped inside
// double quotes.
func (l *StringLiteral) FormatInline(p *format.Printer) {
	p.Write(QuoteString(l.Value))
}

// QuoteString returns s as a double-quoted literal using the escapes the
// decoder understands. Bytes that are not valid UTF-8 are written as they
// are, which is how the decoder keeps them.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++
			continue
		}
		i += size
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (l *BooleanLiteral) String() string       { return format.String(l) }
func (l *SignedIntegerLiteral) String() string { return format.String(l) }
func (l *SignedDecimalLiteral) String() string { return format.String(l) }
func (l *DateLiteral) String() string          { return format.String(l) }
func (l *DateTimeLiteral) String() string      { return format.String(l) }
func (l *DateTimeTZLiteral) String() string    { return format.String(l) }
func (l *DurationLiteral) String() string      { return format.String(l) }
func (l *StringLiteral) String() string        { return format.String(l) }

// ---------- Literal ----------

// Literal is a decoded constant with an optional type tag.
type Literal struct {
	spanned
	Tag   Tag
	Value ValueLiteral
}

// NewLiteral wraps a value with a tag (TagNone for none) and a span.
func NewLiteral(span token.Span, tag Tag, value ValueLiteral) *Literal {
	return &Literal{spanned: spanned{span: span}, Tag: tag, Value: value}
}

// HasTag reports whether the literal carries a tag.
func (l *Literal) HasTag() bool {
	return l.Tag != TagNone
}

// decimalSuffix marks a numeral as an exact decimal.
const decimalSuffix = "dec"

// FormatInline implements format.Node.
//
// A decimal prints with the "dec" suffix unless it is tagged as a fraction
// of undecided or binary type and has a fraction or exponent to re-lex as
// one, so that an untagged decimal never decodes back as an integer.
func (l *Literal) FormatInline(p *format.Printer) {
	l.Value.FormatInline(p)
	if d, ok := l.Value.(*SignedDecimalLiteral); ok && needsDecimalSuffix(l.Tag, d) {
		p.Write(decimalSuffix)
	}
}

func needsDecimalSuffix(tag Tag, d *SignedDecimalLiteral) bool {
	if d.Fractional == "" && d.Exponent == nil {
		return true
	}
	return tag != TagFractional && tag != TagDouble
}

// FormatPretty implements format.Pretty. Literals ignore the indent.
func (l *Literal) FormatPretty(p *format.Printer, _ int) {
	l.FormatInline(p)
}

func (l *Literal) String() string {
	return format.String(l)
}

// Equal reports structural equality, ignoring spans.
func (l *Literal) Equal(other *Literal) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Tag == other.Tag && EqualValues(l.Value, other.Value)
}

// EqualValues reports whether two value literals are structurally equal.
func EqualValues(a, b ValueLiteral) bool {
	switch a := a.(type) {
	case *BooleanLiteral:
		b, ok := b.(*BooleanLiteral)
		return ok && *a == *b
	case *SignedIntegerLiteral:
		b, ok := b.(*SignedIntegerLiteral)
		return ok && *a == *b
	case *SignedDecimalLiteral:
		b, ok := b.(*SignedDecimalLiteral)
		if !ok || a.Sign != b.Sign || a.Integral != b.Integral || a.Fractional != b.Fractional {
			return false
		}
		if a.Exponent == nil || b.Exponent == nil {
			return a.Exponent == nil && b.Exponent == nil
		}
		return *a.Exponent == *b.Exponent
	case *DateLiteral:
		b, ok := b.(*DateLiteral)
		return ok && *a == *b
	case *DateTimeLiteral:
		b, ok := b.(*DateTimeLiteral)
		return ok && *a == *b
	case *DateTimeTZLiteral:
		b, ok := b.(*DateTimeTZLiteral)
		return ok && a.Date == b.Date && a.Time == b.Time && a.TimeZone == b.TimeZone
	case *DurationLiteral:
		b, ok := b.(*DurationLiteral)
		if !ok {
			return false
		}
		return equalPtr(a.Date, b.Date) && equalPtr(a.Time, b.Time)
	case *StringLiteral:
		b, ok := b.(*StringLiteral)
		return ok && *a == *b
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("core: unknown value literal %T", a))
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Variant returns the name of the value literal's variant.
func Variant(v ValueLiteral) string {
	switch v.(type) {
	case *BooleanLiteral:
		return "Boolean"
	case *SignedIntegerLiteral:
		return "Integer"
	case *SignedDecimalLiteral:
		return "Decimal"
	case *DateLiteral:
		return "Date"
	case *DateTimeLiteral:
		return "DateTime"
	case *DateTimeTZLiteral:
		return "DateTimeTz"
	case *DurationLiteral:
		return "Duration"
	case *StringLiteral:
		return "String"
	default:
		panic(fmt.Sprintf("core: unknown value literal %T", v))
	}
}

package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/leapstack-labs/leapql/pkg/core"
)

// decimalContext is used for exact decimal arithmetic on durations.
var decimalContext = apd.BaseContext.WithPrecision(38)

var nanosPerSecond = apd.New(1, 9)

// Interpret converts a literal into a value. Grouping tags resolve to their
// binary type (Integral to Long, Fractional to Double), falling back to an
// exact Decimal when the binary type cannot hold the numeral; an untagged
// decimal is exact. Explicit tags are honored where they name a numeric
// type.
func Interpret(lit *core.Literal) (Value, error) {
	switch v := lit.Value.(type) {
	case *core.BooleanLiteral:
		return Value{Kind: KindBoolean, Bool: v.Value}, nil
	case *core.SignedIntegerLiteral:
		return interpretNumeral(v.Sign.String()+v.Integral, lit.Tag, KindLong)
	case *core.SignedDecimalLiteral:
		return interpretNumeral(decimalText(v), lit.Tag, KindDecimal)
	case *core.DateLiteral:
		t, err := makeTime(v.Date, core.TimeFragment{Hour: "00", Minute: "00"}, time.UTC)
		return Value{Kind: KindDate, Time: t}, err
	case *core.DateTimeLiteral:
		t, err := makeTime(v.Date, v.Time, time.UTC)
		return Value{Kind: KindDateTime, Time: t}, err
	case *core.DateTimeTZLiteral:
		loc, err := Location(v.TimeZone)
		if err != nil {
			return Value{}, err
		}
		t, err := makeTime(v.Date, v.Time, loc)
		return Value{Kind: KindDateTimeTZ, Time: t}, err
	case *core.DurationLiteral:
		d, err := interpretDuration(v)
		return Value{Kind: KindDuration, Duration: d}, err
	case *core.StringLiteral:
		return Value{Kind: KindString, Str: v.Value}, nil
	default:
		panic(fmt.Sprintf("value: unknown value literal %T", v))
	}
}

// numericKind picks the value kind for a numeral with the given tag.
func numericKind(tag core.Tag, untagged Kind) Kind {
	switch tag {
	case core.TagLong, core.TagIntegral:
		return KindLong
	case core.TagDouble, core.TagFractional:
		return KindDouble
	case core.TagDecimal:
		return KindDecimal
	default:
		return untagged
	}
}

func decimalText(d *core.SignedDecimalLiteral) string {
	var b strings.Builder
	b.WriteString(d.Sign.String())
	b.WriteString(d.Integral)
	if d.Fractional != "" {
		b.WriteString(".")
		b.WriteString(d.Fractional)
	}
	if d.Exponent != nil {
		b.WriteString("e")
		b.WriteString(d.Exponent.Sign.String())
		b.WriteString(d.Exponent.Digits)
	}
	return b.String()
}

// interpretNumeral interprets a numeral under its tag. A grouping tag keeps
// Decimal open, so a numeral too large for the binary type becomes one.
func interpretNumeral(text string, tag core.Tag, untagged Kind) (Value, error) {
	v, err := interpretNumber(text, numericKind(tag, untagged))
	if err != nil && (tag == core.TagIntegral || tag == core.TagFractional) {
		var rangeErr *RangeError
		if errors.As(err, &rangeErr) {
			return interpretNumber(text, KindDecimal)
		}
	}
	return v, err
}

func interpretNumber(text string, kind Kind) (Value, error) {
	switch kind {
	case KindLong:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return Value{}, &RangeError{Field: "long", Value: text, Reason: "out of range for a 64-bit integer"}
			}
			return Value{}, &RangeError{Field: "long", Value: text, Reason: "not an integer"}
		}
		return Value{Kind: KindLong, Long: n}, nil
	case KindDouble:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsInf(f, 0) {
			return Value{}, &RangeError{Field: "double", Value: text, Reason: "out of range for a 64-bit float"}
		}
		return Value{Kind: KindDouble, Double: f}, nil
	default:
		d, _, err := apd.NewFromString(text)
		if err != nil {
			return Value{}, &RangeError{Field: "decimal", Value: text, Reason: err.Error()}
		}
		return Value{Kind: KindDecimal, Decimal: d}, nil
	}
}

// ---------- Temporal ----------

func field(name, text string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < lo || n > hi {
		return 0, &RangeError{Field: name, Value: text, Reason: fmt.Sprintf("must be between %d and %d", lo, hi)}
	}
	return n, nil
}

func makeTime(d core.DateFragment, t core.TimeFragment, loc *time.Location) (time.Time, error) {
	year, err := field("year", d.Year, 0, 999999)
	if err != nil {
		return time.Time{}, err
	}
	month, err := field("month", d.Month, 1, 12)
	if err != nil {
		return time.Time{}, err
	}
	day, err := field("day", d.Day, 1, 31)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := field("hour", t.Hour, 0, 23)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := field("minute", t.Minute, 0, 59)
	if err != nil {
		return time.Time{}, err
	}
	var sec, nsec int
	if t.Second != "" {
		if sec, err = field("second", t.Second, 0, 59); err != nil {
			return time.Time{}, err
		}
	}
	if t.SecondFraction != "" {
		if len(t.SecondFraction) > 9 {
			return time.Time{}, &RangeError{Field: "second fraction", Value: t.SecondFraction, Reason: "more than nanosecond precision"}
		}
		nsec, _ = strconv.Atoi(t.SecondFraction + strings.Repeat("0", 9-len(t.SecondFraction)))
	}

	out := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, loc)
	// time.Date normalizes February 30 into March.
	if out.Day() != day {
		return time.Time{}, &RangeError{
			Field:  "day",
			Value:  d.Day,
			Reason: fmt.Sprintf("%s %d has %d days", time.Month(month), year, daysIn(year, time.Month(month))),
		}
	}
	return out, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Location resolves a time zone. Named zones are looked up in the system
// zone database; offsets become fixed zones.
func Location(z core.TimeZone) (*time.Location, error) {
	switch z := z.(type) {
	case core.IANATimeZone:
		name := z.String()
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, &RangeError{Field: "time zone", Value: name, Reason: "unknown zone"}
		}
		return loc, nil
	case core.ISOTimeZone:
		offset, err := parseOffset(z.Offset)
		if err != nil {
			return nil, err
		}
		if offset == 0 {
			return time.UTC, nil
		}
		return time.FixedZone(z.Offset, offset), nil
	default:
		panic(fmt.Sprintf("value: unknown time zone %T", z))
	}
}

// parseOffset returns the offset in seconds east of UTC for "Z", "+hh",
// "+hhmm" or "+hh:mm".
func parseOffset(text string) (int, error) {
	if text == "Z" {
		return 0, nil
	}
	if len(text) < 3 || (text[0] != '+' && text[0] != '-') {
		return 0, &RangeError{Field: "offset", Value: text, Reason: "expected Z or a signed hour offset"}
	}
	rest := strings.TrimPrefix(text[3:], ":")
	hours, err := field("offset", text[1:3], 0, 18)
	if err != nil {
		return 0, err
	}
	var minutes int
	if rest != "" {
		if minutes, err = field("offset", rest, 0, 59); err != nil {
			return 0, err
		}
	}
	seconds := hours*3600 + minutes*60
	if text[0] == '-' {
		seconds = -seconds
	}
	return seconds, nil
}

// ---------- Duration ----------

func interpretDuration(l *core.DurationLiteral) (Duration, error) {
	var d Duration
	if l.Date != nil {
		n, err := durationCount(l.Date.Value)
		if err != nil {
			return Duration{}, err
		}
		switch l.Date.Unit {
		case core.Years:
			if n > math.MaxInt64/12 {
				return Duration{}, &RangeError{Field: "duration", Value: l.Date.Value, Reason: "too many years"}
			}
			d.Months = n * 12
		case core.Months:
			d.Months = n
		case core.Weeks:
			if n > math.MaxInt64/7 {
				return Duration{}, &RangeError{Field: "duration", Value: l.Date.Value, Reason: "too many weeks"}
			}
			d.Days = n * 7
		}
	}
	if l.Time != nil {
		switch l.Time.Unit {
		case core.Days:
			n, err := durationCount(l.Time.Value)
			if err != nil {
				return Duration{}, err
			}
			if n > math.MaxInt64-d.Days {
				return Duration{}, &RangeError{Field: "duration", Value: l.Time.Value, Reason: "too many days"}
			}
			d.Days += n
		case core.Hours, core.Minutes, core.Seconds:
			nanos, err := durationNanos(l.Time)
			if err != nil {
				return Duration{}, err
			}
			d.Nanos = nanos
		}
	}
	return d, nil
}

func durationCount(text string) (int64, error) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &RangeError{Field: "duration", Value: text, Reason: "out of range for a 64-bit integer"}
	}
	return n, nil
}

var unitSeconds = map[core.DurationTimeUnit]int64{
	core.Hours:   3600,
	core.Minutes: 60,
	core.Seconds: 1,
}

// durationNanos scales the time part to nanoseconds exactly, rejecting
// fractions finer than a nanosecond.
func durationNanos(t *core.DurationTime) (int64, error) {
	amount, _, err := apd.NewFromString(t.Value)
	if err != nil {
		return 0, &RangeError{Field: "duration", Value: t.Value, Reason: err.Error()}
	}
	var nanos apd.Decimal
	if _, err := decimalContext.Mul(&nanos, amount, apd.New(unitSeconds[t.Unit], 0)); err != nil {
		return 0, &RangeError{Field: "duration", Value: t.Value, Reason: err.Error()}
	}
	if _, err := decimalContext.Mul(&nanos, &nanos, nanosPerSecond); err != nil {
		return 0, &RangeError{Field: "duration", Value: t.Value, Reason: err.Error()}
	}
	n, err := nanos.Int64()
	if err != nil {
		return 0, &RangeError{Field: "duration", Value: t.Value, Reason: "not a whole number of nanoseconds within range"}
	}
	return n, nil
}

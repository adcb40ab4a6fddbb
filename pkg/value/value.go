// Package value interprets decoded literals as Go values.
//
// The AST keeps numeric and temporal fragments as verbatim digit strings.
// This package is the downstream consumer that gives them magnitude: it
// parses the digits, resolves ambiguity tags with a default policy and
// validates ranges (months, days, clock fields, offsets, overflow).
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Kind is the concrete type of an interpreted value.
type Kind int

// Kinds.
const (
	KindBoolean Kind = iota
	KindLong
	KindDouble
	KindDecimal
	KindDate
	KindDateTime
	KindDateTimeTZ
	KindDuration
	KindString
)

var kindNames = [...]string{
	KindBoolean:    "boolean",
	KindLong:       "long",
	KindDouble:     "double",
	KindDecimal:    "decimal",
	KindDate:       "date",
	KindDateTime:   "datetime",
	KindDateTimeTZ: "datetime-tz",
	KindDuration:   "duration",
	KindString:     "string",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Duration is a calendar-aware duration. Months and days are kept apart
// from the fixed-length part because their length depends on the date they
// are added to.
type Duration struct {
	Months int64
	Days   int64
	Nanos  int64
}

// String renders d in ISO 8601 form with every non-zero component.
func (d Duration) String() string {
	if d == (Duration{}) {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteString("P")
	if y, m := d.Months/12, d.Months%12; y != 0 || m != 0 {
		if y != 0 {
			fmt.Fprintf(&b, "%dY", y)
		}
		if m != 0 {
			fmt.Fprintf(&b, "%dM", m)
		}
	}
	if d.Days != 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}
	if d.Nanos != 0 {
		b.WriteString("T")
		rest := time.Duration(d.Nanos)
		if h := rest / time.Hour; h != 0 {
			fmt.Fprintf(&b, "%dH", h)
			rest -= h * time.Hour
		}
		if m := rest / time.Minute; m != 0 {
			fmt.Fprintf(&b, "%dM", m)
			rest -= m * time.Minute
		}
		if rest != 0 {
			b.WriteString(strconv.FormatFloat(rest.Seconds(), 'f', -1, 64))
			b.WriteString("S")
		}
	}
	return b.String()
}

// Value is an interpreted literal. Only the field matching Kind is set.
type Value struct {
	Kind     Kind
	Bool     bool
	Long     int64
	Double   float64
	Decimal  *apd.Decimal
	Time     time.Time // Date, DateTime (UTC) and DateTimeTZ
	Duration Duration
	Str      string
}

// Any returns the Go value held by v.
func (v Value) Any() any {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindLong:
		return v.Long
	case KindDouble:
		return v.Double
	case KindDecimal:
		return v.Decimal
	case KindDate, KindDateTime, KindDateTimeTZ:
		return v.Time
	case KindDuration:
		return v.Duration
	case KindString:
		return v.Str
	}
	return nil
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindLong:
		return strconv.FormatInt(v.Long, 10)
	case KindDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case KindDecimal:
		return v.Decimal.String()
	case KindDate:
		return v.Time.Format(time.DateOnly)
	case KindDateTime:
		return v.Time.Format("2006-01-02T15:04:05.999999999")
	case KindDateTimeTZ:
		s := v.Time.Format("2006-01-02T15:04:05.999999999Z07:00")
		if name := v.Time.Location().String(); strings.Contains(name, "/") {
			s += " " + name
		}
		return s
	case KindDuration:
		return v.Duration.String()
	case KindString:
		return v.Str
	}
	return fmt.Sprintf("Value(%d)", int(v.Kind))
}

// RangeError reports a fragment that is syntactically valid but names no
// value: month 13, hour 24, an unknown zone, an overflowing integer.
type RangeError struct {
	Field  string // what was being interpreted, e.g. "month"
	Value  string // the offending text
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

package value_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/leapstack-labs/leapql/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interpret(t *testing.T, input string) (value.Value, error) {
	t.Helper()
	lit, err := parser.ParseLiteral(input)
	require.NoError(t, err)
	return value.Interpret(lit)
}

func TestInterpretNumbers(t *testing.T) {
	tests := []struct {
		input string
		kind  value.Kind
		want  string
	}{
		{"12", value.KindLong, "12"},
		{"-7", value.KindLong, "-7"},
		{"1.5", value.KindDouble, "1.5"},
		{"2.5e-3", value.KindDouble, "0.0025"},
		{"1.50dec", value.KindDecimal, "1.50"},
		{"12dec", value.KindDecimal, "12"},
		{"-0.125dec", value.KindDecimal, "-0.125"},
		{"true", value.KindBoolean, "true"},
		{`"a\tb"`, value.KindString, "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := interpret(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestInterpretHonorsContext(t *testing.T) {
	tests := []struct {
		input   string
		context core.Tag
		kind    value.Kind
	}{
		{"12", core.TagLong, value.KindLong},
		{"12", core.TagDouble, value.KindDouble},
		{"12", core.TagDecimal, value.KindDecimal},
		{"1.5", core.TagDecimal, value.KindDecimal},
		{"1.5", core.TagDouble, value.KindDouble},
	}

	for _, tt := range tests {
		t.Run(tt.input+" as "+tt.context.String(), func(t *testing.T) {
			lit, err := parser.ParseLiteralAs(tt.input, tt.context)
			require.NoError(t, err)
			v, err := value.Interpret(lit)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)
		})
	}
}

func TestInterpretOverflow(t *testing.T) {
	// Grouping tags leave Decimal open.
	v, err := interpret(t, "9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, value.KindDecimal, v.Kind)
	assert.Equal(t, "9223372036854775808", v.String())

	v, err = interpret(t, "-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, value.KindLong, v.Kind)

	v, err = interpret(t, "1e400")
	require.NoError(t, err)
	assert.Equal(t, value.KindDecimal, v.Kind)

	// An explicit binary type does not.
	tests := []struct {
		input   string
		context core.Tag
		field   string
	}{
		{"9223372036854775808", core.TagLong, "long"},
		{"1e400", core.TagDouble, "double"},
	}
	for _, tt := range tests {
		t.Run(tt.input+" as "+tt.context.String(), func(t *testing.T) {
			lit, err := parser.ParseLiteralAs(tt.input, tt.context)
			require.NoError(t, err)
			_, err = value.Interpret(lit)
			var rangeErr *value.RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
		})
	}
}

func TestInterpretDecimalIsExact(t *testing.T) {
	v, err := interpret(t, "0.1dec")
	require.NoError(t, err)
	require.NotNil(t, v.Decimal)
	assert.Equal(t, int32(-1), v.Decimal.Exponent)
	assert.Equal(t, int64(1), v.Decimal.Coeff.Int64())
}

func TestInterpretTemporal(t *testing.T) {
	tests := []struct {
		input string
		kind  value.Kind
		want  time.Time
	}{
		{"2024-02-29", value.KindDate, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"2024-01-31T10:30", value.KindDateTime, time.Date(2024, 1, 31, 10, 30, 0, 0, time.UTC)},
		{"2024-01-31T10:30:05.25", value.KindDateTime, time.Date(2024, 1, 31, 10, 30, 5, 250_000_000, time.UTC)},
		{"2024-01-31T10:30:00.123456789Z", value.KindDateTimeTZ, time.Date(2024, 1, 31, 10, 30, 0, 123456789, time.UTC)},
		{"2024-01-31T10:30+01:00", value.KindDateTimeTZ, time.Date(2024, 1, 31, 9, 30, 0, 0, time.UTC)},
		{"2024-01-31T10:30-0530", value.KindDateTimeTZ, time.Date(2024, 1, 31, 16, 0, 0, 0, time.UTC)},
		{"2024-07-01T12:00 Europe/London", value.KindDateTimeTZ, time.Date(2024, 7, 1, 11, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := interpret(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)
			assert.True(t, tt.want.Equal(v.Time), "got %s", v.Time)
		})
	}
}

func TestInterpretTemporalString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-02-29", "2024-02-29"},
		{"2024-01-31T10:30", "2024-01-31T10:30:00"},
		{"2024-01-31T10:30:00.5Z", "2024-01-31T10:30:00.5Z"},
		{"2024-01-31T10:30+01:00", "2024-01-31T10:30:00+01:00"},
		{"2024-01-31T10:30 Europe/London", "2024-01-31T10:30:00Z Europe/London"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := interpret(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestInterpretDuration(t *testing.T) {
	tests := []struct {
		input string
		want  value.Duration
		text  string
	}{
		{"P1Y", value.Duration{Months: 12}, "P1Y"},
		{"P14M", value.Duration{Months: 14}, "P1Y2M"},
		{"P3W", value.Duration{Days: 21}, "P21D"},
		{"P2D", value.Duration{Days: 2}, "P2D"},
		{"PT2H", value.Duration{Nanos: int64(2 * time.Hour)}, "PT2H"},
		{"PT90M", value.Duration{Nanos: int64(90 * time.Minute)}, "PT1H30M"},
		{"PT1.5S", value.Duration{Nanos: int64(1500 * time.Millisecond)}, "PT1.5S"},
		{"PT0.000000001S", value.Duration{Nanos: 1}, "PT0.000000001S"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := interpret(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, value.KindDuration, v.Kind)
			assert.Equal(t, tt.want, v.Duration)
			assert.Equal(t, tt.text, v.String())
		})
	}
}

func TestEmptyDuration(t *testing.T) {
	lit := core.NewLiteral(token.NoSpan, core.TagNone, &core.DurationLiteral{})
	v, err := value.Interpret(lit)
	require.NoError(t, err)
	assert.Equal(t, value.Duration{}, v.Duration)
	assert.Equal(t, "PT0S", v.String())
}

func TestInterpretRangeErrors(t *testing.T) {
	tests := []struct {
		input string
		field string
	}{
		{"2024-13-01", "month"},
		{"2024-00-10", "month"},
		{"2023-02-29", "day"},
		{"2024-04-31", "day"},
		{"2024-01-32", "day"},
		{"2024-01-31T24:00", "hour"},
		{"2024-01-31T10:60", "minute"},
		{"2024-01-31T10:30:60", "second"},
		{"2024-01-31T10:30:00.1234567891", "second fraction"},
		{"2024-01-31T10:30+19:00", "offset"},
		{"2024-01-31T10:30+01:75", "offset"},
		{"2024-01-31T10:30 Mars/Olympus_Mons", "time zone"},
		{"PT0.0000000001S", "duration"},
		{"P9223372036854775807Y", "duration"},
		{"P1W9223372036854775807D", "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := interpret(t, tt.input)
			require.Error(t, err)

			var rangeErr *value.RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.field, rangeErr.Field)
			assert.Contains(t, err.Error(), "invalid "+tt.field)
		})
	}
}

func TestLocation(t *testing.T) {
	loc, err := value.Location(core.ISOTimeZone{Offset: "Z"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = value.Location(core.ISOTimeZone{Offset: "+05"})
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600, offset)

	loc, err = value.Location(core.IANATimeZone{Region: "America", Name: "Argentina/Buenos_Aires"})
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", loc.String())

	loc, err = value.Location(core.IANATimeZone{Region: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestValueAny(t *testing.T) {
	v, err := interpret(t, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Any())

	v, err = interpret(t, "'x'")
	require.NoError(t, err)
	assert.Equal(t, "x", v.Any())

	assert.Equal(t, "datetime-tz", value.KindDateTimeTZ.String())
}

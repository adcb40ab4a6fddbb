package core_test

import (
	"testing"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/stretchr/testify/assert"
)

func TestLiteralString(t *testing.T) {
	tests := []struct {
		name    string
		literal *core.Literal
		want    string
	}{
		{
			name:    "true",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.BooleanLiteral{Value: true}),
			want:    "true",
		},
		{
			name:    "false",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.BooleanLiteral{}),
			want:    "false",
		},
		{
			name:    "integral",
			literal: core.NewLiteral(token.NoSpan, core.TagIntegral, &core.SignedIntegerLiteral{Integral: "42"}),
			want:    "42",
		},
		{
			name:    "negative integer",
			literal: core.NewLiteral(token.NoSpan, core.TagLong, &core.SignedIntegerLiteral{Sign: core.Minus, Integral: "7"}),
			want:    "-7",
		},
		{
			name: "fractional",
			literal: core.NewLiteral(token.NoSpan, core.TagFractional,
				&core.SignedDecimalLiteral{Integral: "3", Fractional: "14"}),
			want: "3.14",
		},
		{
			name: "double with exponent",
			literal: core.NewLiteral(token.NoSpan, core.TagDouble,
				&core.SignedDecimalLiteral{Sign: core.Minus, Integral: "1", Fractional: "5", Exponent: &core.Exponent{Sign: core.Minus, Digits: "3"}}),
			want: "-1.5e-3",
		},
		{
			name:    "untagged decimal",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.SignedDecimalLiteral{Integral: "3", Fractional: "14"}),
			want:    "3.14dec",
		},
		{
			name:    "decimal without fraction",
			literal: core.NewLiteral(token.NoSpan, core.TagFractional, &core.SignedDecimalLiteral{Integral: "12"}),
			want:    "12dec",
		},
		{
			name: "date",
			literal: core.NewLiteral(token.NoSpan, core.TagNone,
				&core.DateLiteral{Date: core.DateFragment{Year: "2024", Month: "01", Day: "31"}}),
			want: "2024-01-31",
		},
		{
			name: "datetime with fraction",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.DateTimeLiteral{
				Date: core.DateFragment{Year: "2024", Month: "01", Day: "31"},
				Time: core.TimeFragment{Hour: "10", Minute: "30", Second: "00", SecondFraction: "5"},
			}),
			want: "2024-01-31T10:30:00.5",
		},
		{
			name: "datetime without seconds",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.DateTimeLiteral{
				Date: core.DateFragment{Year: "2024", Month: "01", Day: "31"},
				Time: core.TimeFragment{Hour: "10", Minute: "30"},
			}),
			want: "2024-01-31T10:30",
		},
		{
			name: "datetime with offset",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.DateTimeTZLiteral{
				Date:     core.DateFragment{Year: "2024", Month: "01", Day: "31"},
				Time:     core.TimeFragment{Hour: "10", Minute: "30"},
				TimeZone: core.ISOTimeZone{Offset: "+01:00"},
			}),
			want: "2024-01-31T10:30+01:00",
		},
		{
			name: "datetime with named zone",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.DateTimeTZLiteral{
				Date:     core.DateFragment{Year: "2024", Month: "01", Day: "31"},
				Time:     core.TimeFragment{Hour: "10", Minute: "30", Second: "15"},
				TimeZone: core.IANATimeZone{Region: "America", Name: "Argentina/Buenos_Aires"},
			}),
			want: "2024-01-31T10:30:15 America/Argentina/Buenos_Aires",
		},
		{
			name: "duration date part",
			literal: core.NewLiteral(token.NoSpan, core.TagNone,
				&core.DurationLiteral{Date: &core.DurationDate{Unit: core.Weeks, Value: "3"}}),
			want: "P3W",
		},
		{
			name: "duration days",
			literal: core.NewLiteral(token.NoSpan, core.TagNone,
				&core.DurationLiteral{Time: &core.DurationTime{Unit: core.Days, Value: "4"}}),
			want: "P4D",
		},
		{
			name: "duration both parts",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.DurationLiteral{
				Date: &core.DurationDate{Unit: core.Years, Value: "1"},
				Time: &core.DurationTime{Unit: core.Seconds, Value: "1.5"},
			}),
			want: "P1YT1.5S",
		},
		{
			name:    "empty duration",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.DurationLiteral{}),
			want:    "PT0S",
		},
		{
			name:    "string with escapes",
			literal: core.NewLiteral(token.NoSpan, core.TagNone, &core.StringLiteral{Value: "a\t\"b\"\\"}),
			want:    `"a\t\"b\"\\"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.literal.String())
			assert.Equal(t, tt.want, format.Format(tt.literal), "pretty form matches inline form")
			assert.Equal(t, tt.want, format.FormatAt(tt.literal, 3), "literals ignore indentation")
		})
	}
}

func TestQuoteString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"it's", `"it's"`},
		{"line\nbreak", `"line\nbreak"`},
		{"\b\f\r", `"\b\f\r"`},
		{"\x01", `"\u0001"`},
		{"héllo 😀", `"héllo 😀"`},
		{"a\xffb", "\"a\xffb\""},
		{"\uFFFD", "\"\uFFFD\""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, core.QuoteString(tt.in))
		})
	}
}

func TestLiteralEqualIgnoresSpan(t *testing.T) {
	span := token.Span{
		Start: token.Position{Line: 1, Column: 1, Offset: 0},
		End:   token.Position{Line: 1, Column: 3, Offset: 2},
	}
	a := core.NewLiteral(span, core.TagIntegral, &core.SignedIntegerLiteral{Integral: "12"})
	b := core.NewLiteral(token.NoSpan, core.TagIntegral, &core.SignedIntegerLiteral{Integral: "12"})

	assert.True(t, a.Equal(b))
	assert.Equal(t, span, a.Span())
	assert.False(t, a.Equal(core.NewLiteral(token.NoSpan, core.TagLong, &core.SignedIntegerLiteral{Integral: "12"})))
	assert.False(t, a.Equal(core.NewLiteral(token.NoSpan, core.TagIntegral, &core.SignedIntegerLiteral{Integral: "13"})))
	assert.False(t, a.Equal(nil))
}

func TestEqualValues(t *testing.T) {
	exp := func(d string) *core.Exponent { return &core.Exponent{Digits: d} }

	tests := []struct {
		name string
		a, b core.ValueLiteral
		want bool
	}{
		{"same decimal", &core.SignedDecimalLiteral{Integral: "1", Exponent: exp("2")}, &core.SignedDecimalLiteral{Integral: "1", Exponent: exp("2")}, true},
		{"exponent differs", &core.SignedDecimalLiteral{Integral: "1", Exponent: exp("2")}, &core.SignedDecimalLiteral{Integral: "1", Exponent: exp("3")}, false},
		{"exponent missing", &core.SignedDecimalLiteral{Integral: "1"}, &core.SignedDecimalLiteral{Integral: "1", Exponent: exp("3")}, false},
		{"integer vs decimal", &core.SignedIntegerLiteral{Integral: "1"}, &core.SignedDecimalLiteral{Integral: "1"}, false},
		{"same zone", &core.DateTimeTZLiteral{TimeZone: core.ISOTimeZone{Offset: "Z"}}, &core.DateTimeTZLiteral{TimeZone: core.ISOTimeZone{Offset: "Z"}}, true},
		{"zone kind differs", &core.DateTimeTZLiteral{TimeZone: core.ISOTimeZone{Offset: "Z"}}, &core.DateTimeTZLiteral{TimeZone: core.IANATimeZone{Region: "Etc", Name: "UTC"}}, false},
		{"durations", &core.DurationLiteral{Date: &core.DurationDate{Unit: core.Months, Value: "2"}}, &core.DurationLiteral{Date: &core.DurationDate{Unit: core.Months, Value: "2"}}, true},
		{"duration unit differs", &core.DurationLiteral{Time: &core.DurationTime{Unit: core.Hours, Value: "2"}}, &core.DurationLiteral{Time: &core.DurationTime{Unit: core.Minutes, Value: "2"}}, false},
		{"strings", &core.StringLiteral{Value: "x"}, &core.StringLiteral{Value: "x"}, true},
		{"nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.EqualValues(tt.a, tt.b))
		})
	}
}

func TestTag(t *testing.T) {
	assert.Equal(t, "", core.TagNone.String())
	assert.Equal(t, "Integral", core.TagIntegral.String())
	assert.Equal(t, "DateTimeTZ", core.TagDateTimeTZ.String())
	assert.Equal(t, "Tag(99)", core.Tag(99).String())

	assert.True(t, core.TagIntegral.IsGrouping())
	assert.True(t, core.TagFractional.IsGrouping())
	assert.False(t, core.TagDecimal.IsGrouping())
	assert.False(t, core.TagNone.IsGrouping())
}

func TestParseTag(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want core.Tag
		ok   bool
	}{
		{"Long", core.TagLong, true},
		{"decimal", core.TagDecimal, true},
		{"DATETIMETZ", core.TagDateTimeTZ, true},
		{"", core.TagNone, true},
		{"Float", core.TagNone, false},
	} {
		got, ok := core.ParseTag(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVariant(t *testing.T) {
	assert.Equal(t, "Integer", core.Variant(&core.SignedIntegerLiteral{}))
	assert.Equal(t, "Decimal", core.Variant(&core.SignedDecimalLiteral{}))
	assert.Equal(t, "DateTimeTz", core.Variant(&core.DateTimeTZLiteral{}))
	assert.Panics(t, func() { core.Variant(nil) })
}

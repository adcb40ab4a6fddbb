package parser_test

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty double", `""`, ""},
		{"empty single", `''`, ""},
		{"plain", `"hello"`, "hello"},
		{"tab", `"a\tb"`, "a\tb"},
		{"backslash in single quotes", `'\\'`, `\`},
		{"all simple escapes", `"\b\t\n\f\r\"\'\\"`, "\b\t\n\f\r\"'\\"},
		{"other quote unescaped", `'say "hi"'`, `say "hi"`},
		{"multibyte passes through", `"héllo wörld"`, "héllo wörld"},
		{"unicode escape", `"caf\u00e9"`, "caf\u00e9"},
		{"unicode escape upper hex", `"\u00C9"`, "\u00c9"},
		{"surrogate pair", `"\ud83d\ude00"`, "\U0001F600"},
		{"escape at start and end", `"\nx\n"`, "\nx\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.DecodeString(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), len(tt.raw))
		})
	}
}

func TestDecodeStringInvalidEscape(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		escape string
	}{
		{"unknown escape", `"\q"`, `\q`},
		{"trailing backslash", `"abc\"`, `\`},
		{"unknown after text", `'ab\x'`, `\x`},
		{"multibyte after backslash", `"\é"`, `\é`},
		{"short unicode", `"\u12"`, `\u12`},
		{"bad hex", `"\u12G4"`, `\u12G4`},
		{"lone high surrogate", `"\ud83dx"`, `\ud83d`},
		{"lone low surrogate", `"\ude00"`, `\ude00`},
		{"high followed by non surrogate", `"\ud83d\u0041"`, `\ud83d\u0041`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.DecodeString(tt.raw)
			require.Error(t, err)
			assert.Empty(t, got)

			var escErr *core.InvalidStringEscapeError
			require.ErrorAs(t, err, &escErr)
			assert.Equal(t, tt.escape, escErr.Escape)
			assert.Equal(t, tt.raw[1:len(tt.raw)-1], escErr.FullString)
			assert.True(t, errors.Is(err, core.ErrInvalidStringEscape))
		})
	}
}

func TestDecodeStringPanicsOnUnquoted(t *testing.T) {
	for _, raw := range []string{"", `"`, "abc", `"abc'`, `'abc"`} {
		assert.Panics(t, func() { _, _ = parser.DecodeString(raw) }, raw)
	}
}

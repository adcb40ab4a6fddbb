package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leapstack-labs/leapql/pkg/core"
)

// DecodeString returns the content of a quoted string literal with its
// escape sequences resolved. raw must include the delimiting quotes, single
// or double, matching on both ends; the lexer guarantees this and a
// mismatch panics.
//
// Recognised escapes are \b \t \n \f \r \" \' \\ and \uXXXX. A \u escape
// naming a UTF-16 high surrogate must be followed by a \u escape naming the
// low surrogate. Anything else fails with *core.InvalidStringEscapeError.
func DecodeString(raw string) (string, error) {
	if len(raw) < 2 || (raw[0] != '"' && raw[0] != '\'') || raw[len(raw)-1] != raw[0] {
		panic(fmt.Sprintf("parser: DecodeString called with unquoted input %q", raw))
	}
	body := raw[1 : len(raw)-1]
	if strings.IndexByte(body, '\\') < 0 {
		return body, nil
	}

	var out strings.Builder
	out.Grow(len(body))
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			r, size := utf8.DecodeRuneInString(body[i:])
			if r == utf8.RuneError && size == 1 {
				// keep invalid bytes as they are
				out.WriteByte(body[i])
			} else {
				out.WriteRune(r)
			}
			i += size
			continue
		}

		if i+1 >= len(body) {
			return "", &core.InvalidStringEscapeError{FullString: body, Escape: `\`}
		}
		switch c := body[i+1]; c {
		case 'b':
			out.WriteByte('\b')
		case 't':
			out.WriteByte('\t')
		case 'n':
			out.WriteByte('\n')
		case 'f':
			out.WriteByte('\f')
		case 'r':
			out.WriteByte('\r')
		case '"', '\'', '\\':
			out.WriteByte(c)
		case 'u':
			r, n, err := decodeUnicodeEscape(body, i)
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += n
			continue
		default:
			_, size := utf8.DecodeRuneInString(body[i+1:])
			return "", &core.InvalidStringEscapeError{FullString: body, Escape: body[i : i+1+size]}
		}
		i += 2
	}
	return out.String(), nil
}

// decodeUnicodeEscape decodes the \u escape starting at body[i], completing
// a surrogate pair when needed. It returns the rune and the number of bytes
// consumed.
func decodeUnicodeEscape(body string, i int) (rune, int, error) {
	high, err := hexEscape(body, i)
	if err != nil {
		return 0, 0, err
	}
	if !utf16.IsSurrogate(high) {
		return high, 6, nil
	}
	if high >= 0xDC00 {
		return 0, 0, &core.InvalidStringEscapeError{FullString: body, Escape: body[i : i+6]}
	}

	j := i + 6
	if j+1 >= len(body) || body[j] != '\\' || body[j+1] != 'u' {
		return 0, 0, &core.InvalidStringEscapeError{FullString: body, Escape: body[i : i+6]}
	}
	low, err := hexEscape(body, j)
	if err != nil {
		return 0, 0, err
	}
	r := utf16.DecodeRune(high, low)
	if r == utf8.RuneError {
		return 0, 0, &core.InvalidStringEscapeError{FullString: body, Escape: body[i : j+6]}
	}
	return r, 12, nil
}

// hexEscape reads the four hex digits of the \u escape at body[i].
func hexEscape(body string, i int) (rune, error) {
	end := i + 6
	if end > len(body) {
		return 0, &core.InvalidStringEscapeError{FullString: body, Escape: body[i:]}
	}
	n, err := strconv.ParseUint(body[i+2:end], 16, 32)
	if err != nil {
		return 0, &core.InvalidStringEscapeError{FullString: body, Escape: body[i:end]}
	}
	return rune(n), nil
}

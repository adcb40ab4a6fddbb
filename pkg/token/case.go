package token

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Case selects how keyword spellings are cased on output.
type Case int

// Keyword casings.
const (
	CaseLower Case = iota // reduce $n = count;
	CaseUpper             // REDUCE $n = COUNT;
)

// String returns the configuration name of the casing.
func (c Case) String() string {
	switch c {
	case CaseUpper:
		return "upper"
	default:
		return "lower"
	}
}

// Apply cases a keyword spelling. A new Caser is built per call because
// Casers carry state and must not be shared between goroutines.
func (c Case) Apply(spelling string) string {
	switch c {
	case CaseUpper:
		return cases.Upper(language.Und).String(spelling)
	default:
		return cases.Lower(language.Und).String(spelling)
	}
}

// ParseCase parses a casing name ("lower" or "upper"); empty means lower.
func ParseCase(s string) (Case, error) {
	switch cases.Fold().String(s) {
	case "", "lower":
		return CaseLower, nil
	case "upper":
		return CaseUpper, nil
	}
	return CaseLower, fmt.Errorf("unknown keyword case %q (want lower or upper)", s)
}

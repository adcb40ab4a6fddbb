package token

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/text/cases"
)

var (
	registryMu sync.RWMutex

	// nextTokenID tracks the last assigned dynamic token ID.
	// Dynamic tokens start after maxBuiltin (999).
	nextTokenID = maxBuiltin

	// dynamicTokens maps registered dynamic tokens to their spellings.
	dynamicTokens = make(map[TokenType]string)

	// dynamicKeywords maps registered spellings to their token types.
	dynamicKeywords = make(map[string]TokenType)
)

// ErrReservedKeyword is returned when an operator name is already a
// keyword that is not a statistic, such as count or within.
var ErrReservedKeyword = errors.New("reserved keyword")

// RegisterReduceOperator registers an extension statistic operator, such as
// "variance", so that it lexes, parses and prints like a builtin one.
// The name is case-folded. Registering the same name twice returns the same
// token type, and builtin statistics resolve to their builtin token. Other
// keywords cannot be registered.
func RegisterReduceOperator(name string) (TokenType, error) {
	folded := cases.Fold().String(name)
	if folded == "" {
		return ILLEGAL, fmt.Errorf("empty operator name")
	}
	if tok, ok := keywords[folded]; ok {
		if IsStatOperator(tok) {
			return tok, nil
		}
		return ILLEGAL, fmt.Errorf("operator %q: %w", name, ErrReservedKeyword)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if tok, ok := dynamicKeywords[folded]; ok {
		return tok, nil
	}
	nextTokenID++
	t := nextTokenID
	dynamicTokens[t] = folded
	dynamicKeywords[folded] = t
	return t, nil
}

// MustRegisterReduceOperator is like RegisterReduceOperator but panics if
// the name cannot be registered.
func MustRegisterReduceOperator(name string) TokenType {
	t, err := RegisterReduceOperator(name)
	if err != nil {
		panic(err)
	}
	return t
}

// getDynamicName returns the spelling of a dynamic token.
func getDynamicName(t TokenType) (string, bool) {
	if !IsDynamic(t) {
		return "", false
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	name, ok := dynamicTokens[t]
	return name, ok
}

// LookupDynamicKeyword returns the token type for a registered operator.
// Returns IDENT and false if the name is not registered.
func LookupDynamicKeyword(name string) (TokenType, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if tok, ok := dynamicKeywords[name]; ok {
		return tok, true
	}
	return IDENT, false
}

// IsDynamic returns true if the token type is a dynamically registered token.
func IsDynamic(t TokenType) bool {
	return t > maxBuiltin
}

// RegisteredTokens returns a copy of all registered dynamic tokens.
func RegisteredTokens() map[TokenType]string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make(map[TokenType]string, len(dynamicTokens))
	for k, v := range dynamicTokens {
		result[k] = v
	}
	return result
}

// Keywords returns the builtin keywords in declaration order followed by
// the registered reduce operators in registration order.
func Keywords() []TokenType {
	out := make([]TokenType, 0, int(SUM-REDUCE)+1)
	for t := REDUCE; t <= SUM; t++ {
		out = append(out, t)
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for t := maxBuiltin + 1; t <= nextTokenID; t++ {
		if _, ok := dynamicTokens[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

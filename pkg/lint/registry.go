package lint

import (
	"sort"
	"strings"
	"sync"
)

// globalRegistry is the single global registry for all lint rules.
var globalRegistry = &Registry{
	rules: make(map[string]RuleDef),
}

// Registry stores registered lint rules for discovery.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef // keyed by upper-case ID
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages. Registering an ID
// twice panics.
func Register(rule RuleDef) {
	if rule.ID == "" || rule.Check == nil {
		panic("lint: rule needs an ID and a Check function")
	}
	id := strings.ToUpper(rule.ID)

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if _, dup := globalRegistry.rules[id]; dup {
		panic("lint: duplicate rule " + id)
	}
	globalRegistry.rules[id] = rule
}

// GetAll returns all registered rules ordered by ID.
func GetAll() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// GetByID returns a rule by its ID. The lookup ignores case.
func GetByID(id string) (RuleDef, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	rule, ok := globalRegistry.rules[strings.ToUpper(id)]
	return rule, ok
}

// GetByGroup returns all rules in a specific group, ordered by ID.
func GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, rule := range GetAll() {
		if rule.Group == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.rules)
}

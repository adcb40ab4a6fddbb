package lint

import (
	"fmt"
	"strings"
)

// Config controls which rules are enabled and their severity.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]Severity
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]Severity),
	}
}

// ConfigFrom builds a Config from rule IDs to disable and per-rule
// severity names, as read from a config file or flags.
func ConfigFrom(disable []string, severity map[string]string) (*Config, error) {
	c := NewConfig()
	for _, id := range disable {
		c.Disable(id)
	}
	for id, name := range severity {
		sev, ok := ParseSeverity(name)
		if !ok {
			return nil, fmt.Errorf("rule %s: invalid severity %q (want error, warning, info or hint)", id, name)
		}
		c.SetSeverity(id, sev)
	}
	return c, nil
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	return c.DisabledRules[strings.ToUpper(ruleID)]
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(ruleID string, defaultSeverity Severity) Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[strings.ToUpper(ruleID)]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[strings.ToUpper(ruleID)] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity Severity) *Config {
	c.SeverityOverrides[strings.ToUpper(ruleID)] = severity
	return c
}

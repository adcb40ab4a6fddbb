// Package config provides configuration management for the leapql CLI.
package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/lint"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// Defaults.
const (
	DefaultStyle       = "pretty"
	DefaultIndent      = format.DefaultIndentSize
	DefaultKeywordCase = "lower"
	DefaultOutput      = "auto"
	DefaultConcurrency = 4
	DefaultLogLevel    = "warn"
)

var operatorName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// OutputModes lists the accepted values of the output key.
var OutputModes = []string{"auto", "text", "json", "yaml", "markdown"}

// Config holds all CLI configuration options.
type Config struct {
	Style       string `koanf:"style"`
	Indent      int    `koanf:"indent"`
	KeywordCase string `koanf:"keyword_case"`
	Output      string `koanf:"output"`
	Concurrency int    `koanf:"concurrency"`
	LogLevel    string `koanf:"log_level"`
	Verbose     bool   `koanf:"verbose"`
	// Operators are extension statistics registered at startup so that
	// they parse and print like builtin ones.
	Operators []string `koanf:"operators"`
	// Lint configures "leapql lint". Command line flags add to it.
	Lint LintConfig `koanf:"lint"`
}

// LintConfig holds the rule settings of the lint command.
type LintConfig struct {
	Disable  []string          `koanf:"disable"`  // rule IDs to skip
	Severity map[string]string `koanf:"severity"` // rule ID -> error|warning|info|hint
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Style:       DefaultStyle,
		Indent:      DefaultIndent,
		KeywordCase: DefaultKeywordCase,
		Output:      DefaultOutput,
		Concurrency: DefaultConcurrency,
		LogLevel:    DefaultLogLevel,
	}
}

// Validate checks every option for an accepted value.
func (c *Config) Validate() error {
	if _, err := formatter.ParseStyle(c.Style); err != nil {
		return err
	}
	if _, err := token.ParseCase(c.KeywordCase); err != nil {
		return err
	}
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Indent)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if !slices.Contains(OutputModes, c.Output) {
		return fmt.Errorf("unknown output %q (want one of %v)", c.Output, OutputModes)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.LintRules(); err != nil {
		return err
	}
	for _, op := range c.Operators {
		if !operatorName.MatchString(op) {
			return fmt.Errorf("invalid operator name %q", op)
		}
		if tok := token.LookupIdent(op); tok != token.IDENT && !token.IsStatOperator(tok) {
			return fmt.Errorf("invalid operator name %q: %w", op, token.ErrReservedKeyword)
		}
	}
	return nil
}

// Level returns the configured log level. Verbose lowers it to debug.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return level, nil
}

// FormatterOptions converts the layout options for the formatter. The
// config must have been validated.
func (c *Config) FormatterOptions() formatter.Options {
	style, _ := formatter.ParseStyle(c.Style)
	kc, _ := token.ParseCase(c.KeywordCase)
	return formatter.Options{
		Style:       style,
		IndentSize:  c.Indent,
		KeywordCase: kc,
		Concurrency: c.Concurrency,
	}
}

// PrinterOptions returns the printer options for rendering single nodes.
func (c *Config) PrinterOptions() []format.Option {
	kc, _ := token.ParseCase(c.KeywordCase)
	return []format.Option{format.WithIndentSize(c.Indent), format.WithKeywordCase(kc)}
}

// LintRules converts the lint section into an analyzer configuration.
func (c *Config) LintRules() (*lint.Config, error) {
	return lint.ConfigFrom(c.Lint.Disable, c.Lint.Severity)
}

package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/leapstack-labs/leapql/pkg/lint"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches to an empty directory so no project config is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "config file")
	flags.String("style", "", "style")
	flags.Int("indent", 0, "indent")
	flags.String("keyword-case", "", "keyword case")
	flags.StringP("output", "o", "", "output")
	flags.Int("concurrency", 0, "concurrency")
	flags.String("log-level", "", "log level")
	flags.BoolP("verbose", "v", false, "verbose")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	chdir(t)

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := chdir(t)
	writeConfig(t, dir, `style: inline
indent: 2
keyword_case: upper
concurrency: 8
`)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", cfg.Style)
	assert.Equal(t, 2, cfg.Indent)
	assert.Equal(t, "upper", cfg.KeywordCase)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, filepath.Join(dir, "leapql.yaml"), GetConfigFileUsed())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "style: inline\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "inline", cfg.Style)
}

func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	dir := chdir(t)
	path := writeConfig(t, dir, "keyword_case: lower\n")
	t.Setenv("LEAPQL_KEYWORD_CASE", "upper")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "upper", cfg.KeywordCase, "env var should override config file")
}

func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	dir := chdir(t)
	path := writeConfig(t, dir, "style: pretty\nindent: 8\n")
	t.Setenv("LEAPQL_STYLE", "pretty")

	flags := testFlags()
	require.NoError(t, flags.Set("style", "inline"))
	require.NoError(t, flags.Set("keyword-case", "upper"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "inline", cfg.Style, "flag value should override config file and env var")
	assert.Equal(t, "upper", cfg.KeywordCase)
	assert.Equal(t, 8, cfg.Indent, "unset flag should not override the file")
}

func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	chdir(t)
	t.Setenv("LEAPQL_CONCURRENCY", "3")

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Concurrency, "env var should be used when flag is not set")
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"bad style", "style: compact\n", "unknown style"},
		{"bad keyword case", "keyword_case: title\n", "unknown keyword case"},
		{"bad output", "output: xml\n", "unknown output"},
		{"bad concurrency", "concurrency: 0\n", "concurrency must be at least 1"},
		{"negative indent", "indent: -1\n", "indent must not be negative"},
		{"bad log level", "log_level: loud\n", "unknown log_level"},
		{"malformed yaml", "style: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			dir := chdir(t)
			path := writeConfig(t, dir, tt.content)

			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	dir := chdir(t)

	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Level(t *testing.T) {
	cfg := Default()
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	cfg.LogLevel = "INFO"
	level, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	cfg.Verbose = true
	level, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestConfig_FormatterOptions(t *testing.T) {
	cfg := &Config{Style: "inline", Indent: 2, KeywordCase: "upper", Concurrency: 6}
	assert.Equal(t, formatter.Options{
		Style:       formatter.StyleInline,
		IndentSize:  2,
		KeywordCase: token.CaseUpper,
		Concurrency: 6,
	}, cfg.FormatterOptions())
	assert.Len(t, cfg.PrinterOptions(), 2)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Default(), &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}

func TestLoadConfig_Operators(t *testing.T) {
	ResetConfig()
	dir := chdir(t)
	writeConfig(t, dir, "operators:\n  - variance\n  - p95\n")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"variance", "p95"}, cfg.Operators)

	cfg.Operators = []string{"not-valid"}
	assert.ErrorContains(t, cfg.Validate(), "invalid operator name")

	cfg.Operators = []string{"Count"}
	assert.ErrorIs(t, cfg.Validate(), token.ErrReservedKeyword)

	cfg.Operators = []string{"sum"}
	assert.NoError(t, cfg.Validate(), "builtin statistics may be listed")
}

func TestConfigContext(t *testing.T) {
	cfg := &Config{Style: "inline"}
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
	assert.Equal(t, Default(), FromContext(context.Background()))
}

func TestLoadConfig_Lint(t *testing.T) {
	ResetConfig()
	dir := chdir(t)
	writeConfig(t, dir, "lint:\n  disable: [RD05]\n  severity:\n    RD04: error\n")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"RD05"}, cfg.Lint.Disable)

	rules, err := cfg.LintRules()
	require.NoError(t, err)
	assert.True(t, rules.IsDisabled("RD05"))
	assert.Equal(t, lint.SeverityError, rules.GetSeverity("RD04", lint.SeverityWarning))

	writeConfig(t, dir, "lint:\n  severity:\n    RD04: loud\n")
	_, err = LoadConfig("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid severity")
}

func TestLoadConfig_LintEnv(t *testing.T) {
	ResetConfig()
	dir := chdir(t)
	path := writeConfig(t, dir, "lint:\n  disable: [RD05]\n")
	t.Setenv("LEAPQL_LINT_DISABLE", "RD01, rd02")
	t.Setenv("LEAPQL_LINT_SEVERITY_RD04", "error")
	t.Setenv("LEAPQL_OPERATORS", "variance,p90")
	t.Setenv("LEAPQL_SOMETHING_ELSE", "ignored")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err, "unrelated LEAPQL_ variables are ignored")
	assert.Equal(t, []string{"RD01", "rd02"}, cfg.Lint.Disable, "env var should override config file")
	assert.Equal(t, []string{"variance", "p90"}, cfg.Operators)

	rules, err := cfg.LintRules()
	require.NoError(t, err)
	assert.True(t, rules.IsDisabled("RD02"))
	assert.False(t, rules.IsDisabled("RD05"))
	assert.Equal(t, lint.SeverityError, rules.GetSeverity("RD04", lint.SeverityWarning))
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name  string
		value string
		key   string
		want  interface{}
	}{
		{"LEAPQL_KEYWORD_CASE", "upper", "keyword_case", "upper"},
		{"LEAPQL_LINT_DISABLE", "RD01,RD02", "lint.disable", []string{"RD01", "RD02"}},
		{"LEAPQL_LINT_SEVERITY_rd06", "hint", "lint.severity.RD06", "hint"},
		{"LEAPQL_LINT_SEVERITY_", "hint", "", nil},
		{"LEAPQL_HOME", "/tmp", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value := envKey(tt.name, tt.value)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.want, value)
		})
	}
}

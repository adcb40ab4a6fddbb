package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapql/pkg/lint"
	_ "github.com/leapstack-labs/leapql/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/leapql/pkg/parser"
)

// Helper to run analysis and filter by rule ID
func runRule(t *testing.T, src string, ruleID string) []lint.Diagnostic {
	t.Helper()
	doc, err := parser.ParseDocument(src)
	require.NoError(t, err)

	diags := lint.NewAnalyzer(lint.NewConfig()).AnalyzeDocument(doc)

	var filtered []lint.Diagnostic
	for _, d := range diags {
		if d.RuleID == ruleID {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

type ruleCase struct {
	name      string
	src       string
	wantCount int
}

func runCases(t *testing.T, ruleID string, tests []ruleCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := runRule(t, tt.src, ruleID)
			assert.Len(t, diags, tt.wantCount, "src: %s", tt.src)
		})
	}
}

func TestRD01_DuplicateTarget(t *testing.T) {
	runCases(t, "RD01", []ruleCase{
		{"distinct targets", "reduce $a = count, $b = sum($x);", 0},
		{"same target twice", "reduce $n = count, $n = count($x);", 1},
		{"same target three times", "reduce $n = count, $n = max($x), $n = min($x);", 2},
		{"anonymous targets are left to RD05", "reduce $_ = count, $_ = sum($x);", 0},
		{"check is ignored", "check;", 0},
	})

	diags := runRule(t, "reduce $n = count,\n  $n = count($x);", "RD01")
	require.Len(t, diags, 1)
	assert.Equal(t, "$n is assigned more than once", diags[0].Message)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, 2, diags[0].Pos().Line)
	assert.Equal(t, 3, diags[0].Pos().Column)
}

func TestRD02_GroupedTarget(t *testing.T) {
	runCases(t, "RD02", []ruleCase{
		{"no group", "reduce $city = count;", 0},
		{"target outside group", "reduce $n = count within $city;", 0},
		{"target in group", "reduce $city = count within $city;", 1},
		{"inline group", "reduce $a = count, $b = sum($x) within ($a, $b);", 2},
	})
}

func TestRD03_DuplicateGroup(t *testing.T) {
	runCases(t, "RD03", []ruleCase{
		{"single group variable", "reduce $n = count within $city;", 0},
		{"distinct group variables", "reduce $n = count within $city, $year;", 0},
		{"repeated group variable", "reduce $n = count within $city, $city;", 1},
	})
}

func TestRD04_GroupedInput(t *testing.T) {
	runCases(t, "RD04", []ruleCase{
		{"plain count", "reduce $n = count within $city;", 0},
		{"input outside group", "reduce $t = sum($age) within $city;", 0},
		{"stat over group variable", "reduce $t = sum($age) within $age;", 1},
		{"count over group variable", "reduce $n = count($city) within $city;", 1},
		{"no group", "reduce $t = sum($age);", 0},
	})

	diags := runRule(t, "reduce $t = sum($age) within $age;", "RD04")
	require.Len(t, diags, 1)
	assert.Equal(t, "sum($age) aggregates the grouping variable $age", diags[0].Message)
	assert.Equal(t, 13, diags[0].Pos().Column)
}

func TestRD05_AnonymousTarget(t *testing.T) {
	runCases(t, "RD05", []ruleCase{
		{"named target", "reduce $n = count;", 0},
		{"anonymous target", "reduce $_ = count;", 1},
		{"anonymous input is fine", "reduce $n = count($_);", 0},
	})
}

func TestRD06_SelfReference(t *testing.T) {
	runCases(t, "RD06", []ruleCase{
		{"different names", "reduce $oldest = max($age);", 0},
		{"self reference", "reduce $age = max($age);", 1},
		{"count of itself", "reduce $x = count($x);", 1},
		{"plain count", "reduce $x = count;", 0},
	})

	diags := runRule(t, "reduce $age = max($age);", "RD06")
	require.Len(t, diags, 1)
	assert.Equal(t, "$age is replaced by max($age)", diags[0].Message)
	assert.Equal(t, lint.SeverityHint, diags[0].Severity)
}

func TestFR01_FirstDuplicateVariable(t *testing.T) {
	runCases(t, "FR01", []ruleCase{
		{"empty projection", "first();", 0},
		{"distinct variables", "first($p, $q);", 0},
		{"repeated variable", "first($p, $q, $p);", 1},
		{"reduce is ignored", "reduce $n = count within $p, $p;", 0},
	})
}

func TestRuleMetadata(t *testing.T) {
	for _, rule := range lint.GetAll() {
		t.Run(rule.ID, func(t *testing.T) {
			assert.NotEmpty(t, rule.Name)
			assert.NotEmpty(t, rule.Group)
			assert.NotEmpty(t, rule.Description)
			assert.NotEmpty(t, rule.BadExample)
			assert.NotEmpty(t, rule.GoodExample)

			require.NotNil(t, rule.Check)

			// Every bad example must trigger its own rule, every good one must not.
			bad := runRule(t, rule.BadExample, rule.ID)
			require.NotEmpty(t, bad, "bad example: %s", rule.BadExample)
			for _, d := range bad {
				assert.Equal(t, rule.ID, d.RuleID)
				assert.Equal(t, rule.Severity, d.Severity)
			}
			assert.Empty(t, runRule(t, rule.GoodExample, rule.ID), "good example: %s", rule.GoodExample)
		})
	}
}

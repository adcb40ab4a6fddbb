package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leapstack-labs/leapql/internal/cli/output"
	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/leapstack-labs/leapql/pkg/lint"
	_ "github.com/leapstack-labs/leapql/pkg/lint/rules" // register rules
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/spf13/cobra"
)

// ErrLintIssues is returned when lint reports at least one diagnostic.
var ErrLintIssues = errors.New("lint issues found")

// syntaxRuleID tags diagnostics for sources that do not parse.
const syntaxRuleID = "syntax"

// LintOptions holds options for the lint command.
type LintOptions struct {
	Disable  []string // Rule IDs to disable
	Severity string   // Minimum severity: error, warning, info, hint
	Rules    []string // Run only specific rules
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Check statements for likely mistakes",
		Long: `Analyze reduce, check and first statements for constructs that parse
but are almost certainly wrong, such as a reduce target that is also a
grouping variable.

With no arguments, or "-", the source is read from stdin. Sources that do
not parse are reported as syntax errors. Rules can be configured under the
lint key of leapql.yaml.`,
		Example: `  # Lint all queries
  leapql lint queries/

  # Lint stdin
  echo 'reduce $n = count, $n = sum($x);' | leapql lint

  # Disable specific rules
  leapql lint --disable RD05,RD06 queries/

  # Only report errors
  leapql lint --severity error queries/

  # Output as JSON
  leapql lint -o json queries/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "hint"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// lintFileResult holds lint results for a single source.
type lintFileResult struct {
	Path        string
	Diagnostics []lint.Diagnostic
}

func runLint(cmd *cobra.Command, args []string, opts *LintOptions) error {
	cc := NewCommandContext(cmd)

	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("invalid severity %q (want error, warning, info or hint)", opts.Severity)
	}
	for _, id := range opts.Rules {
		if _, ok := lint.GetByID(strings.TrimSpace(id)); !ok {
			return fmt.Errorf("rule %q not found", id)
		}
	}

	analyzer, err := buildAnalyzer(cc, opts)
	if err != nil {
		return err
	}

	var results []lintFileResult
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		src, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		results = append(results, lintSource(analyzer, "<stdin>", string(src)))
	} else {
		files, err := formatter.CollectFiles(args)
		if err != nil {
			return fmt.Errorf("failed to collect files: %w", err)
		}
		for _, path := range files {
			data, err := os.ReadFile(path) //nolint:gosec // paths come from the command line
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			results = append(results, lintSource(analyzer, path, string(data)))
		}
	}

	analyzed := len(results)
	results = filterBySeverity(results, threshold)
	cc.Logger.Debug("lint finished", "files", analyzed, "with_issues", len(results))

	if err := renderLintResults(cc.Renderer, results, analyzed); err != nil {
		return err
	}
	if len(results) > 0 {
		return ErrLintIssues
	}
	return nil
}

// buildAnalyzer merges the config file settings with the command line:
// flags add disabled rules on top of the lint section.
func buildAnalyzer(cc *CommandContext, opts *LintOptions) (*lint.Analyzer, error) {
	lintCfg, err := cc.Cfg.LintRules()
	if err != nil {
		return nil, err
	}
	for _, id := range opts.Disable {
		lintCfg.Disable(strings.TrimSpace(id))
	}

	analyzer := lint.NewAnalyzer(lintCfg)
	if len(opts.Rules) > 0 {
		ids := make([]string, len(opts.Rules))
		for i, id := range opts.Rules {
			ids[i] = strings.TrimSpace(id)
		}
		analyzer.Only(ids...)
	}
	return analyzer, nil
}

// lintSource parses and analyzes one source. A parse failure becomes a
// single syntax diagnostic.
func lintSource(analyzer *lint.Analyzer, path, src string) lintFileResult {
	res := lintFileResult{Path: path}

	doc, err := parser.ParseDocument(src)
	if err != nil {
		res.Diagnostics = []lint.Diagnostic{syntaxDiagnostic(err)}
		return res
	}
	res.Diagnostics = analyzer.AnalyzeDocument(doc)
	return res
}

func syntaxDiagnostic(err error) lint.Diagnostic {
	d := lint.Diagnostic{RuleID: syntaxRuleID, Severity: lint.SeverityError, Message: err.Error()}

	var parseErr *parser.ParseError
	var lexErr *parser.LexError
	switch {
	case errors.As(err, &parseErr):
		d.Message = parseErr.Message
		d.Span = token.Span{Start: parseErr.Pos, End: parseErr.Pos}
	case errors.As(err, &lexErr):
		d.Message = lexErr.Message
		d.Span = token.Span{Start: lexErr.Pos, End: lexErr.Pos}
	}
	return d
}

func filterBySeverity(results []lintFileResult, threshold lint.Severity) []lintFileResult {
	var filtered []lintFileResult
	for _, r := range results {
		var diags []lint.Diagnostic
		for _, d := range r.Diagnostics {
			if d.Severity <= threshold {
				diags = append(diags, d)
			}
		}
		if len(diags) > 0 {
			filtered = append(filtered, lintFileResult{Path: r.Path, Diagnostics: diags})
		}
	}
	return filtered
}

// LintDiagnostic is one finding in structured output.
type LintDiagnostic struct {
	RuleID   string `json:"rule_id" yaml:"rule_id"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
}

// LintFileResult groups the findings of one source in structured output.
type LintFileResult struct {
	Path        string           `json:"path" yaml:"path"`
	Diagnostics []LintDiagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// LintSummary counts findings by severity.
type LintSummary struct {
	FilesAnalyzed int `json:"files_analyzed" yaml:"files_analyzed"`
	TotalIssues   int `json:"total_issues" yaml:"total_issues"`
	Errors        int `json:"errors" yaml:"errors"`
	Warnings      int `json:"warnings" yaml:"warnings"`
	Info          int `json:"info" yaml:"info"`
	Hints         int `json:"hints" yaml:"hints"`
}

// LintOutput is the structured form of a lint run.
type LintOutput struct {
	Summary LintSummary      `json:"summary" yaml:"summary"`
	Files   []LintFileResult `json:"files" yaml:"files"`
}

func summarize(results []lintFileResult, analyzed int) LintSummary {
	summary := LintSummary{FilesAnalyzed: analyzed}
	for _, res := range results {
		summary.TotalIssues += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			switch d.Severity {
			case lint.SeverityError:
				summary.Errors++
			case lint.SeverityWarning:
				summary.Warnings++
			case lint.SeverityInfo:
				summary.Info++
			case lint.SeverityHint:
				summary.Hints++
			}
		}
	}
	return summary
}

func renderLintResults(r *output.Renderer, results []lintFileResult, analyzed int) error {
	summary := summarize(results, analyzed)

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		out := LintOutput{Summary: summary, Files: []LintFileResult{}}
		for _, res := range results {
			fr := LintFileResult{Path: res.Path}
			for _, d := range res.Diagnostics {
				fr.Diagnostics = append(fr.Diagnostics, LintDiagnostic{
					RuleID:   d.RuleID,
					Severity: d.Severity.String(),
					Message:  d.Message,
					Line:     d.Pos().Line,
					Column:   d.Pos().Column,
				})
			}
			out.Files = append(out.Files, fr)
		}
		if r.EffectiveMode() == output.ModeYAML {
			return r.YAML(out)
		}
		return r.JSON(out)

	case output.ModeMarkdown:
		if len(results) == 0 {
			r.Println("No lint issues found")
			return nil
		}
		for _, res := range results {
			r.Println(output.FormatHeader(2, res.Path))
			r.Println("")
			rows := make([][]string, 0, len(res.Diagnostics))
			for _, d := range res.Diagnostics {
				rows = append(rows, []string{d.Pos().String(), d.Severity.String(), d.RuleID, d.Message})
			}
			r.Table([]string{"position", "severity", "rule", "message"}, rows)
			r.Println("")
		}

	default:
		if len(results) == 0 {
			r.Success("No lint issues found")
			return nil
		}
		styles := r.Styles()
		for _, res := range results {
			r.Println(styles.Key.Render(res.Path))
			for _, d := range res.Diagnostics {
				r.Printf("  %s  %s  %s  %s\n",
					r.Muted(fmt.Sprintf("%-5s", d.Pos())),
					severityLabel(r, d.Severity),
					styles.Key.Render(d.RuleID),
					d.Message,
				)
			}
			r.Println("")
		}
	}

	r.Printf("Summary: %s in %d files\n", summaryText(summary), summary.FilesAnalyzed)
	return nil
}

func summaryText(s LintSummary) string {
	parts := []string{fmt.Sprintf("%d issues", s.TotalIssues)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", s.Hints))
	}
	return strings.Join(parts, ", ")
}

func severityLabel(r *output.Renderer, sev lint.Severity) string {
	return severityStyle(r.Styles(), sev).Render(fmt.Sprintf("%-7s", sev))
}

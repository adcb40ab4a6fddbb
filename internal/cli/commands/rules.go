package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/leapql/internal/cli/output"
	"github.com/leapstack-labs/leapql/pkg/lint"
	_ "github.com/leapstack-labs/leapql/pkg/lint/rules" // register rules
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group string // Filter by group
	Long  bool   // Show descriptions and rationale
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List all available lint rules with their documentation.

Rules are organized by group (reduce, first). Pass a rule ID to see its
rationale and examples.`,
		Example: `  # List all rules
  leapql rules

  # Show details for a specific rule
  leapql rules RD02

  # List rules in the first group
  leapql rules --group first

  # Output as JSON
  leapql rules -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var ids []string
			for _, rule := range lint.GetAll() {
				ids = append(ids, rule.ID+"\t"+rule.Name)
			}
			return ids, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "Show descriptions and rationale")

	return cmd
}

// RulesOutput is the structured output of the rules listing.
type RulesOutput struct {
	Rules []lint.RuleInfo `json:"rules" yaml:"rules"`
	Count int             `json:"count" yaml:"count"`
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd).Renderer

	var rules []lint.RuleInfo
	for _, rule := range lint.GetAll() {
		if opts.Group != "" && rule.Group != opts.Group {
			continue
		}
		rules = append(rules, rule.Info())
	}
	if opts.Group != "" && len(rules) == 0 {
		return fmt.Errorf("no rules in group %q", opts.Group)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(RulesOutput{Rules: rules, Count: len(rules)})
	case output.ModeYAML:
		return r.YAML(RulesOutput{Rules: rules, Count: len(rules)})
	case output.ModeMarkdown:
		listRulesMarkdown(r, rules, opts.Long)
	default:
		listRulesText(r, rules, opts.Long)
	}
	return nil
}

func showRule(cmd *cobra.Command, ruleID string) error {
	r := NewCommandContext(cmd).Renderer

	rule, ok := lint.GetByID(ruleID)
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := rule.Info()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeYAML:
		return r.YAML(info)
	case output.ModeMarkdown:
		showRuleMarkdown(r, info)
	default:
		showRuleText(r, info)
	}
	return nil
}

// rules arrive ordered by ID, which groups them by prefix.
func listRulesText(r *output.Renderer, rules []lint.RuleInfo, long bool) {
	styles := r.Styles()

	r.Println(styles.Header.Render(fmt.Sprintf("Lint Rules (%d)", len(rules))))
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println(styles.Key.Render("  " + capitalizeFirst(currentGroup)))
		}

		r.Printf("    %s  %s - %s\n",
			styles.Muted.Render(rule.ID),
			rule.Name,
			severityStyle(styles, rule.DefaultSeverity).Render(rule.DefaultSeverity.String()),
		)
		if long {
			r.Println(styles.Muted.Render("        " + rule.Description))
			if rule.Rationale != "" {
				r.Println(styles.Muted.Render("        Why: " + truncateOneLine(rule.Rationale, 80)))
			}
			r.Println("")
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'leapql rules <rule-id>' for detailed documentation"))
}

func listRulesMarkdown(r *output.Renderer, rules []lint.RuleInfo, long bool) {
	r.Println(output.FormatHeader(1, "Lint Rules"))
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			if currentGroup != "" {
				r.Println("")
			}
			currentGroup = rule.Group
			r.Println(output.FormatHeader(2, capitalizeFirst(currentGroup)))
			r.Println("")
		}

		r.Printf("- **%s** - %s (`%s`)\n", rule.ID, rule.Name, rule.DefaultSeverity)
		if long {
			r.Println("  " + rule.Description)
		}
	}
}

func showRuleText(r *output.Renderer, rule lint.RuleInfo) {
	styles := r.Styles()

	r.Println(styles.Header.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Key.Render("Group"), rule.Group)
	r.Printf("  %s: %s\n", styles.Key.Render("Severity"), rule.DefaultSeverity)
	r.Println("")

	r.Println(styles.Key.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Key.Render("Why This Matters"))
		for _, line := range strings.Split(rule.Rationale, "\n") {
			r.Println("  " + line)
		}
		r.Println("")
	}
	if rule.BadExample != "" {
		r.Println(styles.Key.Render("Bad Example"))
		r.Println(styles.Muted.Render("  " + rule.BadExample))
		r.Println("")
	}
	if rule.GoodExample != "" {
		r.Println(styles.Key.Render("Good Example"))
		r.Println(styles.Success.Render("  " + rule.GoodExample))
	}
}

func showRuleMarkdown(r *output.Renderer, rule lint.RuleInfo) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")
	r.Printf("**Group:** %s | **Severity:** `%s`\n\n", rule.Group, rule.DefaultSeverity)
	r.Println(rule.Description)

	if rule.Rationale != "" {
		r.Println("")
		r.Println(output.FormatHeader(2, "Why This Matters"))
		r.Println("")
		r.Println(rule.Rationale)
	}
	if rule.BadExample != "" {
		r.Println("")
		r.Println(output.FormatHeader(2, "Bad Example"))
		r.Println("")
		r.Println(output.FormatCodeBlock("tql", rule.BadExample))
	}
	if rule.GoodExample != "" {
		r.Println("")
		r.Println(output.FormatHeader(2, "Good Example"))
		r.Println("")
		r.Println(output.FormatCodeBlock("tql", rule.GoodExample))
	}
}

func severityStyle(styles *output.Styles, sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return styles.Error
	case lint.SeverityWarning:
		return styles.Warning
	case lint.SeverityInfo:
		return styles.Header
	default:
		return styles.Muted
	}
}

func truncateOneLine(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

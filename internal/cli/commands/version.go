package commands

import (
	"runtime"
	"strconv"

	"github.com/leapstack-labs/leapql/internal/cli/output"
	"github.com/leapstack-labs/leapql/pkg/lint"
	_ "github.com/leapstack-labs/leapql/pkg/lint/rules" // register rules
	"github.com/spf13/cobra"
)

// VersionInfo is the structured output of the version command.
type VersionInfo struct {
	Version   string   `json:"version" yaml:"version"`
	GoVersion string   `json:"go_version" yaml:"go_version"`
	Platform  string   `json:"platform" yaml:"platform"`
	LintRules int      `json:"lint_rules" yaml:"lint_rules"`
	Operators []string `json:"operators" yaml:"operators"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display LeapQL version information, the number of lint rules and the
extension operators registered from the operators config key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			info := VersionInfo{
				Version:   version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				LintRules: lint.Count(),
				Operators: append([]string{}, cc.Cfg.Operators...),
			}
			return renderVersion(cc.Renderer, info)
		},
	}
}

func renderVersion(r *output.Renderer, info VersionInfo) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeYAML:
		return r.YAML(info)
	}

	r.Header(1, "LeapQL v"+info.Version)
	r.Println("Formatter, linter and literal decoder for reduce queries")
	r.Println("")

	pairs := [][2]string{
		{"Go", info.GoVersion},
		{"Platform", info.Platform},
		{"Lint rules", strconv.Itoa(info.LintRules)},
	}
	for _, op := range info.Operators {
		pairs = append(pairs, [2]string{"Operator", op})
	}
	for _, kv := range pairs {
		if r.EffectiveMode() == output.ModeMarkdown {
			r.Println(output.FormatKeyValue(kv[0], kv[1]))
			continue
		}
		r.Printf("  %s: %s\n", r.Styles().Key.Render(kv[0]), kv[1])
	}
	return nil
}

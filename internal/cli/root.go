// Package cli provides the command-line interface for LeapQL.
package cli

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapql/internal/cli/commands"
	"github.com/leapstack-labs/leapql/internal/cli/config"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapql",
		Short: "LeapQL - reduce query formatter and literal decoder",
		Long: `LeapQL works on the reduce, check and first statements that close a
match query.

It formats them into a canonical layout, decodes literals into typed values,
checks statements for likely mistakes and shows how the lexer reads a
source. The lsp command serves the same features to editors.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Load configuration: defaults < file < LEAPQL_ env < flags
			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg, cmd.ErrOrStderr())
			for _, name := range cfg.Operators {
				tok, err := token.RegisterReduceOperator(name)
				if err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
				logger.Debug("registered reduce operator", "name", name, "token", int(tok))
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags. Only flags set on the command line override
	// the config file and environment.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: leapql.yaml in this or a parent directory)")
	rootCmd.PersistentFlags().String("style", config.DefaultStyle, "Statement layout (pretty|inline)")
	rootCmd.PersistentFlags().Int("indent", config.DefaultIndent, "Spaces per indentation level")
	rootCmd.PersistentFlags().String("keyword-case", config.DefaultKeywordCase, "Keyword casing (lower|upper)")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "Output format (auto|text|markdown|json|yaml)")
	rootCmd.PersistentFlags().IntP("concurrency", "j", config.DefaultConcurrency, "Files formatted at once")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	complete := func(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		}
	}
	_ = rootCmd.RegisterFlagCompletionFunc("output", complete(config.OutputModes...))
	_ = rootCmd.RegisterFlagCompletionFunc("style", complete("pretty", "inline"))
	_ = rootCmd.RegisterFlagCompletionFunc("keyword-case", complete("lower", "upper"))
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", complete("debug", "info", "warn", "error"))

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewFmtCommand())
	rootCmd.AddCommand(commands.NewDecodeCommand())
	rootCmd.AddCommand(commands.NewTokensCommand())
	rootCmd.AddCommand(commands.NewReplCommand())
	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for LeapQL.

To load completions:

Bash:
  $ source <(leapql completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leapql completion bash > /etc/bash_completion.d/leapql
  # macOS:
  $ leapql completion bash > $(brew --prefix)/etc/bash_completion.d/leapql

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ leapql completion zsh > "${fpath[1]}/_leapql"

Fish:
  $ leapql completion fish | source

PowerShell:
  PS> leapql completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

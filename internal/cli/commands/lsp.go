package commands

import (
	"github.com/leapstack-labs/leapql/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It publishes
syntax errors and lint findings, formats documents and offers completion
and hover for keywords and variables. Formatting and lint settings come
from leapql.yaml; logs go to stderr.`,
		Example: `  # Start LSP server (usually called by an editor)
  leapql lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)

	lintCfg, err := cc.Cfg.LintRules()
	if err != nil {
		return err
	}

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.Options{
		Formatter: cc.Cfg.FormatterOptions(),
		Lint:      lintCfg,
		Version:   cmd.Root().Version,
		Logger:    cc.Logger,
	})
	return server.Run(cmd.Context())
}

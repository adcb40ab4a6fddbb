package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapql/internal/cli/config"
	"github.com/leapstack-labs/leapql/internal/cli/output"
	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Renderer  *output.Renderer
	Formatter *formatter.Formatter
}

// NewCommandContext builds the dependencies from the config and logger the
// root command stored in the context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output))

	return &CommandContext{
		Cfg:       cfg,
		Logger:    logger,
		Renderer:  r,
		Formatter: formatter.New(cfg.FormatterOptions(), logger),
	}
}

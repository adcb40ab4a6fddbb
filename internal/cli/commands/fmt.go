package commands

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/spf13/cobra"
)

// ErrNotFormatted is returned by fmt --check when a file needs formatting.
var ErrNotFormatted = errors.New("files are not formatted")

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Check bool
	Write bool
	Watch bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt [path...]",
		Short: "Format reduce, check and first statements",
		Long: `Rewrite query sources into canonical layout.

With no arguments, or "-", the source is read from stdin and the formatted
text written to stdout. Directories are searched for .tql files.

Layout follows the style, indent and keyword_case settings.`,
		Example: `  # Format stdin
  echo 'reduce $n=count;' | leapql fmt

  # List files that are not formatted
  leapql fmt --check queries/

  # Rewrite files in place with upper-case keywords
  leapql fmt --write --keyword-case upper queries/

  # Keep files formatted while editing
  leapql fmt --watch queries/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Check, "check", "c", false, "Report files that are not formatted and fail")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Rewrite files in place")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Format files again whenever they change")
	cmd.MarkFlagsMutuallyExclusive("check", "write")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	cc := NewCommandContext(cmd)

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if opts.Watch {
			return errors.New("--watch needs at least one path")
		}
		return fmtStdin(cmd, cc, opts)
	}

	files, err := formatter.CollectFiles(args)
	if err != nil {
		return fmt.Errorf("failed to collect files: %w", err)
	}

	mode := formatter.ModeCheck
	if opts.Write {
		mode = formatter.ModeWrite
	}

	if opts.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cc.Renderer.Println(cc.Renderer.Muted("Watching for changes. Press Ctrl+C to stop."))
		return cc.Formatter.Watch(ctx, args, mode, func(res formatter.Result) {
			reportResult(cc, res, mode)
		})
	}

	results, err := cc.Formatter.FormatFiles(cmd.Context(), files, mode)
	if err != nil {
		return err
	}

	var failed, changed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else if res.Changed {
			changed++
		}
		reportResult(cc, res, mode)
	}
	cc.Logger.Debug("fmt finished", "files", len(results), "changed", changed, "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be formatted", failed)
	}
	if opts.Check && changed > 0 {
		return fmt.Errorf("%d file(s): %w", changed, ErrNotFormatted)
	}
	return nil
}

func reportResult(cc *CommandContext, res formatter.Result, mode formatter.Mode) {
	r := cc.Renderer
	switch {
	case res.Err != nil:
		r.Error(res.Err.Error())
	case !res.Changed:
		cc.Logger.Debug("already formatted", "path", res.Path)
	case mode == formatter.ModeWrite:
		r.Success("formatted " + res.Path)
	default:
		r.Println(res.Path)
	}
}

func fmtStdin(cmd *cobra.Command, cc *CommandContext, opts *FmtOptions) error {
	src, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	out, err := cc.Formatter.Format(string(src))
	if err != nil {
		return err
	}
	if opts.Check {
		if out != string(src) {
			return fmt.Errorf("<stdin>: %w", ErrNotFormatted)
		}
		return nil
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

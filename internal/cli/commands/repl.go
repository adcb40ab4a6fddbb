package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/spf13/cobra"
)

const (
	replPrompt      = "leapql> "
	replContinue    = "   ...> "
	historyFileName = ".leapql_history"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Format statements interactively",
		Long: `Start an interactive session. Each statement, terminated by ";", is
parsed and printed back in canonical layout.

Type .help for the session commands.`,
		Args: cobra.NoArgs,
		RunE: runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, historyFileName)
	}

	rlCfg := &readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    newKeywordCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	}
	if in := cmd.InOrStdin(); in != os.Stdin {
		rlCfg.Stdin = io.NopCloser(in)
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "LeapQL REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	s := newReplSession(cmd.OutOrStdout(), cmd.ErrOrStderr(), cc.Formatter, cc.Logger)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if s.eval(line) {
			break
		}
		rl.SetPrompt(s.prompt())
	}
	return nil
}

// replSession holds the state of one interactive session: the pending
// multi-line input and the current layout options.
type replSession struct {
	out    io.Writer
	errOut io.Writer
	fmtr   *formatter.Formatter
	logger *slog.Logger
	buf    strings.Builder
}

func newReplSession(out, errOut io.Writer, f *formatter.Formatter, logger *slog.Logger) *replSession {
	return &replSession{out: out, errOut: errOut, fmtr: f, logger: logger}
}

func (s *replSession) reset() { s.buf.Reset() }

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return replContinue
	}
	return replPrompt
}

// eval handles one input line and reports whether the session should end.
func (s *replSession) eval(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	// Accumulate until the statement terminator
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}

	src := s.buf.String()
	s.buf.Reset()

	out, err := s.fmtr.Format(src)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return false
	}
	_, _ = io.WriteString(s.out, out)
	return false
}

func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(line, parts[0]))

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printReplHelp(s.out)

	case ".style":
		if arg == "" {
			_, _ = fmt.Fprintf(s.out, "style: %s\n", s.fmtr.Options().Style)
			return false
		}
		style, err := formatter.ParseStyle(arg)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		opts := s.fmtr.Options()
		opts.Style = style
		s.fmtr = formatter.New(opts, s.logger)

	case ".case":
		if arg == "" {
			_, _ = fmt.Fprintf(s.out, "keyword case: %s\n", s.fmtr.Options().KeywordCase)
			return false
		}
		kc, err := token.ParseCase(arg)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		opts := s.fmtr.Options()
		opts.KeywordCase = kc
		s.fmtr = formatter.New(opts, s.logger)

	case ".decode":
		if arg == "" {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .decode <literal>")
			return false
		}
		opts := s.fmtr.Options()
		info := decodeLiteral(arg, core.TagNone, []format.Option{
			format.WithIndentSize(opts.IndentSize),
			format.WithKeywordCase(opts.KeywordCase),
		})
		if info.Error != "" {
			_, _ = fmt.Fprintf(s.errOut, "Error: %s\n", info.Error)
			return false
		}
		_, _ = fmt.Fprintf(s.out, "%s  %s  %s = %s\n", info.Canonical, info.Tag, info.Kind, info.Value)

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printReplHelp(w io.Writer) {
	help := `
Commands:
  .help                   Show this help message
  .style [pretty|inline]  Show or set the output style
  .case [lower|upper]     Show or set the keyword case
  .decode <literal>       Show the tag and value of a literal
  .quit / .exit           Exit the REPL

Tips:
  - Statements must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completion works for keywords
`
	_, _ = fmt.Fprintln(w, help)
}

// newKeywordCompleter creates a readline completer for keywords and
// session commands.
func newKeywordCompleter() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, t := range token.Keywords() {
		items = append(items, readline.PcItem(t.Spelling()))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".style", readline.PcItem("pretty"), readline.PcItem("inline")),
		readline.PcItem(".case", readline.PcItem("lower"), readline.PcItem("upper")),
		readline.PcItem(".decode"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapql/internal/cli/output"
	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/format"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/value"
	"github.com/spf13/cobra"
)

// LiteralInfo describes one decoded literal.
type LiteralInfo struct {
	Input     string `json:"input" yaml:"input"`
	Variant   string `json:"variant,omitempty" yaml:"variant,omitempty"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Value     string `json:"value,omitempty" yaml:"value,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "decode <literal>...",
		Short: "Decode literals and show their tag and value",
		Long: `Decode each argument as a literal and show its variant, ambiguity tag,
canonical spelling and interpreted value.

Numerals the lexer cannot type are tagged Integral or Fractional; --as
supplies the type expected by the surrounding context.`,
		Example: `  leapql decode 12 1.5 1.5dec '"café"'
  leapql decode --as Decimal 12
  leapql decode -o json 2024-01-31T10:30 'P1Y'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			context, ok := core.ParseTag(as)
			if !ok {
				return fmt.Errorf("unknown tag %q", as)
			}
			return runDecode(cmd, args, context)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Type expected by the context (Long, Double, Decimal...)")
	return cmd
}

func runDecode(cmd *cobra.Command, args []string, context core.Tag) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	infos := make([]LiteralInfo, 0, len(args))
	failed := 0
	for _, arg := range args {
		info := decodeLiteral(arg, context, cc.Cfg.PrinterOptions())
		if info.Error != "" {
			failed++
			cc.Logger.Debug("decode failed", "input", arg, "error", info.Error)
		}
		infos = append(infos, info)
	}

	var err error
	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(infos)
	case output.ModeYAML:
		err = r.YAML(infos)
	default:
		rows := make([][]string, len(infos))
		for i, info := range infos {
			result := info.Value
			if info.Error != "" {
				result = "error: " + info.Error
			}
			rows[i] = []string{info.Input, info.Variant, info.Tag, info.Canonical, info.Kind, result}
		}
		r.Table([]string{"input", "variant", "tag", "canonical", "kind", "value"}, rows)
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d literal(s) could not be decoded", failed)
	}
	return nil
}

func decodeLiteral(input string, context core.Tag, opts []format.Option) LiteralInfo {
	info := LiteralInfo{Input: input}

	lit, err := parser.ParseLiteralAs(strings.TrimSpace(input), context)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Variant = core.Variant(lit.Value)
	info.Tag = lit.Tag.String()
	info.Canonical = format.String(lit, opts...)

	v, err := value.Interpret(lit)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Kind = v.Kind.String()
	info.Value = v.String()
	return info
}

package commands

import (
	"fmt"
	"io"

	"github.com/leapstack-labs/leapql/internal/cli/output"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
	"github.com/spf13/cobra"
)

// TokenInfo describes one lexed token.
type TokenInfo struct {
	Type     string `json:"type" yaml:"type"`
	Literal  string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Position string `json:"position" yaml:"position"`
}

// KeywordInfo describes one keyword of the vocabulary.
type KeywordInfo struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Kind    string `json:"kind" yaml:"kind"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [source|-]",
		Short: "Show the token stream of a source, or the keyword vocabulary",
		Long: `Lex the source and list each token with its position.

Without arguments the keywords are listed instead, including the reduce
operators registered through the operators config key.`,
		Example: `  leapql tokens 'reduce $n = count within $c;'
  echo 'first($p);' | leapql tokens -
  leapql tokens -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTokens,
	}
}

func runTokens(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	if len(args) == 0 {
		return renderKeywords(cc.Renderer)
	}

	src := args[0]
	if src == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		src = string(b)
	}

	toks, lexErr := parser.Tokenize(src)
	infos := make([]TokenInfo, 0, len(toks))
	for _, tok := range toks {
		infos = append(infos, TokenInfo{
			Type:     tok.Type.String(),
			Literal:  tok.Literal,
			Position: tok.Span.Start.String(),
		})
	}
	cc.Logger.Debug("tokenized", "tokens", len(infos))

	r := cc.Renderer
	var err error
	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(infos)
	case output.ModeYAML:
		err = r.YAML(infos)
	default:
		rows := make([][]string, len(infos))
		for i, info := range infos {
			rows[i] = []string{info.Type, info.Literal, info.Position}
		}
		r.Table([]string{"type", "literal", "position"}, rows)
	}
	if err != nil {
		return err
	}
	return lexErr
}

func renderKeywords(r *output.Renderer) error {
	kws := token.Keywords()
	infos := make([]KeywordInfo, len(kws))
	for i, t := range kws {
		infos[i] = KeywordInfo{Keyword: t.Spelling(), Kind: keywordKind(t)}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(infos)
	case output.ModeYAML:
		return r.YAML(infos)
	}
	rows := make([][]string, len(infos))
	for i, info := range infos {
		rows[i] = []string{info.Keyword, info.Kind}
	}
	r.Table([]string{"keyword", "kind"}, rows)
	return nil
}

func keywordKind(t token.TokenType) string {
	switch {
	case token.IsDynamic(t):
		return "registered operator"
	case token.IsStatOperator(t):
		return "statistic"
	case token.IsReduceOperator(t):
		return "operator"
	case t == token.TRUE || t == token.FALSE:
		return "boolean"
	default:
		return "clause"
	}
}

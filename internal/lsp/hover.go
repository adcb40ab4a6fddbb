package lsp

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapql/pkg/core"
	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
)

type keywordInfo struct {
	detail string
	text   string
}

var keywordDocs = map[token.TokenType]keywordInfo{
	token.REDUCE: {"statement", "Aggregates the answers of a query into new variables, optionally per group.\n\n    reduce $n = count, $s = sum($x) within $g;"},
	token.WITHIN: {"clause", "Lists the grouping variables of a reduce stage. One row is produced per distinct group."},
	token.IS:     {"constraint", "Requires two variables to denote the same concept."},
	token.TRUE:   {"literal", "Boolean true."},
	token.FALSE:  {"literal", "Boolean false."},
	token.CHECK:  {"statement", "Asks whether the query has at least one answer."},
	token.COUNT:  {"reduce operator", "Counts answers, or the answers that bind a variable: `count` or `count($x)`."},
	token.FIRST:  {"statement", "Takes the first answer, optionally projected onto variables: `first($x, $y);`"},
	token.LIST:   {"statistic", "Collects the values of a variable into a list."},
	token.MAX:    {"statistic", "Largest value of a variable."},
	token.MEAN:   {"statistic", "Arithmetic mean of a numeric variable."},
	token.MEDIAN: {"statistic", "Median of a numeric variable."},
	token.MIN:    {"statistic", "Smallest value of a variable."},
	token.STD:    {"statistic", "Standard deviation of a numeric variable."},
	token.SUM:    {"statistic", "Sum of a numeric variable."},
}

func keywordDoc(tok token.TokenType) keywordInfo {
	if info, ok := keywordDocs[tok]; ok {
		return info
	}
	if token.IsDynamic(tok) {
		return keywordInfo{"statistic", "Registered statistic operator."}
	}
	return keywordInfo{}
}

// getHover describes the keyword or variable under the cursor. It returns
// nil when there is nothing to say.
func (s *Server) getHover(params HoverParams) *Hover {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	offset := doc.PositionToOffset(params.Position)
	tokens, _ := parser.Tokenize(doc.Content)

	for _, tok := range tokens {
		if !tok.Span.Contains(offset) {
			continue
		}

		var value string
		switch {
		case token.IsKeyword(tok.Type):
			info := keywordDoc(tok.Type)
			value = fmt.Sprintf("**%s** (%s)\n\n%s", tok.Type.Spelling(), info.detail, info.text)
		case tok.Type == token.VARIABLE:
			value = describeVariable(doc.Content, strings.TrimPrefix(tok.Literal, "$"))
		default:
			return nil
		}

		rng := doc.SpanToRange(tok.Span)
		return &Hover{
			Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: value},
			Range:    &rng,
		}
	}
	return nil
}

// describeVariable lists the roles a variable plays across the document's
// statements. Documents that do not parse get the bare name.
func describeVariable(src, name string) string {
	header := fmt.Sprintf("**$%s** (variable)", name)
	if name == "_" {
		return header + "\n\nAnonymous variable. Its value cannot be read later."
	}

	doc, err := parser.ParseDocument(src)
	if err != nil {
		return header
	}

	var roles []string
	for _, stmt := range doc.Statements {
		roles = append(roles, variableRoles(stmt.Node, name)...)
	}
	if len(roles) == 0 {
		return header
	}
	return header + "\n\n- " + strings.Join(roles, "\n- ")
}

func variableRoles(node core.Node, name string) []string {
	var roles []string
	switch n := node.(type) {
	case *core.Reduce:
		for _, a := range n.Reductions {
			if a.AssignTo.Name == name {
				roles = append(roles, fmt.Sprintf("reduce target: `%s`", a))
			}
			if in, ok := reduceInput(a.Value); ok && in.Name == name {
				roles = append(roles, fmt.Sprintf("aggregated by `%s`", a.Value))
			}
		}
		for _, v := range n.WithinGroup {
			if v.Name == name {
				roles = append(roles, "grouping variable")
				break
			}
		}
	case *core.First:
		for _, v := range n.Variables {
			if v.Name == name {
				roles = append(roles, "projected by `first`")
				break
			}
		}
	}
	return roles
}

func reduceInput(v core.ReduceValue) (core.Variable, bool) {
	switch v := v.(type) {
	case *core.Count:
		if v.Variable != nil {
			return *v.Variable, true
		}
	case *core.Stat:
		return v.Variable, true
	}
	return core.Variable{}, false
}

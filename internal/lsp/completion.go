package lsp

import (
	"strings"

	"github.com/leapstack-labs/leapql/pkg/parser"
	"github.com/leapstack-labs/leapql/pkg/token"
)

// CompletionContextType describes what kind of completion context we're in.
type CompletionContextType int

// Completion context type constants.
const (
	ContextUnknown     CompletionContextType = iota
	ContextStatement                         // Start of a statement
	ContextReduceValue                       // After "$n ="
	ContextVariable                          // Where a variable is expected
	ContextAfterValue                        // After a complete reduce value
)

func (c CompletionContextType) String() string {
	switch c {
	case ContextStatement:
		return "statement"
	case ContextReduceValue:
		return "reduce-value"
	case ContextVariable:
		return "variable"
	case ContextAfterValue:
		return "after-value"
	default:
		return "unknown"
	}
}

// statementSnippets start a new statement. Plain insert text is used when
// the client has no snippet support.
var statementSnippets = []struct {
	tok     token.TokenType
	snippet string
	plain   string
}{
	{token.REDUCE, `reduce \$${1:n} = ${2:count};`, "reduce "},
	{token.CHECK, `check;`, "check;"},
	{token.FIRST, `first(\$${1:x});`, "first("},
}

// getCompletions returns completion items for the given position.
func (s *Server) getCompletions(params CompletionParams) []CompletionItem {
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	ctx, prefix := detectContext(doc, params.Position)
	s.logger.Debug("completion", "context", ctx, "prefix", prefix)

	var items []CompletionItem
	switch ctx {
	case ContextStatement:
		items = s.statementCompletions()
	case ContextReduceValue:
		items = s.reduceValueCompletions()
	case ContextVariable:
		items = variableCompletions(doc, params.Position, prefix)
	case ContextAfterValue:
		items = []CompletionItem{keywordItem(token.WITHIN)}
	default:
		for _, tok := range token.Keywords() {
			items = append(items, keywordItem(tok))
		}
	}

	return filterByPrefix(items, prefix)
}

// detectContext classifies the cursor position by lexing the text before
// the word being typed. It returns the context and that partial word.
func detectContext(doc *Document, pos Position) (CompletionContextType, string) {
	before := doc.GetTextBefore(pos)
	prefix := partialWord(before)
	if strings.HasPrefix(prefix, "$") {
		return ContextVariable, prefix
	}

	// Lex errors in unfinished text still leave usable tokens.
	tokens, _ := parser.Tokenize(before[:len(before)-len(prefix)])
	last := token.EOF
	for _, tok := range tokens {
		if tok.Type != token.EOF && tok.Type != token.ILLEGAL {
			last = tok.Type
		}
	}

	switch {
	case last == token.EOF, last == token.SEMICOLON:
		return ContextStatement, prefix
	case last == token.ASSIGN:
		return ContextReduceValue, prefix
	case last == token.LPAREN, last == token.COMMA, last == token.WITHIN, last == token.REDUCE:
		return ContextVariable, prefix
	case last == token.RPAREN, last == token.COUNT:
		return ContextAfterValue, prefix
	}
	return ContextUnknown, prefix
}

// partialWord returns the identifier or variable ending the text.
func partialWord(text string) string {
	i := len(text)
	for i > 0 && isNameChar(text[i-1]) {
		i--
	}
	if i > 0 && text[i-1] == '$' {
		i--
	}
	return text[i:]
}

func isNameChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_' || ch == '-'
}

func (s *Server) statementCompletions() []CompletionItem {
	items := make([]CompletionItem, 0, len(statementSnippets))
	for _, st := range statementSnippets {
		item := keywordItem(st.tok)
		item.Kind = CompletionItemKindSnippet
		if s.snippets {
			item.InsertText = st.snippet
			item.InsertTextFormat = InsertTextFormatSnippet
		} else {
			item.InsertText = st.plain
		}
		items = append(items, item)
	}
	return items
}

// reduceValueCompletions offers count and every statistic operator,
// registered extensions included.
func (s *Server) reduceValueCompletions() []CompletionItem {
	items := []CompletionItem{keywordItem(token.COUNT)}
	items[0].Kind = CompletionItemKindFunction

	for _, tok := range token.Keywords() {
		if !token.IsStatOperator(tok) {
			continue
		}
		item := keywordItem(tok)
		item.Kind = CompletionItemKindFunction
		if s.snippets {
			item.InsertText = tok.Spelling() + `(\$${1:x})`
			item.InsertTextFormat = InsertTextFormatSnippet
		} else {
			item.InsertText = tok.Spelling() + "("
		}
		items = append(items, item)
	}
	return items
}

// variableCompletions lists the variables used anywhere in the document,
// in order of first use, skipping $_ and the variable under the cursor.
// Each item replaces the partial word so a typed "$" is not doubled.
func variableCompletions(doc *Document, pos Position, prefix string) []CompletionItem {
	cursor := doc.PositionToOffset(pos)
	replace := Range{
		Start: doc.OffsetToPosition(cursor - len(prefix)),
		End:   pos,
	}

	tokens, _ := parser.Tokenize(doc.Content)
	seen := make(map[string]bool)
	var items []CompletionItem
	for _, tok := range tokens {
		if tok.Type != token.VARIABLE || tok.Literal == "$_" || seen[tok.Literal] {
			continue
		}
		if tok.Span.End.Offset == cursor {
			continue
		}
		seen[tok.Literal] = true
		items = append(items, CompletionItem{
			Label:    tok.Literal,
			Kind:     CompletionItemKindVariable,
			TextEdit: &TextEdit{Range: replace, NewText: tok.Literal},
		})
	}
	return items
}

func keywordItem(tok token.TokenType) CompletionItem {
	doc := keywordDoc(tok)
	return CompletionItem{
		Label:         tok.Spelling(),
		Kind:          CompletionItemKindKeyword,
		Detail:        doc.detail,
		Documentation: doc.text,
	}
}

// filterByPrefix keeps items whose label starts with prefix, ignoring
// case and the leading '$' of variables.
func filterByPrefix(items []CompletionItem, prefix string) []CompletionItem {
	if prefix == "" {
		return items
	}
	want := strings.ToLower(strings.TrimPrefix(prefix, "$"))
	filtered := make([]CompletionItem, 0, len(items))
	for _, item := range items {
		label := strings.ToLower(strings.TrimPrefix(item.Label, "$"))
		if strings.HasPrefix(label, want) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

package lsp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapql/internal/formatter"
	"github.com/leapstack-labs/leapql/internal/testutil"
	"github.com/leapstack-labs/leapql/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURI = "file:///work/queries.tql"

// request frames a JSON-RPC message. An id of zero makes a notification.
func request(t *testing.T, id int, method string, params any) string {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != 0 {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

func initialize(t *testing.T, snippets bool) string {
	t.Helper()
	return request(t, 1, "initialize", map[string]any{
		"processId": 1,
		"rootUri":   "file:///work",
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"completion": map[string]any{
					"completionItem": map[string]any{"snippetSupport": snippets},
				},
			},
		},
	})
}

func didOpen(t *testing.T, text string) string {
	t.Helper()
	return request(t, 0, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: testURI, LanguageID: "typeql", Version: 1, Text: text},
	})
}

func at(line, character uint32) TextDocumentPositionParams {
	return TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Position:     Position{Line: line, Character: character},
	}
}

// session feeds the framed messages to a server and returns everything it
// wrote back.
func session(t *testing.T, opts Options, messages ...string) []*JSONRPCMessage {
	t.Helper()
	if opts.Formatter == (formatter.Options{}) {
		opts.Formatter = formatter.DefaultOptions()
	}

	var out bytes.Buffer
	srv := NewServer(strings.NewReader(strings.Join(messages, "")), &out, opts)
	require.NoError(t, srv.Run(context.Background()))

	// Responses use the same framing, so a second server can read them.
	reader := NewServer(&out, io.Discard, Options{})
	var msgs []*JSONRPCMessage
	for {
		msg, err := reader.readMessage()
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err)
		msgs = append(msgs, msg)
	}
}

func response(t *testing.T, msgs []*JSONRPCMessage, id int, result any) *JSONRPCMessage {
	t.Helper()
	for _, msg := range msgs {
		if msg.ID != nil && string(*msg.ID) == fmt.Sprint(id) {
			if result != nil && msg.Error == nil {
				require.NoError(t, json.Unmarshal(msg.Result, result))
			}
			return msg
		}
	}
	t.Fatalf("no response with id %d", id)
	return nil
}

func diagnostics(t *testing.T, msgs []*JSONRPCMessage) []PublishDiagnosticsParams {
	t.Helper()
	var out []PublishDiagnosticsParams
	for _, msg := range msgs {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params PublishDiagnosticsParams
		require.NoError(t, json.Unmarshal(msg.Params, &params))
		out = append(out, params)
	}
	return out
}

func TestServerInitialize(t *testing.T) {
	msgs := session(t, Options{Version: "1.2.3"}, initialize(t, false), request(t, 0, "initialized", nil))

	var result InitializeResult
	resp := response(t, msgs, 1, &result)
	require.Nil(t, resp.Error)

	caps := result.Capabilities
	require.NotNil(t, caps.TextDocumentSync)
	assert.Equal(t, TextDocumentSyncKindFull, caps.TextDocumentSync.Change)
	assert.True(t, caps.HoverProvider)
	assert.True(t, caps.DocumentFormattingProvider)
	require.NotNil(t, caps.CompletionProvider)
	assert.Contains(t, caps.CompletionProvider.TriggerCharacters, "$")

	require.NotNil(t, result.ServerInfo)
	assert.Equal(t, "leapql", result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)
}

func TestServerLogsSession(t *testing.T) {
	rec := &testutil.Recorder{}
	session(t, Options{Logger: rec.Logger()}, initialize(t, true), request(t, 0, "exit", nil))

	msgs := rec.Messages()
	assert.Contains(t, msgs, "LeapQL LSP server starting")
	assert.Contains(t, msgs, "initialize")

	snippets, ok := rec.Attr("initialize", "snippets")
	require.True(t, ok)
	assert.True(t, snippets.Bool())

	root, ok := rec.Attr("initialize", "root")
	require.True(t, ok)
	assert.Equal(t, "/work", root.String())
}

func TestServerLintDiagnostics(t *testing.T) {
	msgs := session(t, Options{}, initialize(t, false), didOpen(t, "reduce $city = count within $city;\n"))

	published := diagnostics(t, msgs)
	require.Len(t, published, 1)
	assert.Equal(t, testURI, published[0].URI)
	require.Len(t, published[0].Diagnostics, 1)

	d := published[0].Diagnostics[0]
	assert.Equal(t, "RD02", d.Code)
	assert.Equal(t, "leapql", d.Source)
	assert.Equal(t, DiagnosticSeverityError, d.Severity)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 7}, End: Position{Line: 0, Character: 12}}, d.Range)
}

func TestServerLintConfig(t *testing.T) {
	cfg := lint.NewConfig().Disable("RD02")
	msgs := session(t, Options{Lint: cfg}, initialize(t, false), didOpen(t, "reduce $city = count within $city;\n"))

	published := diagnostics(t, msgs)
	require.Len(t, published, 1)
	assert.Empty(t, published[0].Diagnostics)
}

func TestServerSyntaxDiagnostics(t *testing.T) {
	msgs := session(t, Options{}, initialize(t, false), didOpen(t, "reduce $n = ;\n"))

	published := diagnostics(t, msgs)
	require.Len(t, published, 1)
	require.Len(t, published[0].Diagnostics, 1)

	d := published[0].Diagnostics[0]
	assert.Equal(t, "syntax", d.Code)
	assert.Equal(t, DiagnosticSeverityError, d.Severity)
	assert.Contains(t, d.Message, "expected count or a statistic")
	assert.Equal(t, Position{Line: 0, Character: 12}, d.Range.Start)
}

func TestServerDocumentLifecycle(t *testing.T) {
	change := request(t, 0, "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: "check;\n"}},
	})
	closeDoc := request(t, 0, "textDocument/didClose", DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
	})

	msgs := session(t, Options{}, initialize(t, false), didOpen(t, "reduce $n = ;\n"), change, closeDoc)

	published := diagnostics(t, msgs)
	require.Len(t, published, 3)
	assert.Len(t, published[0].Diagnostics, 1, "open reports the syntax error")
	assert.Empty(t, published[1].Diagnostics, "the fixed text is clean")
	assert.Empty(t, published[2].Diagnostics, "close clears markers")
}

func TestServerFormatting(t *testing.T) {
	format := func(id int) string {
		return request(t, id, "textDocument/formatting", DocumentFormattingParams{
			TextDocument: TextDocumentIdentifier{URI: testURI},
			Options:      FormattingOptions{TabSize: 4, InsertSpaces: true},
		})
	}

	t.Run("rewrites", func(t *testing.T) {
		msgs := session(t, Options{}, initialize(t, false), didOpen(t, "reduce   $n=count ;"), format(2))

		var edits []TextEdit
		resp := response(t, msgs, 2, &edits)
		require.Nil(t, resp.Error)
		require.Len(t, edits, 1)
		assert.Equal(t, "reduce $n = count;\n", edits[0].NewText)
		assert.Equal(t, Range{End: Position{Line: 0, Character: 19}}, edits[0].Range)
	})

	t.Run("already canonical", func(t *testing.T) {
		msgs := session(t, Options{}, initialize(t, false), didOpen(t, "reduce $n = count;\n"), format(2))

		var edits []TextEdit
		response(t, msgs, 2, &edits)
		assert.Empty(t, edits)
	})

	t.Run("syntax error", func(t *testing.T) {
		msgs := session(t, Options{}, initialize(t, false), didOpen(t, "reduce $n = ;"), format(2))

		resp := response(t, msgs, 2, nil)
		assert.Nil(t, resp.Error)
		assert.Equal(t, "null", string(resp.Result))
	})
}

func completionLabels(t *testing.T, snippets bool, text string, line, character uint32) []CompletionItem {
	t.Helper()
	msgs := session(t, Options{}, initialize(t, snippets), didOpen(t, text),
		request(t, 2, "textDocument/completion", CompletionParams{TextDocumentPositionParams: at(line, character)}))

	var list CompletionList
	response(t, msgs, 2, &list)
	return list.Items
}

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Label
	}
	return out
}

func TestServerCompletion(t *testing.T) {
	t.Run("statement start", func(t *testing.T) {
		items := completionLabels(t, false, "check;\n", 1, 0)
		assert.Equal(t, []string{"reduce", "check", "first"}, labels(items))
		assert.Equal(t, "reduce ", items[0].InsertText)
	})

	t.Run("statement snippets", func(t *testing.T) {
		items := completionLabels(t, true, "fi", 0, 2)
		require.Len(t, items, 1)
		assert.Equal(t, "first", items[0].Label)
		assert.Equal(t, InsertTextFormatSnippet, items[0].InsertTextFormat)
		assert.Equal(t, `first(\$${1:x});`, items[0].InsertText)
	})

	t.Run("reduce value", func(t *testing.T) {
		items := completionLabels(t, false, "reduce $n = m", 0, 13)
		assert.Equal(t, []string{"max", "mean", "median", "min"}, labels(items))
		assert.Equal(t, "max(", items[0].InsertText)
	})

	t.Run("all values", func(t *testing.T) {
		got := labels(completionLabels(t, false, "reduce $n = ", 0, 12))
		assert.Equal(t, "count", got[0])
		assert.Contains(t, got, "sum")
		assert.NotContains(t, got, "first")
	})

	t.Run("variables", func(t *testing.T) {
		text := "reduce $total = sum($price) within $city;\nfirst($"
		items := completionLabels(t, false, text, 1, 7)
		assert.Equal(t, []string{"$total", "$price", "$city"}, labels(items))

		require.NotNil(t, items[0].TextEdit)
		assert.Equal(t, "$total", items[0].TextEdit.NewText)
		assert.Equal(t, Range{
			Start: Position{Line: 1, Character: 6},
			End:   Position{Line: 1, Character: 7},
		}, items[0].TextEdit.Range)
	})

	t.Run("variable prefix", func(t *testing.T) {
		text := "reduce $total = sum($price) within $city;\nfirst($pr"
		assert.Equal(t, []string{"$price"}, labels(completionLabels(t, false, text, 1, 9)))
	})

	t.Run("after value", func(t *testing.T) {
		assert.Equal(t, []string{"within"}, labels(completionLabels(t, false, "reduce $n = count ", 0, 18)))
	})
}

func TestServerHover(t *testing.T) {
	text := "reduce $total = sum($price) within $city;\nfirst($city);\n"
	hover := func(line, character uint32) *Hover {
		msgs := session(t, Options{}, initialize(t, false), didOpen(t, text),
			request(t, 2, "textDocument/hover", HoverParams{TextDocumentPositionParams: at(line, character)}))

		var h *Hover
		response(t, msgs, 2, &h)
		return h
	}

	t.Run("keyword", func(t *testing.T) {
		h := hover(0, 17)
		require.NotNil(t, h)
		assert.Equal(t, MarkupKindMarkdown, h.Contents.Kind)
		assert.Contains(t, h.Contents.Value, "**sum** (statistic)")
		require.NotNil(t, h.Range)
		assert.Equal(t, Range{Start: Position{Line: 0, Character: 16}, End: Position{Line: 0, Character: 19}}, *h.Range)
	})

	t.Run("variable roles", func(t *testing.T) {
		h := hover(1, 8)
		require.NotNil(t, h)
		assert.Contains(t, h.Contents.Value, "**$city** (variable)")
		assert.Contains(t, h.Contents.Value, "grouping variable")
		assert.Contains(t, h.Contents.Value, "projected by `first`")
	})

	t.Run("reduce target", func(t *testing.T) {
		h := hover(0, 9)
		require.NotNil(t, h)
		assert.Contains(t, h.Contents.Value, "reduce target: `$total = sum($price)`")
	})

	t.Run("nothing", func(t *testing.T) {
		assert.Nil(t, hover(0, 14))
	})
}

func TestServerErrors(t *testing.T) {
	msgs := session(t, Options{},
		initialize(t, false),
		request(t, 2, "textDocument/definition", at(0, 0)),
		request(t, 3, "shutdown", nil),
		request(t, 4, "textDocument/hover", HoverParams{TextDocumentPositionParams: at(0, 0)}),
		request(t, 0, "exit", nil),
		request(t, 5, "shutdown", nil),
	)

	resp := response(t, msgs, 2, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)

	resp = response(t, msgs, 3, nil)
	assert.Nil(t, resp.Error)

	resp = response(t, msgs, 4, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)

	for _, msg := range msgs {
		if msg.ID != nil {
			assert.NotEqual(t, "5", string(*msg.ID), "messages after exit are not read")
		}
	}
}

func TestServerFraming(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr string
	}{
		{"negative length", "Content-Length: -5\r\n\r\n", "invalid Content-Length: -5"},
		{"oversized length", fmt.Sprintf("Content-Length: %d\r\n\r\n", maxContentLength+1), "exceeds"},
		{"not a number", "Content-Length: ten\r\n\r\n", "invalid Content-Length"},
		{"missing length", "Content-Type: application/json\r\n\r\n", "missing Content-Length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(strings.NewReader(tt.header), io.Discard, Options{})
			_, err := srv.readMessage()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			// A bad frame is skipped and the next one is served.
			msgs := session(t, Options{}, tt.header, initialize(t, false))
			resp := response(t, msgs, 1, nil)
			assert.Nil(t, resp.Error)
		})
	}
}

func TestServerRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := NewServer(strings.NewReader(""), io.Discard, Options{})
	assert.ErrorIs(t, srv.Run(ctx), context.Canceled)
}

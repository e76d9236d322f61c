package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

func testSession() *parse.Session {
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	return &parse.Session{
		Meta: parse.ConversationMetadata{SessionID: "s1", ProjectName: "proj", StartedAt: t0, EndedAt: t0.Add(90 * time.Second)},
		Messages: []parse.ParsedMessage{
			{Role: parse.RoleUser, Content: "list files", Timestamp: t0},
			{Role: parse.RoleUser, Meta: parse.MessageMeta{OriginalType: "file-history-snapshot"}},
			{Role: parse.RoleAssistant, Content: "[Calling tool: Bash]", ToolUses: &parse.ToolCalls{Calls: []parse.ToolCall{{ID: "t1", Name: "Bash"}}}},
			{Role: parse.RoleTool, Content: "main.go", ToolUses: &parse.ToolResult{ToolUseID: "t1"}},
			{Role: parse.RoleAssistant, Content: "There is one file"},
		},
	}
}

func TestRenderSession(t *testing.T) {
	out, hitLine := RenderSession(testSession(), Options{HitIdx: -1})

	assert.Equal(t, -1, hitLine)
	assert.True(t, strings.HasPrefix(out, "--- s1 [proj] (1m 30s) ---\n"))
	assert.Contains(t, out, "#0 USER >")
	assert.NotContains(t, out, "#1 ")
	assert.Contains(t, out, "#2 TOOL CALL > [result #3]")
	assert.Contains(t, out, "#3 TOOL RESULT > [call #2]")
	assert.Contains(t, out, "  There is one file")
	assert.NotContains(t, out, "\033[")
}

func TestRenderSession_GroupKeepsIndices(t *testing.T) {
	out, _ := RenderSession(testSession(), Options{HitIdx: -1, Group: &classify.GroupTools})

	assert.NotContains(t, out, "#0 ")
	assert.Contains(t, out, "#2 TOOL CALL > [result #3]")
	assert.Contains(t, out, "#3 TOOL RESULT > [call #2]")
	assert.NotContains(t, out, "#4 ")
}

func TestRenderSession_Window(t *testing.T) {
	out, hitLine := RenderSession(testSession(), Options{HitIdx: 3, Context: 0})

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), hitLine)
	assert.Equal(t, 2, hitLine)
	assert.Contains(t, lines[hitLine], ">> #3 TOOL RESULT")
	assert.Contains(t, out, "(2 messages before)")
	assert.Contains(t, out, "(1 messages after)")
}

func TestFromRows(t *testing.T) {
	msgs, cats := FromRows([]index.MessageRow{
		{Index: 0, Role: "assistant", Category: "mcp_tool", CallIDs: "a,b"},
		{Index: 1, Role: "tool", Category: "mcp_result", ResultID: "b", Ts: "2025-01-01T00:00:00Z"},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, []classify.Category{classify.MCPTool, classify.MCPResult}, cats)
	corr := classify.Correlate(msgs)
	assert.Equal(t, 1, corr.Results["b"])
	assert.Equal(t, 0, corr.Calls["a"])
	assert.True(t, msgs[1].HasTimestamp())
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestRenderConversation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "proj", "sess.jsonl"),
		`{"type":"user","uuid":"u1","timestamp":"2025-01-01T10:00:00Z","cwd":"/w","message":{"role":"user","content":"run ls"}}`,
		`{"type":"assistant","uuid":"a1","timestamp":"2025-01-01T10:00:01Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}}]}}`,
		`{"type":"user","uuid":"r1","timestamp":"2025-01-01T10:00:02Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"main.go"}]}}`,
	)
	writeFile(t, filepath.Join(root, "proj", "sess", "subagents", "agent-a1.jsonl"),
		`{"type":"assistant","uuid":"s1","isSidechain":true,"agentId":"a1","sessionId":"sess","timestamp":"2025-01-01T10:00:03Z","message":{"role":"assistant","content":[{"type":"text","text":"done"}]}}`,
	)

	db, err := index.OpenDB(filepath.Join(t.TempDir(), "ccs.db"))
	require.NoError(t, err)
	defer db.Close()
	ix := &index.Indexer{DB: db, Parser: parse.NewParser(nil, nil), Workers: 1}
	_, err = ix.IndexAll(context.Background(), root)
	require.NoError(t, err)

	out, hitLine, err := RenderConversation(db, "sess", Options{HitIdx: 2, Context: 5})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "--- sess [proj] /w (2s) +1 subagents ---\n"), out)
	assert.Contains(t, out, "#1 TOOL CALL > ")
	assert.Contains(t, out, "[result #2]")
	assert.Contains(t, out, "[call #1]")
	assert.Greater(t, hitLine, 0)

	_, _, err = RenderConversation(db, "missing", Options{HitIdx: -1})
	assert.Error(t, err)
}

func TestHighlightKeywords(t *testing.T) {
	got := highlightKeywords("Fix the Parser and the lexer", "parser AND lexer")
	assert.Equal(t, "Fix the "+colorBoldRed+"Parser"+colorReset+" and the "+colorBoldRed+"lexer"+colorReset, got)
	assert.Equal(t, "abc", highlightKeywords("abc", ""))
}

func TestHighlightKeywords_MultiByteCaseFolding(t *testing.T) {
	got := highlightKeywords("İİ parser", "parser")
	assert.Equal(t, "İİ "+colorBoldRed+"parser"+colorReset, got)

	got = highlightKeywords("CAFÉ au lait", "café")
	assert.Equal(t, colorBoldRed+"CAFÉ"+colorReset+" au lait", got)

	got = highlightKeywords("日本語の日本", "日本")
	assert.Equal(t, colorBoldRed+"日本"+colorReset+"語の"+colorBoldRed+"日本"+colorReset, got)
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"日本", "語"}, wrapLine("日本語", 4))
	assert.Equal(t, []string{"\033[1mab", "c\033[0m"}, wrapLine("\033[1mabc\033[0m", 2))
	assert.Equal(t, []string{""}, wrapLine("", 5))
}

package search

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

func write(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func seed(t *testing.T) *index.DB {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "alpha", "old.jsonl"),
		`{"type":"user","timestamp":"2025-01-01T10:00:00Z","message":{"role":"user","content":"rewrite the tokenizer"}}`,
		`{"type":"assistant","timestamp":"2025-01-01T10:01:00Z","message":{"role":"assistant","content":[{"type":"text","text":"The tokenizer is done"}]}}`,
	)
	write(t, filepath.Join(root, "beta", "new.jsonl"),
		`{"type":"user","timestamp":"2025-02-01T10:00:00Z","message":{"role":"user","content":"检查 数据库 连接"}}`,
		`{"type":"assistant","timestamp":"2025-02-01T10:00:01Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"mcp__db__query","input":{}}]}}`,
		`{"type":"user","timestamp":"2025-02-01T10:00:02Z","toolUseResult":{"rows":1},"message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"tokenizer table exists"}]}}`,
	)
	write(t, filepath.Join(root, "beta", "new", "subagents", "agent-x.jsonl"),
		`{"type":"assistant","isSidechain":true,"agentId":"x","sessionId":"new","timestamp":"2025-03-01T10:00:00Z","message":{"role":"assistant","content":[{"type":"text","text":"tokenizer found in subagent"}]}}`,
	)

	db, err := index.OpenDB(filepath.Join(t.TempDir(), "ccs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ix := &index.Indexer{DB: db, Parser: parse.NewParser(nil, nil), Workers: 1}
	_, err = ix.IndexAll(context.Background(), root)
	require.NoError(t, err)
	return db
}

func sessionIDs(rs []Result) []string {
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.SessionID
	}
	return ids
}

func TestSearch_FTS(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "tokenizer"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"old", "new"}, sessionIDs(results))
	for _, r := range results {
		assert.Contains(t, r.Snippet, ">>>tokenizer<<<")
	}

	results, err = Search(db, Options{Query: "tokenizer", Subagents: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"old", "new", "agent-x"}, sessionIDs(results))
}

func TestSearch_Filters(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "tokenizer", Role: "tool"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].SessionID)
	assert.Equal(t, "mcp_result", results[0].Category)
	assert.Equal(t, 2, results[0].MsgIdx)

	results, err = Search(db, Options{Query: "tokenizer", Categories: []string{"assistant_text"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, sessionIDs(results))

	results, err = Search(db, Options{Query: "tokenizer", Project: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, sessionIDs(results))

	results, err = Search(db, Options{Query: "tokenizer", Since: "2025-01-15"})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, sessionIDs(results))
}

func TestSearch_CJK(t *testing.T) {
	db := seed(t)

	results, err := Search(db, Options{Query: "数据库"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].SessionID)
	assert.Contains(t, results[0].Snippet, ">>>数据库<<<")
}

func TestListAll(t *testing.T) {
	db := seed(t)

	results, err := ListAll(db, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, sessionIDs(results))
	assert.Equal(t, -1, results[0].MsgIdx)
	assert.Equal(t, "rewrite the tokenizer", results[1].Summary)

	results, err = ListAll(db, Options{Subagents: true, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"agent-x"}, sessionIDs(results))
}

func TestMakeSnippet(t *testing.T) {
	assert.Equal(t, "...bc >>>Key<<< de...", makeSnippet("abc Key def", "key", 3))
	assert.Equal(t, "abcdef", makeSnippet("abcdef", "zz", 10))
	assert.Equal(t, "ab...", makeSnippet("abcdef", "zz", 1))
}

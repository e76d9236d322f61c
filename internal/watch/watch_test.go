package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

const (
	userLine     = `{"type":"user","uuid":"u1","timestamp":"2025-01-01T10:00:00Z","message":{"role":"user","content":"hello watcher"}}`
	subagentLine = `{"type":"assistant","uuid":"s1","isSidechain":true,"agentId":"a1","sessionId":"sess","timestamp":"2025-01-01T10:00:03Z","message":{"role":"assistant","content":[{"type":"text","text":"exploring"}]}}`
)

func startWatcher(t *testing.T, root string) (*index.DB, <-chan string) {
	t.Helper()
	db, err := index.OpenDB(filepath.Join(t.TempDir(), "ccs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w, err := New(root, &index.Indexer{DB: db, Parser: parse.NewParser(nil, nil), Workers: 1})
	require.NoError(t, err)
	w.Debounce = 50 * time.Millisecond

	events := make(chan string, 64)
	w.OnIndex = func(path string, _ error) {
		select {
		case events <- path:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return db, events
}

func waitFor(t *testing.T, events <-chan string, path string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case p := <-events:
			if p == path {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", path)
		}
	}
}

func TestWatcher_IndexesNewAndRemovedFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proj"), 0o755))
	db, events := startWatcher(t, root)

	sess := filepath.Join(root, "proj", "sess.jsonl")
	require.NoError(t, os.WriteFile(sess, []byte(userLine+"\n"), 0o644))
	waitFor(t, events, sess)

	s, err := db.GetSession("sess")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "proj", s.Project)
	assert.Equal(t, "hello watcher", s.Summary)

	require.NoError(t, os.Remove(sess))
	waitFor(t, events, sess)

	s, err = db.GetSession("sess")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "proj"), 0o755))
	db, events := startWatcher(t, root)

	dir := filepath.Join(root, "proj", "sess", "subagents")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	agent := filepath.Join(dir, "agent-a1.jsonl")
	require.NoError(t, os.WriteFile(agent, []byte(subagentLine+"\n"), 0o644))
	waitFor(t, events, agent)

	s, err := db.GetSession("agent-a1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "subagent", s.Kind)
	assert.Equal(t, "sess", s.ParentSessionID)
}

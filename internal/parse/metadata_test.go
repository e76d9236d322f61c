package parse

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func records(t *testing.T, lines ...string) []RawRecord {
	t.Helper()
	out := make([]RawRecord, len(lines))
	for i, l := range lines {
		out[i] = mustRecord(t, l)
	}
	return out
}

func TestExtractMetadata_Root(t *testing.T) {
	path := filepath.Join("/data", "-Users-me-proj", "0f1e2d.jsonl")
	meta := ExtractMetadata(path, records(t,
		`{"type":"user","message":{"role":"user","content":"hi"}}`,
		`{"type":"user","cwd":"/Users/me/proj","gitBranch":"main","message":{"role":"user","content":"plan it"}}`,
		`{"type":"assistant","cwd":"/other","gitBranch":"dev","message":{"role":"assistant","content":[{"type":"text","text":"Let me explore"}]}}`,
	))

	assert.Equal(t, "-Users-me-proj", meta.ProjectName)
	assert.Equal(t, filepath.Join("/data", "-Users-me-proj"), meta.ProjectPath)
	assert.Equal(t, "0f1e2d", meta.SessionID)
	assert.Equal(t, path, meta.FilePath)
	assert.Equal(t, "main", meta.GitBranch)
	assert.Equal(t, "/Users/me/proj", meta.WorkingDirectory)
	assert.False(t, meta.IsSubagent)
	assert.Empty(t, meta.AgentType, "agent type is only set for subagents")
	assert.Empty(t, meta.ParentSessionID)
}

func TestExtractMetadata_Subagent(t *testing.T) {
	path := filepath.Join("/data", "proj", "root-1", "subagents", "agent-a1.jsonl")
	meta := ExtractMetadata(path, records(t,
		`{"type":"user","isSidechain":true,"agentId":"a1","sessionId":"root-1","message":{"role":"user","content":"Find all callers"}}`,
		`{"type":"assistant","isSidechain":true,"agentId":"a1","sessionId":"root-1","message":{"role":"assistant","content":[{"type":"text","text":"I'll start the exploration now."}]}}`,
	))

	assert.True(t, meta.IsSubagent)
	assert.Equal(t, "a1", meta.AgentID)
	assert.Equal(t, "root-1", meta.ParentSessionID)
	assert.Equal(t, "agent-a1", meta.SessionID)
	assert.Equal(t, "Explore", meta.AgentType)
}

func TestExtractMetadata_SidechainWithoutAgentID(t *testing.T) {
	meta := ExtractMetadata("/p/s.jsonl", records(t,
		`{"type":"user","isSidechain":true,"sessionId":"root"}`,
	))
	assert.False(t, meta.IsSubagent)
	assert.Empty(t, meta.ParentSessionID)
}

func TestInferAgentType(t *testing.T) {
	tests := []struct{ text, want string }{
		{"I will explore the codebase", "Explore"},
		{"Here is my plan", "Plan"},
		{"According to the Claude Code docs", "claude-code-guide"},
		{"See the documentation", "claude-code-guide"},
		{"Done.", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferAgentType(tt.text), tt.text)
	}
}

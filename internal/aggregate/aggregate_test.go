package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

func session(id string, tokens int64, cost float64) *parse.Session {
	return &parse.Session{
		Meta: parse.ConversationMetadata{SessionID: id},
		Messages: []parse.ParsedMessage{
			{Role: parse.RoleUser},
			{Role: parse.RoleAssistant, TokenCount: tokens, CostUSD: cost},
		},
	}
}

func subagent(id, parent string, tokens int64, cost float64) *parse.Session {
	s := session(id, tokens, cost)
	s.Meta.IsSubagent = true
	s.Meta.ParentSessionID = parent
	s.Meta.AgentID = id
	return s
}

func TestCombine(t *testing.T) {
	root := session("root", 100, 1.0)
	children := []*parse.Session{
		subagent("a", "root", 50, 0.5),
		subagent("b", "root", 25, 0.5),
		subagent("c", "other", 1000, 10),
		session("d", 1000, 10),
		nil,
	}

	got := Combine(root, children)

	assert.Equal(t, "root", got.SessionID)
	assert.Equal(t, int64(100), got.RootTokens)
	assert.Equal(t, int64(75), got.SubagentTokens)
	assert.Equal(t, int64(175), got.TotalTokens)
	assert.InDelta(t, 2.0, got.TotalCost, 1e-9)
	assert.Equal(t, 3, got.SessionCount)
	assert.InDelta(t, 0.5, got.SubagentShare(), 1e-9)
	require.Len(t, got.Children, 2)
}

func TestCombine_NoChildren(t *testing.T) {
	got := Combine(session("solo", 7, 0), nil)
	assert.Equal(t, 1, got.SessionCount)
	assert.Equal(t, int64(7), got.TotalTokens)
	assert.Zero(t, got.SubagentShare())
}

func TestGroup(t *testing.T) {
	sessions := []*parse.Session{
		subagent("a", "r2", 5, 0),
		session("r1", 1, 0),
		session("r2", 2, 0),
		subagent("orphan", "gone", 9, 0),
	}
	got := Group(sessions)

	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].SessionID)
	assert.Equal(t, 1, got[0].SessionCount)
	assert.Equal(t, "r2", got[1].SessionID)
	assert.Equal(t, int64(7), got[1].TotalTokens)
}

func TestDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{2*time.Minute + 3*time.Second, "2m 3s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3s"},
		{26 * time.Hour, "26h 0m 0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(start, start.Add(tt.d)))
	}
	assert.Equal(t, "N/A", Duration(time.Time{}, start))
}

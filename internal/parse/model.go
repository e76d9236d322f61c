package parse

import "time"

// Role is the canonical speaker of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSummary   Role = "summary"
)

// Kinds is the set of content block kinds seen while flattening a message.
type Kinds uint8

const (
	KindText Kinds = 1 << iota
	KindThinking
	KindToolUse
	KindToolResult
	KindSystemReminder
)

func (k Kinds) Has(kind Kinds) bool { return k&kind != 0 }

// Usage is the token breakdown reported by the API for one assistant turn.
type Usage struct {
	Input      int64 `json:"input_tokens"`
	Output     int64 `json:"output_tokens"`
	CacheWrite int64 `json:"cache_creation_tokens"`
	CacheRead  int64 `json:"cache_read_tokens"`
}

// MessageMeta carries auxiliary per-record fields.
type MessageMeta struct {
	OriginalType string `json:"original_type"`
	Cwd          string `json:"cwd,omitempty"`
	GitBranch    string `json:"git_branch,omitempty"`
	IsMeta       bool   `json:"is_meta"`
	Model        string `json:"model"`
}

// ParsedMessage is the canonical form of one record. Values are never
// modified after normalization; timestamp repair returns copies.
type ParsedMessage struct {
	UUID       string      `json:"uuid"`
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	Kinds      Kinds       `json:"-"`
	Timestamp  time.Time   `json:"timestamp"`
	ToolUses   ToolUses    `json:"tool_uses,omitempty"`
	TokenCount int64       `json:"token_count"`
	CostUSD    float64     `json:"cost_usd"`
	Usage      Usage       `json:"usage"`
	Meta       MessageMeta `json:"metadata"`
	Line       int         `json:"line"`
}

func (m ParsedMessage) HasTimestamp() bool { return !m.Timestamp.IsZero() }

// Calls returns the tool calls issued by the message, if any.
func (m ParsedMessage) Calls() []ToolCall {
	if tc, ok := m.ToolUses.(*ToolCalls); ok {
		return tc.Calls
	}
	return nil
}

// ResultID returns the id of the tool call this message answers, if any.
func (m ParsedMessage) ResultID() string {
	switch tu := m.ToolUses.(type) {
	case *ToolResult:
		return tu.ToolUseID
	case *SubagentResult:
		return tu.ToolUseID
	}
	return ""
}

// ConversationMetadata describes one session file.
type ConversationMetadata struct {
	ProjectName      string    `json:"project_name"`
	ProjectPath      string    `json:"project_path"`
	SessionID        string    `json:"session_id"`
	GitBranch        string    `json:"git_branch,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`
	WorkingDirectory string    `json:"working_directory,omitempty"`
	MessageCount     int       `json:"message_count"`
	FilePath         string    `json:"file_path"`

	IsSubagent      bool   `json:"is_subagent"`
	ParentSessionID string `json:"parent_session_id,omitempty"`
	AgentID         string `json:"agent_id,omitempty"`
	AgentType       string `json:"agent_type,omitempty"`
}

// Session is the parse result of one file.
type Session struct {
	Meta     ConversationMetadata
	Messages []ParsedMessage
	ModTime  time.Time
	Size     int64
	// Warnings holds record-level problems that were recovered from:
	// *DecodeError, *SchemaDeviationError, *UnknownModelError, *RecordError.
	Warnings []error
}

// Tokens sums TokenCount over all messages.
func (s *Session) Tokens() int64 {
	var n int64
	for _, m := range s.Messages {
		n += m.TokenCount
	}
	return n
}

// Cost sums CostUSD over all messages.
func (s *Session) Cost() float64 {
	var c float64
	for _, m := range s.Messages {
		c += m.CostUSD
	}
	return c
}

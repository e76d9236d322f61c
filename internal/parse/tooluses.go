package parse

import "encoding/json"

// ToolUses is the tool-related payload of a message. It is one of
// *ToolCalls, *ToolResult or *SubagentResult; nil means no tool involvement.
type ToolUses interface {
	toolUses()
}

// ToolCall is one tool_use block issued by the assistant.
type ToolCall struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// FilePath returns input.file_path, used by the Read tool.
func (c ToolCall) FilePath() string {
	if len(c.Input) == 0 {
		return ""
	}
	var in struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(c.Input, &in); err != nil {
		return ""
	}
	return in.FilePath
}

// ToolCalls is the call bundle of an assistant message.
type ToolCalls struct {
	Calls []ToolCall
}

// ToolResult is the result of a tool call, correlated by ToolUseID.
type ToolResult struct {
	ToolUseID string
	// ToolName is the tool_name hint some payloads carry.
	ToolName string
	Payload  json.RawMessage
}

// SubagentResult is the result of a delegated sub-session.
type SubagentResult struct {
	ToolUseID string
	AgentID   string
	Payload   json.RawMessage
}

func (*ToolCalls) toolUses()      {}
func (*ToolResult) toolUses()     {}
func (*SubagentResult) toolUses() {}

func (t *ToolCalls) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string     `json:"kind"`
		Calls []ToolCall `json:"tool_calls"`
	}{"tool_calls", t.Calls})
}

func (t *ToolResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string          `json:"kind"`
		ToolUseID string          `json:"tool_use_id,omitempty"`
		ToolName  string          `json:"tool_name,omitempty"`
		Payload   json.RawMessage `json:"payload,omitempty"`
	}{"tool_result", t.ToolUseID, t.ToolName, t.Payload})
}

func (t *SubagentResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind      string          `json:"kind"`
		ToolUseID string          `json:"tool_use_id,omitempty"`
		AgentID   string          `json:"agent_id"`
		Payload   json.RawMessage `json:"payload,omitempty"`
	}{"subagent_result", t.ToolUseID, t.AgentID, t.Payload})
}

// resultFromPayload builds the result variant for a toolUseResult payload.
// Payloads are objects, arrays or bare strings depending on the tool.
func resultFromPayload(payload json.RawMessage, toolUseID string) ToolUses {
	var obj map[string]json.RawMessage
	if json.Unmarshal(payload, &obj) == nil && obj != nil {
		if raw, ok := obj["agentId"]; ok {
			return &SubagentResult{ToolUseID: toolUseID, AgentID: rawString(raw), Payload: payload}
		}
		return &ToolResult{ToolUseID: toolUseID, ToolName: rawString(obj["tool_name"]), Payload: payload}
	}
	return &ToolResult{ToolUseID: toolUseID, Payload: payload}
}

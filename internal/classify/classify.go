package classify

import (
	"strings"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

const snapshotType = "file-history-snapshot"

// turnTypes are the record types of genuine user turns. "unknown" is what
// the normalizer records for a missing type; empty means the message was
// built without record metadata.
var turnTypes = map[string]bool{"": true, "unknown": true, "user": true, "human": true}

// Classify returns the category of msg. types must come from
// BuildCallTypes over the session msg belongs to.
//
// Rules are tried in order: meta flag, file history snapshot, tool results
// (by the type of the call they answer, then by payload), genuine user
// input, system reminders, assistant output. Anything left over is a basic
// tool result.
func Classify(msg parse.ParsedMessage, types CallTypes) Category {
	if msg.Meta.IsMeta {
		return Meta
	}
	// checked before the role rules: snapshots are normalized to the user role
	if msg.Meta.OriginalType == snapshotType {
		return FileHistorySnapshot
	}

	switch msg.Role {
	case parse.RoleTool:
		return classifyResult(msg, types)
	case parse.RoleUser:
		if msg.Kinds.Has(parse.KindSystemReminder) {
			// Read output wrapped in a reminder, not user input
			return BasicToolResult
		}
		if !turnTypes[strings.ToLower(msg.Meta.OriginalType)] {
			// system, progress, queue-operation and other bookkeeping records
			return BasicToolResult
		}
		return User
	case parse.RoleAssistant:
		return classifyAssistant(msg)
	}
	return BasicToolResult
}

func classifyResult(msg parse.ParsedMessage, types CallTypes) Category {
	if id := msg.ResultID(); id != "" {
		switch types[id] {
		case CallMCP:
			return MCPResult
		case CallSkill:
			return SkillResult
		case CallSubagent:
			return SubagentResult
		case CallBasic:
			return BasicToolResult
		}
	}

	switch tu := msg.ToolUses.(type) {
	case *parse.SubagentResult:
		return SubagentResult
	case *parse.ToolResult:
		switch {
		case isMCP(tu.ToolName):
			return MCPResult
		case tu.ToolName == skillTool:
			return SkillResult
		}
	}
	return BasicToolResult
}

func classifyAssistant(msg parse.ParsedMessage) Category {
	if msg.Kinds.Has(parse.KindThinking) {
		return AssistantThinking
	}
	calls := msg.Calls()
	if len(calls) == 0 {
		return AssistantText
	}
	// the first call with a specific category decides
	for _, c := range calls {
		switch {
		case c.Name == taskTool:
			return SubagentCall
		case isMCP(c.Name):
			return mcpCategory(c.Name)
		case c.Name == skillTool:
			return SkillExecute
		case isSkillRead(c):
			return SkillRead
		}
	}
	return BasicToolCall
}

func mcpCategory(name string) Category {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "list"):
		return MCPList
	case strings.Contains(lower, "read"):
		return MCPRead
	default:
		return MCPTool
	}
}

// All classifies every message of one session. The result is index-aligned
// with msgs.
func All(msgs []parse.ParsedMessage) []Category {
	types := BuildCallTypes(msgs)
	out := make([]Category, len(msgs))
	for i, m := range msgs {
		out[i] = Classify(m, types)
	}
	return out
}

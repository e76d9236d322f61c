package classify

import (
	"strings"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

// CallType is the kind of tool a call id refers to.
type CallType string

const (
	CallBasic    CallType = "basic"
	CallMCP      CallType = "mcp"
	CallSkill    CallType = "skill"
	CallSubagent CallType = "subagent"
)

// CallTypes maps tool call ids to the kind of tool they invoked. It is built
// per session and passed to Classify explicitly.
type CallTypes map[string]CallType

const (
	taskTool  = "Task"
	skillTool = "Skill"
	readTool  = "Read"
	mcpPrefix = "mcp__"
	skillsDir = ".claude/skills"
)

func isMCP(name string) bool { return strings.HasPrefix(name, mcpPrefix) }

func isSkillRead(c parse.ToolCall) bool {
	return c.Name == readTool && strings.Contains(c.FilePath(), skillsDir)
}

// TypeOf returns the call type of c.
func TypeOf(c parse.ToolCall) CallType {
	switch {
	case c.Name == taskTool:
		return CallSubagent
	case isMCP(c.Name):
		return CallMCP
	case c.Name == skillTool, isSkillRead(c):
		return CallSkill
	default:
		return CallBasic
	}
}

// BuildCallTypes scans the assistant messages of one session once and
// records the type of every call that has an id.
func BuildCallTypes(msgs []parse.ParsedMessage) CallTypes {
	types := make(CallTypes)
	for _, m := range msgs {
		if m.Role != parse.RoleAssistant {
			continue
		}
		for _, c := range m.Calls() {
			if c.ID == "" {
				continue
			}
			types[c.ID] = TypeOf(c)
		}
	}
	return types
}

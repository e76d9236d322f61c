// Package classify maps parsed messages onto display categories and links
// tool calls to their results.
package classify

import "strings"

// Category is the semantic type of a message.
type Category string

const (
	User                Category = "user"
	AssistantText       Category = "assistant_text"
	AssistantThinking   Category = "assistant_thinking"
	BasicToolCall       Category = "basic_tool_call"
	BasicToolResult     Category = "basic_tool_result"
	MCPList             Category = "mcp_list"
	MCPRead             Category = "mcp_read"
	MCPTool             Category = "mcp_tool"
	MCPResult           Category = "mcp_result"
	SkillExecute        Category = "skill_execute"
	SkillRead           Category = "skill_read"
	SkillResult         Category = "skill_result"
	SubagentCall        Category = "subagent_call"
	SubagentResult      Category = "subagent_result"
	Meta                Category = "meta"
	FileHistorySnapshot Category = "file_history_snapshot"
)

// Categories lists every category in display order.
var Categories = []Category{
	User, AssistantText, AssistantThinking,
	BasicToolCall, BasicToolResult,
	MCPList, MCPRead, MCPTool, MCPResult,
	SkillExecute, SkillRead, SkillResult,
	SubagentCall, SubagentResult,
	Meta, FileHistorySnapshot,
}

var labels = map[Category]string{
	User:                "User",
	AssistantText:       "Assistant",
	AssistantThinking:   "Thinking",
	BasicToolCall:       "Tool Call",
	BasicToolResult:     "Tool Result",
	MCPList:             "MCP List",
	MCPRead:             "MCP Read",
	MCPTool:             "MCP Tool",
	MCPResult:           "MCP Result",
	SkillExecute:        "Skill",
	SkillRead:           "Skill Read",
	SkillResult:         "Skill Result",
	SubagentCall:        "Subagent Call",
	SubagentResult:      "Subagent Result",
	Meta:                "Meta",
	FileHistorySnapshot: "File History",
}

// Label is the short human-readable name of c.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// IsTool reports whether c is a tool call or result of any kind.
func (c Category) IsTool() bool {
	return GroupTools.Contains(c)
}

// Group is a named set of categories used for filtering.
type Group struct {
	Name       string
	Categories []Category
	// Sub marks a narrower view inside "All Tools". Sub groups are not
	// selected by default.
	Sub bool
}

// Contains reports whether c belongs to g.
func (g Group) Contains(c Category) bool {
	for _, gc := range g.Categories {
		if gc == c {
			return true
		}
	}
	return false
}

var (
	GroupUser      = Group{Name: "User", Categories: []Category{User}}
	GroupAssistant = Group{Name: "Assistant", Categories: []Category{AssistantText, AssistantThinking}}
	GroupTools     = Group{Name: "All Tools", Categories: []Category{
		BasicToolCall, BasicToolResult,
		MCPList, MCPRead, MCPTool, MCPResult,
		SkillExecute, SkillRead, SkillResult,
		SubagentCall, SubagentResult,
	}}
	GroupMeta      = Group{Name: "Meta", Categories: []Category{Meta}}
	GroupMCP       = Group{Name: "MCP only", Categories: []Category{MCPList, MCPRead, MCPTool, MCPResult}, Sub: true}
	GroupSkills    = Group{Name: "Skills only", Categories: []Category{SkillExecute, SkillRead, SkillResult}, Sub: true}
	GroupSubagents = Group{Name: "Subagents only", Categories: []Category{SubagentCall, SubagentResult}, Sub: true}
)

// Groups lists the filter groups in display order. File history snapshots
// belong to no group and are hidden from every filtered view.
var Groups = []Group{GroupUser, GroupAssistant, GroupTools, GroupMeta, GroupMCP, GroupSkills, GroupSubagents}

// GroupByName finds a group by case-insensitive name or by one of the short
// aliases user, assistant, tools, meta, mcp, skills, subagents.
func GroupByName(name string) (Group, bool) {
	switch name {
	case "user":
		return GroupUser, true
	case "assistant":
		return GroupAssistant, true
	case "tools":
		return GroupTools, true
	case "meta":
		return GroupMeta, true
	case "mcp":
		return GroupMCP, true
	case "skills":
		return GroupSkills, true
	case "subagents":
		return GroupSubagents, true
	}
	for _, g := range Groups {
		if strings.EqualFold(g.Name, name) {
			return g, true
		}
	}
	return Group{}, false
}

package classify

import (
	"encoding/json"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

func userMsg(text string) parse.ParsedMessage {
	return parse.ParsedMessage{Role: parse.RoleUser, Content: text, Kinds: parse.KindText, Meta: parse.MessageMeta{OriginalType: "user"}}
}

func assistantText(text string) parse.ParsedMessage {
	return parse.ParsedMessage{Role: parse.RoleAssistant, Content: text, Kinds: parse.KindText, Meta: parse.MessageMeta{OriginalType: "assistant"}}
}

func call(id, name string, input string) parse.ToolCall {
	c := parse.ToolCall{ID: id, Name: name}
	if input != "" {
		c.Input = json.RawMessage(input)
	}
	return c
}

func callMsg(calls ...parse.ToolCall) parse.ParsedMessage {
	return parse.ParsedMessage{
		Role:     parse.RoleAssistant,
		Kinds:    parse.KindToolUse,
		ToolUses: &parse.ToolCalls{Calls: calls},
		Meta:     parse.MessageMeta{OriginalType: "assistant"},
	}
}

func resultMsg(id string) parse.ParsedMessage {
	return parse.ParsedMessage{
		Role:     parse.RoleTool,
		Kinds:    parse.KindToolResult,
		ToolUses: &parse.ToolResult{ToolUseID: id},
		Meta:     parse.MessageMeta{OriginalType: "user"},
	}
}

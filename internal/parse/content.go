package parse

import (
	"bytes"
	"encoding/json"
	"strings"
)

const systemReminderTag = "<system-reminder>"

// flattenContent renders message content as plain text. Content is a string,
// a list of blocks, or a single block. Thinking blocks become
// "[Thinking: ...]", blocks with nested content are flattened recursively and
// tool_use blocks are left out. The kinds of blocks seen are returned with
// the text so later stages do not have to search the rendered string.
func flattenContent(raw json.RawMessage) (string, Kinds) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", 0
	}

	switch raw[0] {
	case 'n':
		return "", 0
	case '"':
		s := rawString(raw)
		return s, textKinds(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", 0
		}
		var parts []string
		var kinds Kinds
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 {
				continue
			}
			switch item[0] {
			case '{':
				text, k, ok := flattenBlock(item)
				kinds |= k
				if ok {
					parts = append(parts, text)
				}
			case '"':
				s := rawString(item)
				kinds |= textKinds(s)
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n"), kinds
	case '{':
		text, k, _ := flattenBlock(raw)
		return text, k
	default:
		// bare number or boolean
		if !truthy(raw) {
			return "", 0
		}
		return string(raw), KindText
	}
}

// flattenBlock renders one content block. ok is false for blocks that
// contribute no text.
func flattenBlock(raw json.RawMessage) (text string, kinds Kinds, ok bool) {
	var block map[string]json.RawMessage
	if err := json.Unmarshal(raw, &block); err != nil {
		return "", 0, false
	}
	typ := rawString(block["type"])

	if typ == "text" {
		if v, has := block["text"]; has {
			s := rawString(v)
			return s, textKinds(s) | KindText, true
		}
	}
	if typ == "thinking" {
		if v, has := block["thinking"]; has {
			return "[Thinking: " + rawString(v) + "]", KindThinking, true
		}
	}
	if nested, has := block["content"]; has {
		s, k := flattenContent(nested)
		if typ == "tool_result" {
			k |= KindToolResult
		}
		return s, k, true
	}

	switch typ {
	case "tool_use":
		return "", KindToolUse, false
	case "tool_result":
		return "", KindToolResult, false
	}
	return "", 0, false
}

func textKinds(s string) Kinds {
	if s == "" {
		return 0
	}
	k := KindText
	if strings.Contains(strings.ToLower(s), systemReminderTag) {
		k |= KindSystemReminder
	}
	return k
}

// blockScan is what the normalizer needs from the top-level block list.
type blockScan struct {
	calls         []ToolCall
	hasToolResult bool
	toolResultID  string
}

func scanBlocks(raw json.RawMessage) blockScan {
	var scan blockScan
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return scan
	}
	for _, item := range items {
		var block map[string]json.RawMessage
		if err := json.Unmarshal(item, &block); err != nil || block == nil {
			continue
		}
		switch rawString(block["type"]) {
		case "tool_use":
			scan.calls = append(scan.calls, ToolCall{
				ID:    rawString(block["id"]),
				Name:  rawString(block["name"]),
				Input: block["input"],
			})
		case "tool_result":
			scan.hasToolResult = true
			if _, has := block["tool_use_id"]; has && scan.toolResultID == "" {
				scan.toolResultID = rawString(block["tool_use_id"])
			}
		}
	}
	return scan
}

package classify

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

// Invocation is one tool call located in a session.
type Invocation struct {
	MessageIndex int
	Timestamp    time.Time
	Call         parse.ToolCall
}

// ToolUsage summarizes the tool calls of a session.
type ToolUsage struct {
	TotalCalls  int
	UniqueTools int
	Counts      map[string]int
	// Sequence lists tool names in call order.
	Sequence []string
	Calls    []Invocation
}

// Invocations lists every tool call issued by an assistant message.
func Invocations(msgs []parse.ParsedMessage) []Invocation {
	var out []Invocation
	for i, m := range msgs {
		if m.Role != parse.RoleAssistant {
			continue
		}
		for _, c := range m.Calls() {
			if c.Name == "" {
				c.Name = "unknown"
			}
			out = append(out, Invocation{MessageIndex: i, Timestamp: m.Timestamp, Call: c})
		}
	}
	return out
}

// Usage computes tool usage statistics for one session.
func Usage(msgs []parse.ParsedMessage) ToolUsage {
	calls := Invocations(msgs)
	seq := lo.Map(calls, func(inv Invocation, _ int) string { return inv.Call.Name })
	counts := lo.CountValues(seq)
	return ToolUsage{
		TotalCalls:  len(calls),
		UniqueTools: len(counts),
		Counts:      counts,
		Sequence:    seq,
		Calls:       calls,
	}
}

// ToolCount is one row of a usage ranking.
type ToolCount struct {
	Name  string
	Count int
}

// Ranked returns tool counts, most used first, ties by name.
func (u ToolUsage) Ranked() []ToolCount {
	out := make([]ToolCount, 0, len(u.Counts))
	for name, n := range u.Counts {
		out = append(out, ToolCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// EventType is a coarse description of what a tool call did.
type EventType string

const (
	FileCreated     EventType = "file_created"
	FileModified    EventType = "file_modified"
	FileAccessed    EventType = "file_accessed"
	CommandExecuted EventType = "command_executed"
	CodeSearched    EventType = "code_searched"
	DirectoryListed EventType = "directory_listed"
)

var toolEvents = map[string]EventType{
	"Write":     FileCreated,
	"Edit":      FileModified,
	"MultiEdit": FileModified,
	"Read":      FileAccessed,
	"Bash":      CommandExecuted,
	"Grep":      CodeSearched,
	"LS":        DirectoryListed,
}

// Event is a technical event derived from a tool call.
type Event struct {
	MessageUUID string    `json:"message_uuid"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	ToolName    string    `json:"tool_name"`
	FilePath    string    `json:"file_path,omitempty"`
}

// Events maps the calls of well-known built-in tools to technical events.
// Calls to other tools produce none.
func Events(msgs []parse.ParsedMessage) []Event {
	var out []Event
	for _, inv := range Invocations(msgs) {
		typ, ok := toolEvents[inv.Call.Name]
		if !ok {
			continue
		}
		out = append(out, Event{
			MessageUUID: msgs[inv.MessageIndex].UUID,
			Type:        typ,
			Timestamp:   inv.Timestamp,
			ToolName:    inv.Call.Name,
			FilePath:    inv.Call.FilePath(),
		})
	}
	return out
}

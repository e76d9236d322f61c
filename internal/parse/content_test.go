package parse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenContent(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantKinds Kinds
	}{
		{"string", `"hello"`, "hello", KindText},
		{"empty", ``, "", 0},
		{"null", `null`, "", 0},
		{"text blocks join", `[{"type":"text","text":"A"},{"type":"text","text":"B"}]`, "A\nB", KindText},
		{"thinking", `[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"ok"}]`, "[Thinking: hmm]\nok", KindThinking | KindText},
		{"tool use skipped", `[{"type":"text","text":"go"},{"type":"tool_use","id":"t1","name":"Bash"}]`, "go", KindText | KindToolUse},
		{"nested tool result", `[{"type":"tool_result","tool_use_id":"t1","content":[{"type":"text","text":"out"}]}]`, "out", KindToolResult | KindText},
		{"nested string content", `[{"type":"tool_result","tool_use_id":"t1","content":"done"}]`, "done", KindToolResult | KindText},
		{"single block object", `{"type":"text","text":"solo"}`, "solo", KindText},
		{"unknown object dropped", `{"type":"image","source":{"data":"..."}}`, "", 0},
		{"string items in list", `["a",{"type":"text","text":"b"}]`, "a\nb", KindText},
		{"system reminder", `"<system-reminder>careful</system-reminder>"`, "<system-reminder>careful</system-reminder>", KindText | KindSystemReminder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kinds := flattenContent(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestFlattenContent_UserTextMentioningThinkingIsNotThinking(t *testing.T) {
	_, kinds := flattenContent(json.RawMessage(`"what does [Thinking: x] mean?"`))
	assert.False(t, kinds.Has(KindThinking))
}

func TestScanBlocks(t *testing.T) {
	scan := scanBlocks(json.RawMessage(`[
		{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"/a.go"}},
		{"type":"tool_use","id":"t2","name":"Bash"},
		{"type":"tool_result","tool_use_id":"t0"}
	]`))

	if assert.Len(t, scan.calls, 2) {
		assert.Equal(t, "t1", scan.calls[0].ID)
		assert.Equal(t, "/a.go", scan.calls[0].FilePath())
		assert.Equal(t, "", scan.calls[1].FilePath())
	}
	assert.True(t, scan.hasToolResult)
	assert.Equal(t, "t0", scan.toolResultID)
}

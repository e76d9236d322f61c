package parse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Normalizer turns raw records into ParsedMessages.
type Normalizer struct {
	Prices       *PriceTable
	DefaultModel string
	// NewID generates ids for records that carry none.
	NewID func() string
}

// NewNormalizer returns a Normalizer using prices, or the built-in table
// when prices is nil.
func NewNormalizer(prices *PriceTable, defaultModel string) *Normalizer {
	if prices == nil {
		prices = NewPriceTable(nil)
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Normalizer{
		Prices:       prices,
		DefaultModel: defaultModel,
		NewID:        uuid.NewString,
	}
}

// Normalize converts one record. ok is false when the record had to be
// dropped; warnings lists what was recovered from either way.
func (n *Normalizer) Normalize(rec RawRecord, meta *ConversationMetadata) (msg ParsedMessage, warnings []error, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			warnings = append(warnings, &RecordError{Line: rec.Line, Err: fmt.Errorf("panic: %v", r)})
			msg, ok = ParsedMessage{}, false
		}
	}()

	typ := rec.String("type")
	if typ == "" {
		typ = "unknown"
	}

	msg.Line = rec.Line
	if typ == "summary" {
		msg.UUID = rec.String("leafUuid")
	} else {
		msg.UUID = rec.String("uuid")
	}
	if msg.UUID == "" && n.NewID != nil {
		msg.UUID = n.NewID()
	}

	msg.Timestamp = parseTimestamp(rec.String("timestamp"))
	if !msg.HasTimestamp() && typ == "summary" && meta != nil {
		msg.Timestamp = meta.StartedAt
	}

	var body map[string]json.RawMessage
	var contentRaw json.RawMessage
	if typ == "summary" {
		msg.Role = RoleSummary
		contentRaw = rec.Raw("summary")
	} else {
		obj, shaped := rec.Object("message")
		if !shaped {
			warnings = append(warnings, &SchemaDeviationError{Line: rec.Line, Field: "message", Reason: "not an object"})
		}
		body = obj
		contentRaw = body["content"]
		rawRole := rawString(body["role"])
		if rawRole == "" {
			rawRole = typ
		}
		msg.Role = canonicalRole(rawRole)
	}

	blocks := scanBlocks(contentRaw)
	if msg.Role == RoleUser && (blocks.hasToolResult || rec.Has("toolUseResult")) {
		msg.Role = RoleTool
	}

	msg.Content, msg.Kinds = flattenContent(contentRaw)

	switch {
	case rec.Has("toolUseResult"):
		msg.ToolUses = resultFromPayload(rec.Raw("toolUseResult"), blocks.toolResultID)
	case len(blocks.calls) > 0:
		msg.ToolUses = &ToolCalls{Calls: blocks.calls}
		if strings.TrimSpace(msg.Content) == "" {
			msg.Content = callPlaceholder(blocks.calls)
		}
	case blocks.hasToolResult:
		msg.ToolUses = &ToolResult{ToolUseID: blocks.toolResultID}
	}

	model := rawString(body["model"])
	if model == "" {
		model = n.DefaultModel
	}
	msg.Meta = MessageMeta{
		OriginalType: typ,
		Cwd:          rec.String("cwd"),
		GitBranch:    rec.String("gitBranch"),
		IsMeta:       rec.Truthy("isMeta"),
		Model:        model,
	}

	usage, shaped := decodeUsage(body["usage"])
	if !shaped {
		warnings = append(warnings, &SchemaDeviationError{Line: rec.Line, Field: "message.usage", Reason: "not an object"})
	}
	// Only assistant turns carry usage. User and tool input is billed as
	// input_tokens of the next assistant turn.
	if msg.Role == RoleAssistant && (usage.Input > 0 || usage.Output > 0) {
		price, known := n.Prices.Lookup(model)
		if !known {
			warnings = append(warnings, &UnknownModelError{Line: rec.Line, Model: model, Fallback: n.Prices.Fallback()})
		}
		msg.Usage = usage
		msg.TokenCount = usage.Output
		msg.CostUSD = price.Cost(usage)
	}

	return msg, warnings, true
}

func canonicalRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "assistant":
		return RoleAssistant
	case "tool":
		return RoleTool
	case "summary":
		return RoleSummary
	default:
		// user, human, system and record types that are not messages at all
		// (file-history-snapshot, queue-operation, ...). The raw value
		// survives in Meta.OriginalType.
		return RoleUser
	}
}

func callPlaceholder(calls []ToolCall) string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
		if names[i] == "" {
			names[i] = "unknown"
		}
	}
	if len(names) == 1 {
		return fmt.Sprintf("[Calling tool: %s]", names[0])
	}
	return fmt.Sprintf("[Calling %d tools: %s]", len(names), strings.Join(names, ", "))
}

func decodeUsage(raw json.RawMessage) (Usage, bool) {
	if isNull(raw) {
		return Usage{}, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Usage{}, false
	}
	return Usage{
		Input:      rawInt(obj["input_tokens"]),
		Output:     rawInt(obj["output_tokens"]),
		CacheWrite: rawInt(obj["cache_creation_input_tokens"]),
		CacheRead:  rawInt(obj["cache_read_input_tokens"]),
	}, true
}

package parse

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// ExtractMetadata derives session-level facts from the record stream.
// StartedAt, EndedAt and MessageCount are left for the caller to fill.
//
// Project and session identity come from the path: the parent directory
// name and the file stem. Both are opaque.
func ExtractMetadata(path string, records []RawRecord) ConversationMetadata {
	dir := filepath.Dir(path)
	meta := ConversationMetadata{
		ProjectName: filepath.Base(dir),
		ProjectPath: dir,
		SessionID:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FilePath:    path,
	}

	agentTypeDone := false
	for _, rec := range records {
		if meta.GitBranch == "" {
			meta.GitBranch = rec.String("gitBranch")
		}
		if meta.WorkingDirectory == "" {
			meta.WorkingDirectory = rec.String("cwd")
		}

		if !meta.IsSubagent && rec.Truthy("isSidechain") {
			if agentID := rec.String("agentId"); agentID != "" {
				meta.IsSubagent = true
				meta.AgentID = agentID
				// sessionId of a sidechain record names the parent session
				meta.ParentSessionID = rec.String("sessionId")
			}
		}

		if !agentTypeDone {
			if text, ok := firstAssistantText(rec); ok {
				meta.AgentType = inferAgentType(text)
				agentTypeDone = true
			}
		}

		if meta.GitBranch != "" && meta.WorkingDirectory != "" && meta.IsSubagent && agentTypeDone {
			break
		}
	}

	if !meta.IsSubagent {
		meta.AgentType = ""
	}
	return meta
}

// firstAssistantText returns the first text block of an assistant record.
func firstAssistantText(rec RawRecord) (string, bool) {
	body, ok := rec.Object("message")
	if !ok || body == nil || rawString(body["role"]) != "assistant" {
		return "", false
	}
	var blocks []map[string]json.RawMessage
	if err := json.Unmarshal(body["content"], &blocks); err != nil {
		return "", false
	}
	for _, b := range blocks {
		if rawString(b["type"]) == "text" {
			return rawString(b["text"]), true
		}
	}
	return "", false
}

// inferAgentType guesses the subagent type from keywords. Best effort;
// "" means unknown.
func inferAgentType(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "explore"), strings.Contains(lower, "exploration"):
		return "Explore"
	case strings.Contains(lower, "plan"):
		return "Plan"
	case strings.Contains(lower, "claude code"), strings.Contains(lower, "documentation"):
		return "claude-code-guide"
	}
	return ""
}

package render

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/cc-session-search/internal/aggregate"
	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/index"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
)

// ANSI styles per category
const (
	colorReset    = "\033[0m"
	colorUser     = "\033[1;34m"
	colorAssist   = "\033[1;32m"
	colorThink    = "\033[2;35m"
	colorTool     = "\033[33m"
	colorMCP      = "\033[35m"
	colorSkill    = "\033[95m"
	colorSubagent = "\033[36m"
	colorMeta     = "\033[2;35m"
	colorDim      = "\033[2m"
	colorHit      = "\033[43m"
	colorBoldRed  = "\033[1;31m"
)

type Options struct {
	// HitIdx is the message index to center on, -1 for none.
	HitIdx  int
	Context int    // messages before/after hit to show, < 0 for all
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	// Group restricts output to one filter group. Nil shows every message
	// except file history snapshots.
	Group *classify.Group
	// Color enables ANSI escapes.
	Color bool
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	var filtered []string
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t != "" && !fts5Operators[t] {
			filtered = append(filtered, t)
		}
	}
	for _, term := range filtered {
		n := utf8.RuneCountInString(term)
		i := 0
		for i < len(text) {
			start, end := indexFold(text[i:], term, n)
			if start < 0 {
				break
			}
			start, end = i+start, i+end
			replacement := colorBoldRed + text[start:end] + colorReset
			text = text[:start] + replacement + text[end:]
			i = start + len(replacement)
		}
	}
	return text
}

// indexFold finds the first window of n runes in s that equals term under
// case folding. Offsets are byte offsets into s on rune boundaries.
func indexFold(s, term string, n int) (start, end int) {
	for start = 0; start < len(s); {
		end = start
		for k := 0; k < n && end < len(s); k++ {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		if utf8.RuneCountInString(s[start:end]) < n {
			break
		}
		if strings.EqualFold(s[start:end], term) {
			return start, end
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		start += size
	}
	return -1, -1
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

func categoryColor(c classify.Category) string {
	switch {
	case c == classify.User:
		return colorUser
	case c == classify.AssistantText:
		return colorAssist
	case c == classify.AssistantThinking:
		return colorThink
	case c == classify.Meta:
		return colorMeta
	case classify.GroupMCP.Contains(c):
		return colorMCP
	case classify.GroupSkills.Contains(c):
		return colorSkill
	case classify.GroupSubagents.Contains(c):
		return colorSubagent
	case c.IsTool():
		return colorTool
	}
	return colorDim
}

// Header describes the session being rendered.
type Header struct {
	SessionID string
	Project   string
	Cwd       string
	Started   time.Time
	Ended     time.Time
	Subagents int
}

func (h Header) String() string {
	s := fmt.Sprintf("--- %s [%s]", h.SessionID, h.Project)
	if h.Cwd != "" {
		s += " " + h.Cwd
	}
	if !h.Started.IsZero() {
		s += " (" + aggregate.Duration(h.Started, h.Ended) + ")"
	}
	if h.Subagents > 0 {
		s += fmt.Sprintf(" +%d subagents", h.Subagents)
	}
	return s + " ---"
}

// RenderSession renders a parsed session. It returns the content and the
// 0-based line of the hit message header, -1 if no hit is shown.
func RenderSession(s *parse.Session, opts Options) (string, int) {
	h := Header{
		SessionID: s.Meta.SessionID,
		Project:   s.Meta.ProjectName,
		Cwd:       s.Meta.WorkingDirectory,
		Started:   s.Meta.StartedAt,
		Ended:     s.Meta.EndedAt,
	}
	return renderMessages(h, s.Messages, classify.All(s.Messages), opts)
}

// RenderConversation renders an indexed session.
func RenderConversation(db *index.DB, sessionID string, opts Options) (string, int, error) {
	session, err := db.GetSession(sessionID)
	if err != nil {
		return "", -1, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return "", -1, fmt.Errorf("session not found: %s", sessionID)
	}

	rows, err := db.GetMessages(sessionID)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}
	if len(rows) == 0 {
		return "(empty session)", -1, nil
	}

	subs, err := db.Subagents(sessionID)
	if err != nil {
		return "", -1, fmt.Errorf("get subagents: %w", err)
	}

	msgs, cats := FromRows(rows)
	h := Header{
		SessionID: session.SessionID,
		Project:   session.Project,
		Cwd:       session.Cwd,
		Started:   parseTime(session.StartedAt),
		Ended:     parseTime(session.EndedAt),
		Subagents: len(subs),
	}
	content, hitLine := renderMessages(h, msgs, cats, opts)
	return content, hitLine, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// FromRows rebuilds messages from index rows, enough for correlation and
// display. The stored categories are returned alongside.
func FromRows(rows []index.MessageRow) ([]parse.ParsedMessage, []classify.Category) {
	msgs := make([]parse.ParsedMessage, len(rows))
	cats := make([]classify.Category, len(rows))
	for i, r := range rows {
		m := parse.ParsedMessage{
			UUID:       r.UUID,
			Role:       parse.Role(r.Role),
			Content:    r.Text,
			Timestamp:  parseTime(r.Ts),
			TokenCount: r.Tokens,
			CostUSD:    r.Cost,
			Line:       r.LineNumber,
			Meta:       parse.MessageMeta{Model: r.Model},
		}
		switch {
		case r.CallIDs != "":
			var calls []parse.ToolCall
			for _, id := range strings.Split(r.CallIDs, ",") {
				calls = append(calls, parse.ToolCall{ID: id})
			}
			m.ToolUses = &parse.ToolCalls{Calls: calls}
		case r.ResultID != "":
			m.ToolUses = &parse.ToolResult{ToolUseID: r.ResultID}
		}
		msgs[i] = m
		cats[i] = classify.Category(r.Category)
	}
	return msgs, cats
}

func visible(c classify.Category, g *classify.Group) bool {
	if c == classify.FileHistorySnapshot {
		return false
	}
	return g == nil || g.Contains(c)
}

// links describes where the calls of msg were answered, or which call msg
// answers. Indices refer to the full session.
func links(msg parse.ParsedMessage, corr classify.Correlation) string {
	var parts []string
	for _, c := range msg.Calls() {
		if r, ok := corr.ResultFor(c.ID); ok {
			parts = append(parts, fmt.Sprintf("result #%d", r))
		}
	}
	if id := msg.ResultID(); id != "" {
		if c, ok := corr.CallFor(id); ok {
			parts = append(parts, fmt.Sprintf("call #%d", c))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func renderMessages(h Header, msgs []parse.ParsedMessage, cats []classify.Category, opts Options) (string, int) {
	corr := classify.Correlate(msgs)

	// filter over the full slice, keeping original indices
	var shown []int
	hitPos := -1
	for i := range msgs {
		if !visible(cats[i], opts.Group) {
			continue
		}
		if i == opts.HitIdx {
			hitPos = len(shown)
		}
		shown = append(shown, i)
	}

	before, after := 0, 0
	if hitPos >= 0 && opts.Context >= 0 {
		from := max(hitPos-opts.Context, 0)
		to := min(hitPos+opts.Context+1, len(shown))
		before, after = from, len(shown)-to
		shown = shown[from:to]
		hitPos -= from
	}

	paint := func(color, s string) string {
		if !opts.Color {
			return s
		}
		return color + s + colorReset
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	separator := paint(colorDim, strings.Repeat("-", 50))

	// helper to track line count; wraps long lines if Width is set
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(paint(colorDim, h.String()))
	if len(shown) == 0 {
		writeLine(paint(colorDim, "(no messages)"))
		return b.String(), -1
	}
	if before > 0 {
		writeLine(paint(colorDim, fmt.Sprintf("... (%d messages before) ...", before)))
	}

	for pos, i := range shown {
		m, cat := msgs[i], cats[i]
		isHit := pos == hitPos

		if pos > 0 {
			writeLine(separator)
		}
		if isHit {
			hitLine = lineCount
		}

		ts := ""
		if m.HasTimestamp() {
			ts = m.Timestamp.UTC().Format(time.RFC3339)
		}
		label := fmt.Sprintf("#%d %s", i, strings.ToUpper(cat.Label()))
		info := strings.TrimSpace(ts + links(m, corr))
		if isHit {
			writeLine(paint(colorHit, fmt.Sprintf(">> %s > %s <<", label, info)))
		} else {
			writeLine(paint(categoryColor(cat), label+" >") + " " + paint(colorDim, info))
		}

		text := m.Content
		if cat == classify.AssistantThinking {
			text = paint(colorDim, text)
		}
		if opts.Color {
			text = highlightKeywords(text, opts.Query)
		}
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("") // blank line after message
	}

	if after > 0 {
		writeLine(paint(colorDim, fmt.Sprintf("... (%d messages after) ...", after)))
	}

	return b.String(), hitLine
}

package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/cc-session-search/internal/index"
)

type Result struct {
	SessionID string
	// MsgIdx is the position of the matching message, -1 for listings.
	MsgIdx    int
	UpdatedAt string
	Project   string
	Kind      string
	Cwd       string
	Summary   string
	Snippet   string
	Role      string
	Category  string
	Tokens    int64
	Cost      float64
	Rank      float64
}

type Options struct {
	Query      string
	Project    string   // "" = all
	Role       string   // "" = all, "user", "assistant", "tool", "summary"
	Categories []string // empty = all
	Since      string   // "" = no filter, e.g. "2024-01-01"
	// Subagents includes subagent sessions; root sessions only otherwise.
	Subagents bool
	Limit     int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 || len(lower) != len(text) {
		// no match, or case folding moved byte offsets: return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	// Fetch more results before dedup so we still have enough after
	origLimit := opts.Limit
	opts.Limit = origLimit * 3

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}

	// Deduplicate: keep only the best-ranked result per session
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.SessionID] {
			continue
		}
		seen[r.SessionID] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters builds the WHERE conditions shared by every query. m is the
// messages alias, "" when messages are not joined.
func filters(opts Options, m string) ([]string, []any) {
	var conditions []string
	var args []any

	if !opts.Subagents {
		conditions = append(conditions, "s.kind = 'root'")
	}
	if opts.Project != "" {
		conditions = append(conditions, "s.project = ?")
		args = append(args, opts.Project)
	}
	if opts.Since != "" {
		conditions = append(conditions, "s.ended_at >= ?")
		args = append(args, opts.Since)
	}
	if m == "" {
		return conditions, args
	}

	if opts.Role != "" {
		conditions = append(conditions, m+".role = ?")
		args = append(args, opts.Role)
	}
	if len(opts.Categories) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(opts.Categories)), ",")
		conditions = append(conditions, m+".category IN ("+marks+")")
		for _, c := range opts.Categories {
			args = append(args, c)
		}
	}
	return conditions, args
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts, "m")
	conditions = append([]string{"messages_fts MATCH ?"}, conditions...)
	args = append([]any{opts.Query}, args...)

	query := fmt.Sprintf(`
		SELECT
			m.session_id,
			m.msg_idx,
			s.ended_at,
			s.project,
			s.kind,
			s.cwd,
			s.summary,
			snippet(messages_fts, 0, '>>>','<<<', '...', 40) as snip,
			m.role,
			m.category,
			s.tokens,
			s.cost,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN sessions s ON m.session_id = s.session_id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions, args := filters(opts, "m")
	// LIKE match for CJK substring search
	conditions = append([]string{"m.text LIKE ?"}, conditions...)
	args = append([]any{"%" + opts.Query + "%"}, args...)

	query := fmt.Sprintf(`
		SELECT
			m.session_id,
			m.msg_idx,
			s.ended_at,
			s.project,
			s.kind,
			s.cwd,
			s.summary,
			m.text,
			m.role,
			m.category,
			s.tokens,
			s.cost
		FROM messages m
		JOIN sessions s ON m.session_id = s.session_id
		WHERE %s
		ORDER BY s.ended_at DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.SessionID, &r.MsgIdx, &r.UpdatedAt,
			&r.Project, &r.Kind, &r.Cwd, &r.Summary,
			&fullText, &r.Role, &r.Category,
			&r.Tokens, &r.Cost,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.SessionID, &r.MsgIdx, &r.UpdatedAt,
			&r.Project, &r.Kind, &r.Cwd, &r.Summary,
			&r.Snippet, &r.Role, &r.Category,
			&r.Tokens, &r.Cost, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListAll lists sessions, most recently active first. Query, Role and
// Categories are ignored.
func ListAll(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 500
	}
	conditions, args := filters(opts, "")
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT session_id, ended_at, project, kind, cwd, summary, tokens, cost
		FROM sessions s
		%s
		ORDER BY ended_at DESC, session_id
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		r := Result{MsgIdx: -1}
		if err := rows.Scan(&r.SessionID, &r.UpdatedAt, &r.Project, &r.Kind, &r.Cwd, &r.Summary, &r.Tokens, &r.Cost); err != nil {
			return nil, err
		}
		r.Snippet = r.Summary
		results = append(results, r)
	}
	return results, rows.Err()
}

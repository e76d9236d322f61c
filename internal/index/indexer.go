package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Zuo-Peng/cc-session-search/internal/batch"
	"github.com/Zuo-Peng/cc-session-search/internal/classify"
	"github.com/Zuo-Peng/cc-session-search/internal/parse"
	"github.com/Zuo-Peng/cc-session-search/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// Indexer keeps the database in sync with a projects root.
type Indexer struct {
	DB      *DB
	Parser  batch.FileParser
	Workers int
}

// IndexAll scans root, re-parses files whose mtime or size changed and
// prunes sessions whose files are gone. Per-file failures are counted and
// logged; only scan and prune failures are returned.
func (ix *Indexer) IndexAll(ctx context.Context, root string) (Stats, error) {
	var stats Stats

	files, err := scan.Scan(root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenIDs := make(map[string]struct{}, len(files))
	byPath := make(map[string]scan.FileInfo, len(files))
	var stale []string
	for _, fi := range files {
		id := scan.SessionID(fi.Path)
		seenIDs[id] = struct{}{}

		needs, err := needsUpdate(ix.DB, id, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			log.Printf("WARN: lookup %s: %v", fi.Path, err)
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}
		byPath[fi.Path] = fi
		stale = append(stale, fi.Path)
	}

	rep := batch.ParseAll(ctx, stale, ix.Workers, ix.Parser)
	for _, res := range rep.Results {
		var empty *parse.EmptyFileError
		if errors.As(res.Err, &empty) {
			// a truncated file must not keep the rows of its old content
			if err := ix.DB.DeleteSession(scan.SessionID(res.Path)); err != nil {
				stats.Errors++
				log.Printf("WARN: drop %s: %v", res.Path, err)
				continue
			}
			stats.Skipped++
			continue
		}
		if res.Err != nil {
			stats.Errors++
			log.Printf("WARN: parse %s: %v", res.Path, res.Err)
			continue
		}
		if err := indexSession(ix.DB, res.Session, byPath[res.Path]); err != nil {
			stats.Errors++
			log.Printf("WARN: index %s: %v", res.Path, err)
			continue
		}
		stats.Updated++
	}

	if err := ctx.Err(); err != nil {
		// an interrupted run saw only part of the tree; pruning would be wrong
		return stats, err
	}

	pruned, err := pruneSessions(ix.DB, seenIDs)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// IndexFile re-indexes one session file unconditionally. An empty file
// drops the session and returns the *parse.EmptyFileError.
func (ix *Indexer) IndexFile(fi scan.FileInfo) error {
	s, err := ix.Parser.ParseFile(fi.Path)
	var empty *parse.EmptyFileError
	if errors.As(err, &empty) {
		if derr := ix.DB.DeleteSession(scan.SessionID(fi.Path)); derr != nil {
			return fmt.Errorf("drop %s: %w", fi.Path, derr)
		}
		return err
	}
	if err != nil {
		return err
	}
	return indexSession(ix.DB, s, fi)
}

func needsUpdate(db *DB, sessionID string, mtime, size int64) (bool, error) {
	info, err := db.GetSessionInfo(sessionID)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new session
	}
	return info.Mtime != mtime || info.Size != size, nil
}

const summaryRunes = 200

// sessionSummary is the text of the summary record, else the first genuine
// user prompt.
func sessionSummary(msgs []parse.ParsedMessage, cats []classify.Category) string {
	if m, ok := lo.Find(msgs, func(m parse.ParsedMessage) bool { return m.Role == parse.RoleSummary }); ok {
		return truncate(m.Content, summaryRunes)
	}
	for i, m := range msgs {
		if cats[i] == classify.User && strings.TrimSpace(m.Content) != "" {
			return truncate(m.Content, summaryRunes)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func indexSession(db *DB, s *parse.Session, fi scan.FileInfo) error {
	cats := classify.All(s.Messages)

	kind := string(scan.KindRoot)
	if s.Meta.IsSubagent || fi.Kind == scan.KindSubagent {
		kind = string(scan.KindSubagent)
	}
	project := fi.Project
	if project == "" {
		project = s.Meta.ProjectName
	}
	mtime, size := fi.Mtime, fi.Size
	if fi.Path == "" {
		mtime, size = s.ModTime.Unix(), s.Size
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// delete old data first
	if err := deleteSessionTx(tx, s.Meta.SessionID); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO sessions (session_id, project, file_path, kind, parent_session_id, agent_id, agent_type,
			git_branch, cwd, started_at, ended_at, message_count, tokens, cost, summary, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Meta.SessionID,
		project,
		s.Meta.FilePath,
		kind,
		s.Meta.ParentSessionID,
		s.Meta.AgentID,
		s.Meta.AgentType,
		s.Meta.GitBranch,
		s.Meta.WorkingDirectory,
		formatTime(s.Meta.StartedAt),
		formatTime(s.Meta.EndedAt),
		s.Meta.MessageCount,
		s.Tokens(),
		s.Cost(),
		sessionSummary(s.Messages, cats),
		mtime,
		size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (session_id, msg_idx, uuid, ts, role, category, text, model, tokens, cost, call_ids, result_id, line_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range s.Messages {
		callIDs := lo.FilterMap(m.Calls(), func(c parse.ToolCall, _ int) (string, bool) { return c.ID, c.ID != "" })
		_, err := stmt.Exec(
			s.Meta.SessionID,
			i,
			m.UUID,
			formatTime(m.Timestamp),
			string(m.Role),
			string(cats[i]),
			m.Content,
			m.Meta.Model,
			m.TokenCount,
			m.CostUSD,
			strings.Join(callIDs, ","),
			m.ResultID(),
			m.Line,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneSessions(db *DB, seenIDs map[string]struct{}) (int, error) {
	allIDs, err := db.AllSessionIDs()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, id := range lo.Keys(allIDs) {
		if _, ok := seenIDs[id]; ok {
			continue
		}
		if err := db.DeleteSession(id); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

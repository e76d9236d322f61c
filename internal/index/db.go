package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;

CREATE TABLE IF NOT EXISTS sessions (
    session_id        TEXT PRIMARY KEY,
    project           TEXT NOT NULL DEFAULT '',
    file_path         TEXT NOT NULL,
    kind              TEXT NOT NULL DEFAULT 'root',
    parent_session_id TEXT NOT NULL DEFAULT '',
    agent_id          TEXT NOT NULL DEFAULT '',
    agent_type        TEXT NOT NULL DEFAULT '',
    git_branch        TEXT NOT NULL DEFAULT '',
    cwd               TEXT NOT NULL DEFAULT '',
    started_at        TEXT NOT NULL DEFAULT '',
    ended_at          TEXT NOT NULL DEFAULT '',
    message_count     INTEGER NOT NULL DEFAULT 0,
    tokens            INTEGER NOT NULL DEFAULT 0,
    cost              REAL NOT NULL DEFAULT 0,
    summary           TEXT NOT NULL DEFAULT '',
    mtime             INTEGER NOT NULL DEFAULT 0,
    size              INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS sessions_parent ON sessions(parent_session_id);

CREATE TABLE IF NOT EXISTS messages (
    session_id  TEXT NOT NULL,
    msg_idx     INTEGER NOT NULL,
    uuid        TEXT NOT NULL DEFAULT '',
    ts          TEXT NOT NULL DEFAULT '',
    role        TEXT NOT NULL,
    category    TEXT NOT NULL,
    text        TEXT NOT NULL,
    model       TEXT NOT NULL DEFAULT '',
    tokens      INTEGER NOT NULL DEFAULT 0,
    cost        REAL NOT NULL DEFAULT 0,
    call_ids    TEXT NOT NULL DEFAULT '',
    result_id   TEXT NOT NULL DEFAULT '',
    line_number INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (session_id, msg_idx)
);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    text,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, text) VALUES('delete', old.rowid, old.text);
    INSERT INTO messages_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever parsing or classification
// changes, to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if ver == schemaVersion {
		return nil
	}
	// force re-index by resetting all session mtime/size to 0
	if _, err := d.db.Exec("UPDATE sessions SET mtime = 0, size = 0"); err != nil {
		return err
	}
	_, err = d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type SessionInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetSessionInfo(sessionID string) (*SessionInfo, error) {
	var info SessionInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM sessions WHERE session_id = ?",
		sessionID,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllSessionIDs() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT session_id FROM sessions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

func (d *DB) DeleteSession(sessionID string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteSessionTx(tx, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteSessionTx(tx *sql.Tx, sessionID string) error {
	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", sessionID); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM sessions WHERE session_id = ?", sessionID)
	return err
}

func (d *DB) SessionCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type SessionRow struct {
	SessionID       string
	Project         string
	FilePath        string
	Kind            string
	ParentSessionID string
	AgentID         string
	AgentType       string
	GitBranch       string
	Cwd             string
	StartedAt       string
	EndedAt         string
	MessageCount    int
	Tokens          int64
	Cost            float64
	Summary         string
}

const sessionColumns = `session_id, project, file_path, kind, parent_session_id, agent_id, agent_type,
	git_branch, cwd, started_at, ended_at, message_count, tokens, cost, summary`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (SessionRow, error) {
	var s SessionRow
	err := r.Scan(&s.SessionID, &s.Project, &s.FilePath, &s.Kind, &s.ParentSessionID, &s.AgentID, &s.AgentType,
		&s.GitBranch, &s.Cwd, &s.StartedAt, &s.EndedAt, &s.MessageCount, &s.Tokens, &s.Cost, &s.Summary)
	return s, err
}

func (d *DB) GetSession(sessionID string) (*SessionRow, error) {
	s, err := scanSession(d.db.QueryRow("SELECT "+sessionColumns+" FROM sessions WHERE session_id = ?", sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (d *DB) querySessions(query string, args ...any) ([]SessionRow, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Subagents returns the subagent sessions of parentID, oldest first.
func (d *DB) Subagents(parentID string) ([]SessionRow, error) {
	return d.querySessions(
		"SELECT "+sessionColumns+" FROM sessions WHERE kind = 'subagent' AND parent_session_id = ? ORDER BY started_at",
		parentID,
	)
}

type MessageRow struct {
	SessionID  string
	Index      int
	UUID       string
	Ts         string
	Role       string
	Category   string
	Text       string
	Model      string
	Tokens     int64
	Cost       float64
	CallIDs    string
	ResultID   string
	LineNumber int
}

const messageColumns = "session_id, msg_idx, uuid, ts, role, category, text, model, tokens, cost, call_ids, result_id, line_number"

func scanMessage(r rowScanner) (MessageRow, error) {
	var m MessageRow
	err := r.Scan(&m.SessionID, &m.Index, &m.UUID, &m.Ts, &m.Role, &m.Category, &m.Text, &m.Model,
		&m.Tokens, &m.Cost, &m.CallIDs, &m.ResultID, &m.LineNumber)
	return m, err
}

func (d *DB) queryMessages(query string, args ...any) ([]MessageRow, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MessageRow
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) GetMessages(sessionID string) ([]MessageRow, error) {
	return d.queryMessages(
		"SELECT "+messageColumns+" FROM messages WHERE session_id = ? ORDER BY msg_idx",
		sessionID,
	)
}

// CategoryCounts counts indexed messages per category.
func (d *DB) CategoryCounts() (map[string]int, error) {
	rows, err := d.db.Query("SELECT category, COUNT(*) FROM messages GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		counts[c] = n
	}
	return counts, rows.Err()
}

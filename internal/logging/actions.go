package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"storyworld/internal/game/world"
)

// ActionRecord is one processed action as stored in the log.
type ActionRecord struct {
	ID        int       `json:"id"`
	SessionID string    `json:"session_id"`
	ActionID  int       `json:"action_id"`
	Verb      string    `json:"verb"`
	Agent     string    `json:"agent"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason"`
	Cause     string    `json:"cause"`
	Tick      int       `json:"tick"`
	Signature string    `json:"signature"`
	Payload   string    `json:"payload"`
	Undone    bool      `json:"undone"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSummary describes one play session.
type SessionSummary struct {
	ID      string    `json:"id"`
	Fiction string    `json:"fiction"`
	Started time.Time `json:"started"`
	Actions int       `json:"actions"`
}

// ActionLogger stores every processed action in SQLite so sessions can be
// reviewed later.
type ActionLogger struct {
	db *sql.DB
}

func NewActionLogger(path string) (*ActionLogger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := &ActionLogger{db: db}
	if err := logger.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return logger, nil
}

func (l *ActionLogger) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		fiction TEXT NOT NULL,
		started DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		action_id INTEGER NOT NULL,
		verb TEXT NOT NULL,
		agent TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL,
		reason TEXT NOT NULL,
		cause TEXT NOT NULL,
		tick INTEGER NOT NULL,
		signature TEXT NOT NULL,
		payload TEXT NOT NULL,
		undone INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_session ON actions(session_id, action_id);
	`

	_, err := l.db.Exec(schema)
	return err
}

// StartSession records a new play session of the named fiction.
func (l *ActionLogger) StartSession(sessionID, fiction string, started time.Time) error {
	_, err := l.db.Exec(`INSERT INTO sessions (id, fiction, started) VALUES (?, ?, ?)`,
		sessionID, fiction, started.UTC())
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

// LogAction stores a processed action.
func (l *ActionLogger) LogAction(sessionID string, a *world.Action, ts time.Time) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	reason := a.Refusal
	if f, failed := a.FirstFailure(); failed && reason == "" {
		reason = f.Reason
	}

	_, err = l.db.Exec(`
		INSERT INTO actions (session_id, action_id, verb, agent, category, status, reason, cause, tick, signature, payload, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, a.ID, a.Verb, a.Agent, string(a.Category()), a.Status().String(), reason,
		a.Cause, a.Start, a.String(), string(payload), ts.UTC())
	if err != nil {
		return fmt.Errorf("failed to log action %d: %w", a.ID, err)
	}
	return nil
}

// MarkUndone flags every action of the session with an id at or above
// fromID as undone.
func (l *ActionLogger) MarkUndone(sessionID string, fromID int) error {
	_, err := l.db.Exec(`UPDATE actions SET undone = 1 WHERE session_id = ? AND action_id >= ?`, sessionID, fromID)
	return err
}

// Sessions lists sessions, newest first.
func (l *ActionLogger) Sessions() ([]SessionSummary, error) {
	rows, err := l.db.Query(`
		SELECT s.id, s.fiction, s.started, COUNT(a.id)
		FROM sessions s LEFT JOIN actions a ON a.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.ID, &s.Fiction, &s.Started, &s.Actions); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Actions returns a session's actions in the order they were processed.
func (l *ActionLogger) Actions(sessionID string) ([]ActionRecord, error) {
	rows, err := l.db.Query(`
		SELECT id, session_id, action_id, verb, agent, category, status, reason, cause, tick, signature, payload, undone, timestamp
		FROM actions WHERE session_id = ? ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionRecord
	for rows.Next() {
		var r ActionRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ActionID, &r.Verb, &r.Agent, &r.Category, &r.Status,
			&r.Reason, &r.Cause, &r.Tick, &r.Signature, &r.Payload, &r.Undone, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Action decodes a stored payload back into an action.
func (r ActionRecord) Action() (*world.Action, error) {
	var a world.Action
	if err := json.Unmarshal([]byte(r.Payload), &a); err != nil {
		return nil, fmt.Errorf("failed to decode action %d: %w", r.ActionID, err)
	}
	return &a, nil
}

func (l *ActionLogger) Close() error {
	return l.db.Close()
}

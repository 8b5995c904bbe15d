// Package session persists the small state slice that must survive a
// client restart: which project and run the user was in the middle of.
// Artifact collections are deliberately excluded; they are re-fetched
// from the backend as ground truth.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// State is the allow-listed resume record. A single active record is
// assumed, matching single-tab usage.
type State struct {
	ProjectID       int64
	Stage           string
	RunID           int64
	Generating      bool
	AwaitingConfirm bool
	ConfirmAgent    string
	SavedAt         time.Time
}

// Store keeps the resume record in a local sqlite file.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS session_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    project_id INTEGER NOT NULL,
    stage TEXT NOT NULL,
    run_id INTEGER NOT NULL,
    generating INTEGER NOT NULL,
    awaiting_confirm INTEGER NOT NULL,
    confirm_agent TEXT NOT NULL,
    saved_at TEXT NOT NULL
);`

// Open creates or opens the session database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the single resume record.
func (s *Store) Save(st State) error {
	_, err := s.db.Exec(`
INSERT INTO session_state (id, project_id, stage, run_id, generating, awaiting_confirm, confirm_agent, saved_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    project_id = excluded.project_id,
    stage = excluded.stage,
    run_id = excluded.run_id,
    generating = excluded.generating,
    awaiting_confirm = excluded.awaiting_confirm,
    confirm_agent = excluded.confirm_agent,
    saved_at = excluded.saved_at`,
		st.ProjectID, st.Stage, st.RunID,
		boolInt(st.Generating), boolInt(st.AwaitingConfirm), st.ConfirmAgent,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the resume record, or nil if none has been saved.
func (s *Store) Load() (*State, error) {
	row := s.db.QueryRow(`
SELECT project_id, stage, run_id, generating, awaiting_confirm, confirm_agent, saved_at
FROM session_state WHERE id = 1`)

	var st State
	var generating, awaiting int
	var savedAt string
	err := row.Scan(&st.ProjectID, &st.Stage, &st.RunID, &generating, &awaiting, &st.ConfirmAgent, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	st.Generating = generating != 0
	st.AwaitingConfirm = awaiting != 0
	if ts, perr := time.Parse(time.RFC3339Nano, savedAt); perr == nil {
		st.SavedAt = ts
	}
	return &st, nil
}

// Clear removes the resume record.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session_state WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

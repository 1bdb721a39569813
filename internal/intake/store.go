// Package intake implements the persistent input-staging store.
//
// A refinement request starts as a pile of heterogeneous raw inputs: text
// snippets, image references, document references. Intake stages them per
// session so the extraction collaborator can read everything back, perform
// extraction, and submit one Structured Record for validation.
//
// Intake stores raw inputs only. Structured Records and Validation Reports
// are never persisted — scoring history is explicitly out of scope.
//
// Backed by SQLite with FTS5 search over staged text content.
package intake

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// --- Modality enum ---

// Modality classifies a staged input by its source medium.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityImage    Modality = "image"
	ModalityDocument Modality = "document"
)

// validModalities is the set of allowed input modalities.
var validModalities = map[Modality]bool{
	ModalityText:     true,
	ModalityImage:    true,
	ModalityDocument: true,
}

// ValidateModality returns an error if the modality is not recognized.
func ValidateModality(m Modality) error {
	if !validModalities[m] {
		return fmt.Errorf("invalid modality %q: must be one of: text, image, document", m)
	}
	return nil
}

// --- Types ---

// Session is one refinement request's staging area.
type Session struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
}

// Input is one staged raw input. Text inputs carry Content; image and
// document inputs carry a Ref (path or URL) — intake never decodes media.
type Input struct {
	ID        int64    `json:"id"`
	SessionID string   `json:"session_id"`
	Modality  Modality `json:"modality"`
	Source    string   `json:"source"`
	Content   string   `json:"content,omitempty"`
	Ref       string   `json:"ref,omitempty"`
	Note      string   `json:"note,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// AddInputParams holds the input for staging one raw input.
type AddInputParams struct {
	SessionID string   `json:"session_id"`
	Modality  Modality `json:"modality"`
	Source    string   `json:"source,omitempty"`
	Content   string   `json:"content,omitempty"`
	Ref       string   `json:"ref,omitempty"`
	Note      string   `json:"note,omitempty"`
}

// SearchResult is an Input with its FTS5 rank.
type SearchResult struct {
	Input
	Rank float64 `json:"rank"`
}

// --- Config ---

// Config holds intake store configuration.
type Config struct {
	DataDir          string
	MaxInputLength   int
	MaxSearchResults int
}

// DefaultConfig returns the default intake configuration. The data
// directory can be overridden with REFINERY_DATA_DIR.
func DefaultConfig() Config {
	dataDir := os.Getenv("REFINERY_DATA_DIR")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".refinery")
	}
	return Config{
		DataDir:          dataDir,
		MaxInputLength:   8000,
		MaxSearchResults: 20,
	}
}

// --- Store ---

// Store is the staging engine backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a Store with the given configuration. It creates the data
// directory if needed, opens SQLite in WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("intake: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "intake.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("intake: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("intake: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("intake: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema. Everything is IF NOT EXISTS so reopening
// an existing database is non-destructive.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			started_at TEXT NOT NULL DEFAULT (datetime('now')),
			ended_at   TEXT
		);

		CREATE TABLE IF NOT EXISTS inputs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			modality   TEXT NOT NULL,
			source     TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL DEFAULT '',
			ref        TEXT NOT NULL DEFAULT '',
			note       TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_inputs_session  ON inputs(session_id);
		CREATE INDEX IF NOT EXISTS idx_inputs_modality ON inputs(modality);
		CREATE INDEX IF NOT EXISTS idx_inputs_created  ON inputs(created_at DESC);

		CREATE VIRTUAL TABLE IF NOT EXISTS inputs_fts USING fts5(
			content,
			source,
			note,
			content='inputs',
			content_rowid='id'
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS triggers are created once; CREATE TRIGGER has no IF NOT EXISTS
	// in the SQLite versions we target, so probe sqlite_master first.
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='inputs_fts_insert'",
	).Scan(&name)
	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER inputs_fts_insert AFTER INSERT ON inputs BEGIN
				INSERT INTO inputs_fts(rowid, content, source, note)
				VALUES (new.id, new.content, new.source, new.note);
			END;

			CREATE TRIGGER inputs_fts_delete AFTER DELETE ON inputs BEGIN
				INSERT INTO inputs_fts(inputs_fts, rowid, content, source, note)
				VALUES ('delete', old.id, old.content, old.source, old.note);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return nil
}

// --- Sessions ---

// StartSession creates a new staging session and returns it.
func (s *Store) StartSession(title string) (Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "untitled refinement"
	}

	id := uuid.NewString()
	if _, err := s.db.Exec(
		"INSERT INTO sessions (id, title) VALUES (?, ?)", id, title,
	); err != nil {
		return Session{}, fmt.Errorf("intake: create session: %w", err)
	}
	return s.GetSession(id)
}

// GetSession returns a session by ID.
func (s *Store) GetSession(id string) (Session, error) {
	var sess Session
	err := s.db.QueryRow(
		"SELECT id, title, started_at, ended_at FROM sessions WHERE id = ?", id,
	).Scan(&sess.ID, &sess.Title, &sess.StartedAt, &sess.EndedAt)
	if err == sql.ErrNoRows {
		return Session{}, fmt.Errorf("intake: session %q not found", id)
	}
	if err != nil {
		return Session{}, fmt.Errorf("intake: get session: %w", err)
	}
	return sess, nil
}

// EndSession marks a session as ended. Ending an already-ended session
// is an error so callers notice double-submission bugs. The update is
// conditional on ended_at being unset, so concurrent ends race for a
// single success.
func (s *Store) EndSession(id string) error {
	result, err := s.db.Exec(
		"UPDATE sessions SET ended_at = datetime('now') WHERE id = ? AND ended_at IS NULL", id,
	)
	if err != nil {
		return fmt.Errorf("intake: end session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("intake: end session: %w", err)
	}
	if affected == 0 {
		sess, err := s.GetSession(id)
		if err != nil {
			return err
		}
		return fmt.Errorf("intake: session %q already ended at %s", id, *sess.EndedAt)
	}
	return nil
}

// --- Inputs ---

// AddInput stages one raw input in a session. Text inputs require
// content; image and document inputs require a ref. Content longer than
// MaxInputLength is truncated.
func (s *Store) AddInput(p AddInputParams) (int64, error) {
	if err := ValidateModality(p.Modality); err != nil {
		return 0, fmt.Errorf("intake: %w", err)
	}

	sess, err := s.GetSession(p.SessionID)
	if err != nil {
		return 0, err
	}
	if sess.EndedAt != nil {
		return 0, fmt.Errorf("intake: session %q is ended; start a new session to stage more inputs", p.SessionID)
	}

	switch p.Modality {
	case ModalityText:
		if strings.TrimSpace(p.Content) == "" {
			return 0, fmt.Errorf("intake: text input requires content")
		}
	default:
		if strings.TrimSpace(p.Ref) == "" {
			return 0, fmt.Errorf("intake: %s input requires a ref (file path or URL)", p.Modality)
		}
	}

	source := strings.TrimSpace(p.Source)
	if source == "" {
		source = string(p.Modality)
	}

	content := p.Content
	if s.cfg.MaxInputLength > 0 && len(content) > s.cfg.MaxInputLength {
		// Cut on a rune boundary so truncated content stays valid UTF-8
		// in storage and the FTS index.
		cut := s.cfg.MaxInputLength
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}

	result, err := s.db.Exec(
		"INSERT INTO inputs (session_id, modality, source, content, ref, note) VALUES (?, ?, ?, ?, ?, ?)",
		p.SessionID, string(p.Modality), source, content, p.Ref, p.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("intake: add input: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("intake: add input id: %w", err)
	}
	return id, nil
}

// ListInputs returns a session's staged inputs in staging order.
func (s *Store) ListInputs(sessionID string) ([]Input, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, modality, source, content, ref, note, created_at
		 FROM inputs WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("intake: list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []Input
	for rows.Next() {
		var in Input
		var modality string
		if err := rows.Scan(&in.ID, &in.SessionID, &modality, &in.Source,
			&in.Content, &in.Ref, &in.Note, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("intake: scan input: %w", err)
		}
		in.Modality = Modality(modality)
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

// Modalities returns the distinct modalities staged in a session, in
// first-seen order.
func (s *Store) Modalities(sessionID string) ([]Modality, error) {
	inputs, err := s.ListInputs(sessionID)
	if err != nil {
		return nil, err
	}

	seen := make(map[Modality]bool)
	var modalities []Modality
	for _, in := range inputs {
		if !seen[in.Modality] {
			seen[in.Modality] = true
			modalities = append(modalities, in.Modality)
		}
	}
	return modalities, nil
}

// SearchInputs runs an FTS5 query over staged content, sources, and
// notes across all sessions. An empty or symbols-only query returns no
// results rather than an FTS syntax error.
func (s *Store) SearchInputs(query string, limit int) ([]SearchResult, error) {
	ftsQuery := sanitizeFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 || limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	rows, err := s.db.Query(
		`SELECT i.id, i.session_id, i.modality, i.source, i.content, i.ref, i.note, i.created_at,
		        inputs_fts.rank
		 FROM inputs_fts
		 JOIN inputs i ON i.id = inputs_fts.rowid
		 WHERE inputs_fts MATCH ?
		 ORDER BY inputs_fts.rank
		 LIMIT ?`,
		ftsQuery, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("intake: search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var modality string
		if err := rows.Scan(&r.ID, &r.SessionID, &modality, &r.Source,
			&r.Content, &r.Ref, &r.Note, &r.CreatedAt, &r.Rank); err != nil {
			return nil, fmt.Errorf("intake: scan search result: %w", err)
		}
		r.Modality = Modality(modality)
		results = append(results, r)
	}
	return results, rows.Err()
}

// sanitizeFTSQuery quotes each whitespace-separated term so user input
// can't hit FTS5 query-syntax errors (unbalanced quotes, bare operators).
func sanitizeFTSQuery(query string) string {
	fields := strings.Fields(query)
	var terms []string
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " ")
}

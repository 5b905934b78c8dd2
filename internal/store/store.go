package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is the local SQLite state: the auth token pair and the last-used
// interview options. It stands in for the browser front-end's
// localStorage.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns ~/.config/interviewmon/interviewmon.db, creating
// the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	dir := filepath.Join(home, ".config", "interviewmon")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(dir, "interviewmon.db"), nil
}

// Open opens (and migrates) the store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tokens (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		access TEXT NOT NULL DEFAULT '',
		refresh TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS last_options (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		company TEXT NOT NULL DEFAULT '',
		job_title TEXT NOT NULL DEFAULT '',
		count INTEGER NOT NULL DEFAULT 0,
		difficulty TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Access returns the stored access token, or "".
func (s *Store) Access() string {
	var access string
	err := s.db.QueryRow(`SELECT access FROM tokens WHERE id = 1`).Scan(&access)
	if err != nil {
		return ""
	}
	return access
}

// Refresh returns the stored refresh token, or "".
func (s *Store) Refresh() string {
	var refresh string
	err := s.db.QueryRow(`SELECT refresh FROM tokens WHERE id = 1`).Scan(&refresh)
	if err != nil {
		return ""
	}
	return refresh
}

// Set stores the token pair.
func (s *Store) Set(access, refresh string) error {
	_, err := s.db.Exec(
		`INSERT INTO tokens (id, access, refresh) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET access = excluded.access, refresh = excluded.refresh`,
		access, refresh,
	)
	if err != nil {
		return fmt.Errorf("store tokens: %w", err)
	}
	return nil
}

// Clear removes the token pair.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM tokens WHERE id = 1`); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}

// LastOptions are the previously used interview settings.
type LastOptions struct {
	Company    string
	JobTitle   string
	Count      int
	Difficulty string
}

// SaveLastOptions remembers the settings of the latest interview run.
func (s *Store) SaveLastOptions(o LastOptions) error {
	_, err := s.db.Exec(
		`INSERT INTO last_options (id, company, job_title, count, difficulty) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			company = excluded.company,
			job_title = excluded.job_title,
			count = excluded.count,
			difficulty = excluded.difficulty`,
		o.Company, o.JobTitle, o.Count, o.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("store last options: %w", err)
	}
	return nil
}

// LastOptions returns the remembered settings; ok is false when none were
// saved yet.
func (s *Store) LastOptions() (LastOptions, bool) {
	var o LastOptions
	err := s.db.QueryRow(
		`SELECT company, job_title, count, difficulty FROM last_options WHERE id = 1`,
	).Scan(&o.Company, &o.JobTitle, &o.Count, &o.Difficulty)
	if err != nil {
		return LastOptions{}, false
	}
	return o, true
}

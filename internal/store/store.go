package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/abhisek/learninghub/internal/config"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the database handle and provides access to repositories.
// The client and the local backend open separate files with the same schema.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force
	// and serializes writers.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionRepo returns the persisted-session repository.
func (s *Store) SessionRepo() SessionRepo {
	return &sessionRepo{db: s.db}
}

// SettingsRepo returns the key/value settings repository.
func (s *Store) SettingsRepo() SettingsRepo {
	return &settingsRepo{db: s.db}
}

// ResultRepo returns the assessment result repository.
func (s *Store) ResultRepo() ResultRepo {
	return &resultRepo{db: s.db, seq: s.seq}
}

// ProgressRepo returns class-wide views over the assessment results.
func (s *Store) ProgressRepo() ProgressRepo {
	return &resultRepo{db: s.db, seq: s.seq}
}

// EventRepo returns the LLM request event repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// UserRepo returns the backend user repository.
func (s *Store) UserRepo() UserRepo {
	return &userRepo{db: s.db}
}

// TokenRepo returns the backend access-token repository.
func (s *Store) TokenRepo() TokenRepo {
	return &tokenRepo{db: s.db}
}

// CatalogRepo returns the backend learning catalog repository.
func (s *Store) CatalogRepo() CatalogRepo {
	return &catalogRepo{db: s.db}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the client database path:
// $XDG_DATA_HOME/learninghub/hub.db or ~/.local/share/learninghub/hub.db.
func DefaultDBPath() (string, error) {
	return config.DataPath("hub.db")
}

// DefaultBackendDBPath resolves the local backend database path next to the
// client database.
func DefaultBackendDBPath() (string, error) {
	return config.DataPath("backend.db")
}

// timeNow is swapped in tests that need deterministic timestamps.
var timeNow = time.Now

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		t = timeNow()
	}
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Package history persists pipeline passes in a SQLite database for the
// history meta-command.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// SQLiteStore persists history records under the state directory.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) <stateDir>/history.db.
func NewSQLiteStore(stateDir string) (*SQLiteStore, error) {
	path := filepath.Join(stateDir, "history.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS passes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		prompt TEXT,
		command TEXT,
		model TEXT,
		risk_level TEXT,
		outcome TEXT
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO passes
		(timestamp, prompt, command, model, risk_level, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ts.Format(time.RFC3339),
		record.Prompt,
		record.Command,
		record.Model,
		string(record.RiskLevel),
		record.Outcome,
	)
	return err
}

// Records returns the most recent entries, newest first. A non-positive
// limit returns everything.
func (s *SQLiteStore) Records(limit int) ([]domain.HistoryRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, prompt, command, model, risk_level, outcome FROM passes ORDER BY id DESC")
	var args []interface{}
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, risk string
		if err := rows.Scan(&ts, &rec.Prompt, &rec.Command, &rec.Model, &risk, &rec.Outcome); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.RiskLevel = domain.RiskLevel(risk)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM passes")
	return err
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)

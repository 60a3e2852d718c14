// Package state persists per-notebook choices and run history in a local
// sqlite database. Everything here is optional comfort: losing the file
// costs remembered interpreters and history, never notebook content.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run is one recorded headless or interactive run-all.
type Run struct {
	ID           string
	NotebookPath string
	Cells        int
	Status       string
	// FailedCell is the index of the first failing cell, -1 when none.
	FailedCell  int
	StartedAt   time.Time
	CompletedAt sql.NullTime
}

// Store is the sqlite-backed state store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the state database at path and brings the
// schema up to date. ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping state database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the file the store was opened with.
func (s *Store) Path() string { return s.path }

// RememberInterpreter records the interpreter chosen for a notebook so the
// next open skips the picker.
func (s *Store) RememberInterpreter(notebookPath, interpreter string) error {
	_, err := s.db.Exec(`
		INSERT INTO notebooks (path, interpreter, last_opened_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET interpreter = excluded.interpreter,
		                                last_opened_at = excluded.last_opened_at`,
		notebookPath, interpreter, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to remember interpreter: %w", err)
	}
	return nil
}

// RememberedInterpreter returns the interpreter last chosen for a notebook.
// The second return is false when nothing is remembered.
func (s *Store) RememberedInterpreter(notebookPath string) (string, bool, error) {
	var interp string
	err := s.db.QueryRow(
		`SELECT interpreter FROM notebooks WHERE path = ?`, notebookPath,
	).Scan(&interp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read remembered interpreter: %w", err)
	}
	if interp == "" {
		return "", false, nil
	}
	return interp, true, nil
}

// TouchNotebook bumps the notebook's last-opened timestamp, keeping any
// remembered interpreter.
func (s *Store) TouchNotebook(notebookPath string) error {
	_, err := s.db.Exec(`
		INSERT INTO notebooks (path, interpreter, last_opened_at) VALUES (?, '', ?)
		ON CONFLICT(path) DO UPDATE SET last_opened_at = excluded.last_opened_at`,
		notebookPath, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to touch notebook: %w", err)
	}
	return nil
}

// RecentNotebooks returns notebook paths ordered by last open, newest first.
func (s *Store) RecentNotebooks(limit int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT path FROM notebooks ORDER BY last_opened_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notebooks: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// CreateRun records the start of a run over the given cell count.
func (s *Store) CreateRun(notebookPath string, cells int) (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		NotebookPath: notebookPath,
		Cells:        cells,
		Status:       RunStatusRunning,
		FailedCell:   -1,
		StartedAt:    time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, notebook_path, cells, status, failed_cell, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.NotebookPath, run.Cells, run.Status, run.FailedCell, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// FinishRun marks a run completed. failedCell is -1 on success.
func (s *Store) FinishRun(id, status string, failedCell int) error {
	res, err := s.db.Exec(`
		UPDATE runs SET status = ?, failed_cell = ?, completed_at = ? WHERE id = ?`,
		status, failedCell, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return err
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	run := &Run{}
	err := s.db.QueryRow(`
		SELECT id, notebook_path, cells, status, failed_cell, started_at, completed_at
		FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &run.NotebookPath, &run.Cells, &run.Status,
		&run.FailedCell, &run.StartedAt, &run.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the latest runs for a notebook, newest first.
func (s *Store) RecentRuns(notebookPath string, limit int) ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, notebook_path, cells, status, failed_cell, started_at, completed_at
		FROM runs WHERE notebook_path = ? ORDER BY started_at DESC LIMIT ?`,
		notebookPath, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.NotebookPath, &run.Cells, &run.Status,
			&run.FailedCell, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

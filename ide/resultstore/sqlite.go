package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists FactRecords in a single SQLite file, suitable for
// local development and single-process solver runs.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (creating if necessary) a SQLite database at path
// and ensures its schema exists. Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("resultstore: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("resultstore: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS solver_facts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			node TEXT NOT NULL,
			fact TEXT NOT NULL,
			value TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("resultstore: create solver_facts: %w", err)
	}
	const idx = `CREATE INDEX IF NOT EXISTS idx_solver_facts_run ON solver_facts(run_id)`
	if _, err := s.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("resultstore: create idx_solver_facts_run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, runID string, records []FactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("resultstore: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM solver_facts WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("resultstore: clear prior run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO solver_facts (run_id, node, fact, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("resultstore: prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, r.Node, r.Fact, r.Value); err != nil {
			return fmt.Errorf("resultstore: insert fact: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadRun(ctx context.Context, runID string) ([]FactRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT node, fact, value FROM solver_facts WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("resultstore: query facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []FactRecord
	for rows.Next() {
		r := FactRecord{RunID: runID}
		if err := rows.Scan(&r.Node, &r.Fact, &r.Value); err != nil {
			return nil, fmt.Errorf("resultstore: scan fact: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM solver_facts WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("resultstore: delete run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

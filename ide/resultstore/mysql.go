package resultstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore persists FactRecords in a MySQL database, for solver
// deployments sharing results across processes.
//
// dsn follows the go-sql-driver/mysql format, e.g.
// "user:pass@tcp(127.0.0.1:3306)/idesolver?parseTime=true".
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool against dsn and ensures the
// solver_facts schema exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("resultstore: open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resultstore: ping mysql: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS solver_facts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			node TEXT NOT NULL,
			fact TEXT NOT NULL,
			value TEXT NOT NULL,
			INDEX idx_solver_facts_run (run_id)
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("resultstore: create solver_facts: %w", err)
	}
	return nil
}

func (s *MySQLStore) SaveRun(ctx context.Context, runID string, records []FactRecord) error {
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

func (s *MySQLStore) LoadRun(ctx context.Context, runID string) ([]FactRecord, error) {
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

func (s *MySQLStore) DeleteRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM solver_facts WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("resultstore: delete run: %w", err)
	}
	return nil
}

func (s *MySQLStore) Close() error { return s.db.Close() }

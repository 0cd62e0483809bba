package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based deploy history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deploys (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		environment TEXT NOT NULL,
		host TEXT NOT NULL,
		remote_dir TEXT NOT NULL,
		commit_hash TEXT,
		dirty INTEGER NOT NULL DEFAULT 0,
		uploaded INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_deploys_started_at ON deploys(started_at);
	CREATE INDEX IF NOT EXISTS idx_deploys_outcome ON deploys(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a finished deploy record.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deploys
		 (id, started_at, finished_at, environment, host, remote_dir, commit_hash, dirty,
		  uploaded, deleted, skipped, failed, bytes, outcome, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt.Unix(), rec.FinishedAt.Unix(), rec.Environment, rec.Host,
		rec.RemoteDir, rec.Commit, boolToInt(rec.Dirty),
		rec.Uploaded, rec.Deleted, rec.Skipped, rec.Failed, rec.Bytes,
		string(rec.Outcome), rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert deploy record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, environment, host, remote_dir, commit_hash, dirty,
		        uploaded, deleted, skipped, failed, bytes, outcome, error
		 FROM deploys ORDER BY started_at DESC, id LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query deploy records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Last returns the most recent record, or nil when history is empty.
func (s *SQLiteStore) Last(ctx context.Context) (*Record, error) {
	records, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var (
			rec                  Record
			startedAt, finished  int64
			dirty                int
			commitHash, errField sql.NullString
		)
		err := rows.Scan(&rec.ID, &startedAt, &finished, &rec.Environment, &rec.Host,
			&rec.RemoteDir, &commitHash, &dirty,
			&rec.Uploaded, &rec.Deleted, &rec.Skipped, &rec.Failed, &rec.Bytes,
			&rec.Outcome, &errField)
		if err != nil {
			return nil, fmt.Errorf("scan deploy record: %w", err)
		}

		rec.StartedAt = time.Unix(startedAt, 0)
		rec.FinishedAt = time.Unix(finished, 0)
		rec.Dirty = dirty != 0
		rec.Commit = commitHash.String
		rec.Error = errField.String

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

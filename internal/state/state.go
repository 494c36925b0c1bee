// Package state persists sync state between invocations: the passage
// map, the last-sync commit, and a history of sync runs.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/agent-sync/internal/model"
)

const lastSyncKey = "last_sync_commit"

// Store is the SQLite-backed persistence layer. The sync core never
// touches it; values are loaded, handed to the core, and the results
// saved back.
type Store struct {
	db      *sql.DB
	entropy *rand.Rand
}

// Run records one completed sync invocation.
type Run struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	Commit          string    `json:"commit"`
	FilesIndexed    int       `json:"files_indexed"`
	PassagesCreated int       `json:"passages_created"`
	PassagesDeleted int       `json:"passages_deleted"`
	FullReindex     bool      `json:"full_reindex"`
}

// NewStore opens or creates a SQLite database at the given path.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passages (
		path       TEXT NOT NULL,
		seq        INTEGER NOT NULL,
		passage_id TEXT NOT NULL,
		PRIMARY KEY (path, seq)
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_passages_id ON passages(passage_id);

	CREATE TABLE IF NOT EXISTS sync_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sync_runs (
		id               TEXT PRIMARY KEY,
		started_at       TEXT NOT NULL,
		commit_hash      TEXT NOT NULL,
		files_indexed    INTEGER NOT NULL,
		passages_created INTEGER NOT NULL,
		passages_deleted INTEGER NOT NULL,
		full_reindex     INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON sync_runs(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadPassageMap reads the full passage map.
func (s *Store) LoadPassageMap(ctx context.Context) (model.PassageMap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, passage_id FROM passages ORDER BY path, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pm := make(model.PassageMap)
	for rows.Next() {
		var path, id string
		if err := rows.Scan(&path, &id); err != nil {
			return nil, err
		}
		pm[path] = append(pm[path], id)
	}
	return pm, rows.Err()
}

// SavePassageMap replaces the stored passage map with pm.
func (s *Store) SavePassageMap(ctx context.Context, pm model.PassageMap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM passages`); err != nil {
		return fmt.Errorf("clear passages: %w", err)
	}
	for path, ids := range pm {
		for seq, id := range ids {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO passages (path, seq, passage_id) VALUES (?, ?, ?)`,
				path, seq, id)
			if err != nil {
				return fmt.Errorf("insert passage %s: %w", id, err)
			}
		}
	}

	return tx.Commit()
}

// LastSyncCommit returns the commit of the last successful sync, or ""
// if no sync has run.
func (s *Store) LastSyncCommit(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM sync_state WHERE key = ?`, lastSyncKey).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return v, err
}

// SetLastSyncCommit records the commit of a completed sync.
func (s *Store) SetLastSyncCommit(ctx context.Context, commit string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastSyncKey, commit)
	return err
}

// RecordRun appends a sync run to the history.
func (s *Store) RecordRun(ctx context.Context, r Run) (*Run, error) {
	r.ID = s.newID()
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, started_at, commit_hash, files_indexed, passages_created, passages_deleted, full_reindex)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.Format(time.RFC3339), r.Commit,
		r.FilesIndexed, r.PassagesCreated, r.PassagesDeleted, boolInt(r.FullReindex))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &r, nil
}

// ListRuns returns the most recent sync runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, commit_hash, files_indexed, passages_created, passages_deleted, full_reindex
		 FROM sync_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		var full int
		if err := rows.Scan(&r.ID, &started, &r.Commit,
			&r.FilesIndexed, &r.PassagesCreated, &r.PassagesDeleted, &full); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FullReindex = full != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

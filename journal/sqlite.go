package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/tfgen/pkg/id"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordSync inserts r, assigning an id when it has none.
func (j *SQLite) RecordSync(r SyncRun) error {
	if r.ID == "" {
		r.ID = id.NewAt(r.Started)
	}
	_, err := j.db.Exec(`
		INSERT INTO sync_runs
		(run_id, symbol, exchange, timeframe, started, finished, window_start, window_end, fetched, length, skipped, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Symbol, r.Exchange, r.Timeframe,
		r.Started.UTC(), r.Finished.UTC(), r.WindowStart, r.WindowEnd,
		r.Fetched, r.Length, r.Skipped, r.Error,
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", r.ID, err)
	}
	return nil
}

const selectRuns = `
	SELECT run_id, symbol, exchange, timeframe, started, finished, window_start, window_end, fetched, length, skipped, error
	FROM sync_runs`

// ListRuns returns the newest runs first. Empty symbol or exchange match
// everything. limit <= 0 returns all runs.
func (j *SQLite) ListRuns(symbol, exchange string, limit int) ([]SyncRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(selectRuns+`
		WHERE (? = '' OR symbol = ?) AND (? = '' OR exchange = ?)
		ORDER BY run_id DESC
		LIMIT ?`, symbol, symbol, exchange, exchange, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SyncRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastRun returns the newest run for a series.
func (j *SQLite) LastRun(symbol, exchange string) (SyncRun, bool, error) {
	runs, err := j.ListRuns(symbol, exchange, 1)
	if err != nil || len(runs) == 0 {
		return SyncRun{}, false, err
	}
	return runs[0], true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (SyncRun, error) {
	var r SyncRun
	err := s.Scan(
		&r.ID,
		&r.Symbol,
		&r.Exchange,
		&r.Timeframe,
		&r.Started,
		&r.Finished,
		&r.WindowStart,
		&r.WindowEnd,
		&r.Fetched,
		&r.Length,
		&r.Skipped,
		&r.Error,
	)
	return r, err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

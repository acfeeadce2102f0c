package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tfgen/pkg/id"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func run(symbol, exchange string, started time.Time) SyncRun {
	return SyncRun{
		ID:          id.NewAt(started),
		Symbol:      symbol,
		Exchange:    exchange,
		Timeframe:   "15min",
		Started:     started,
		Finished:    started.Add(1500 * time.Millisecond),
		WindowStart: started.Add(-time.Hour).Unix(),
		WindowEnd:   started.Unix(),
		Fetched:     60,
		Length:      960,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='sync_runs'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "sync_runs", name)
}

func TestSQLiteRecordSync(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	started := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	rec := run("BTCUSDT", "Wallex", started)
	rec.Error = "fetch Wallex: http 502: bad gateway"

	require.NoError(t, j.RecordSync(rec))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		runID    string
		symbol   string
		finished time.Time
		fetched  int
		skipped  bool
		errText  string
	)
	err = db.QueryRow(`
        SELECT run_id, symbol, finished, fetched, skipped, error
        FROM sync_runs LIMIT 1`).Scan(&runID, &symbol, &finished, &fetched, &skipped, &errText)
	require.NoError(t, err)

	assert.Equal(t, rec.ID, runID)
	assert.Equal(t, "BTCUSDT", symbol)
	assert.True(t, finished.Equal(rec.Finished))
	assert.Equal(t, 60, fetched)
	assert.False(t, skipped)
	assert.Equal(t, rec.Error, errText)
}

func TestSQLiteRecordSync_AssignsID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	rec := run("ETHUSDT", "Binance", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	rec.ID = ""
	require.NoError(t, j.RecordSync(rec))

	got, ok, err := j.LastRun("ETHUSDT", "Binance")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.ID, 26)

	ts, err := id.Time(got.ID)
	require.NoError(t, err)
	assert.True(t, ts.Equal(rec.Started))
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, j.RecordSync(run("BTCUSDT", "Wallex", base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, j.RecordSync(run("BTC-USDT", "BingX", base.Add(time.Hour))))

	all, err := j.ListRuns("", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "BingX", all[0].Exchange)

	wallex, err := j.ListRuns("BTCUSDT", "Wallex", 2)
	require.NoError(t, err)
	require.Len(t, wallex, 2)
	assert.True(t, wallex[0].Started.After(wallex[1].Started))
	assert.Equal(t, int64(1704067200+120-3600), wallex[0].WindowStart)

	last, ok, err := j.LastRun("BTCUSDT", "Wallex")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, wallex[0].ID, last.ID)

	_, ok, err = j.LastRun("DOGE", "Wallex")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSyncRunResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  SyncRun
		want string
	}{
		{"error wins", SyncRun{Error: "boom", Skipped: true}, "error"},
		{"skipped", SyncRun{Skipped: true}, "skipped"},
		{"empty", SyncRun{}, "empty"},
		{"fetched", SyncRun{Fetched: 3}, "fetched"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.run.Result())
		})
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	r := Nop()
	assert.NoError(t, r.RecordSync(SyncRun{}))
	assert.NoError(t, r.Close())
}

package journal

const Schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
	run_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	exchange TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	started DATETIME NOT NULL,
	finished DATETIME NOT NULL,
	window_start INTEGER NOT NULL,
	window_end INTEGER NOT NULL,
	fetched INTEGER NOT NULL,
	length INTEGER NOT NULL,
	skipped BOOLEAN NOT NULL,
	error TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_series ON sync_runs(exchange, symbol);
`

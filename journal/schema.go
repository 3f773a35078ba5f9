package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	study_id TEXT NOT NULL DEFAULT '',
	created DATETIME NOT NULL,
	dataset TEXT NOT NULL,
	split TEXT NOT NULL,
	rule TEXT NOT NULL,
	params TEXT NOT NULL,
	start_time DATETIME,
	end_time DATETIME,
	bars INTEGER NOT NULL,
	initial_cash REAL NOT NULL,
	final_cash REAL NOT NULL,
	commission REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	sharpe REAL NOT NULL,
	sortino REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	calmar REAL NOT NULL,
	total_return REAL NOT NULL,
	notes TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	shares REAL NOT NULL,
	pnl REAL NOT NULL,
	net_pnl REAL NOT NULL,
	rr REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	value REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trials (
	study_id TEXT NOT NULL,
	number INTEGER NOT NULL,
	params TEXT NOT NULL,
	score REAL,
	error TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (study_id, number)
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, exit_time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
CREATE INDEX IF NOT EXISTS idx_runs_study ON runs(study_id);
`

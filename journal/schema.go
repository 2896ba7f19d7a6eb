package journal

// Monetary columns are TEXT: decimal strings round-trip exactly, REAL
// would not.
const schema = `
CREATE TABLE IF NOT EXISTS closes (
	trade_id TEXT PRIMARY KEY,
	strategy TEXT NOT NULL,
	type TEXT NOT NULL,
	qty INTEGER NOT NULL,
	gross TEXT NOT NULL,
	costs TEXT NOT NULL,
	net TEXT NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_closes_closed_at ON closes(closed_at);
`

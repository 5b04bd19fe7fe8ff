package eventlog

// SQLiteSchema creates the event table for the SQLite backend.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS ledger_events (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id TEXT NOT NULL,
	event_id TEXT NOT NULL UNIQUE,
	occurred_at TEXT NOT NULL,
	event_type TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	amount TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_events_account ON ledger_events(account_id, seq);
`

// PostgresSchema creates the event table for the PostgreSQL backend. Amounts
// are stored as text to keep their exact decimal representation.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS ledger_events (
	seq BIGSERIAL PRIMARY KEY,
	account_id TEXT NOT NULL,
	event_id TEXT NOT NULL UNIQUE,
	occurred_at TEXT NOT NULL,
	event_type TEXT NOT NULL,
	transaction_id TEXT NOT NULL,
	amount TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_events_account ON ledger_events(account_id, seq);
`

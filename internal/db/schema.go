package db

import "database/sql"

var migrations = []string{`
	CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref TEXT NOT NULL,
		kind TEXT NOT NULL,
		asset_id INTEGER NOT NULL,
		account TEXT,
		amount TEXT,
		bet_id TEXT,
		ts INTEGER
	);`, `
	CREATE INDEX IF NOT EXISTS ledger_asset ON ledger(asset_id);`, `
	CREATE TABLE IF NOT EXISTS audit_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		actor TEXT,
		action TEXT,
		metadata TEXT,
		created_at INTEGER
	);`,
}

func Migrate(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

package store

import "database/sql"

var sqliteDialect = dialect{
	name:          BackendSQLite,
	timestampType: "DATETIME",
	dataSelect:    "data",
}

// NewSQLiteStore wraps a modernc sqlite *sql.DB. Used for local runs and tests.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, d: sqliteDialect}
}

package store

import (
	"database/sql"
	"strconv"
	"strings"
)

// dialect captures the SQL differences between backends. Queries are written with
// `?` placeholders and rebound per backend.
type dialect struct {
	name          string
	timestampType string
	dataSelect    string
	numbered      bool
}

var postgresDialect = dialect{
	name:          BackendPostgres,
	timestampType: "TIMESTAMPTZ",
	dataSelect:    "data::text",
	numbered:      true,
}

// NewPostgresStore wraps a pgx-backed *sql.DB. The checklist_rows.data column is JSONB.
func NewPostgresStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, d: postgresDialect}
}

func dialectFor(backend string) (dialect, error) {
	switch backend {
	case BackendPostgres:
		return postgresDialect, nil
	case BackendSQLite:
		return sqliteDialect, nil
	default:
		return dialect{}, &UnknownBackendError{Backend: backend}
	}
}

// rebind rewrites `?` placeholders into `$n` for numbered dialects.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UnknownBackendError is returned for unsupported STORAGE_BACKEND values.
type UnknownBackendError struct {
	Backend string
}

func (e *UnknownBackendError) Error() string {
	return "unknown storage backend " + strconv.Quote(e.Backend)
}

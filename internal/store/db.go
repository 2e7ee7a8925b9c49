package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Backend names accepted by Open.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Open connects to the configured backend and verifies the connection.
func Open(ctx context.Context, backend, dsn string) (*sql.DB, error) {
	switch backend {
	case BackendPostgres:
		return openPostgres(ctx, dsn)
	case BackendSQLite:
		return openSQLite(ctx, dsn)
	default:
		return nil, &UnknownBackendError{Backend: backend}
	}
}

func openPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps :memory: databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}
	return db, nil
}

// OpenStore opens the backend, applies pending migrations and wraps the connection.
func OpenStore(ctx context.Context, backend, dsn string) (*SQLStore, error) {
	d, err := dialectFor(backend)
	if err != nil {
		return nil, err
	}
	db, err := Open(ctx, backend, dsn)
	if err != nil {
		return nil, err
	}
	if err := ApplyMigrations(ctx, db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return &SQLStore{db: db, d: d}, nil
}

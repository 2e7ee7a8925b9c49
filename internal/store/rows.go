package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore is the per-(user, category, period) row store over database/sql.
type SQLStore struct {
	db  *sql.DB
	d   dialect
	now func() time.Time
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Backend reports which dialect the store speaks.
func (s *SQLStore) Backend() string {
	return s.d.name
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// FetchRow returns the blob for one key. found is false when no row exists.
func (s *SQLStore) FetchRow(ctx context.Context, userID string, category Category, periodKey string) (json.RawMessage, bool, error) {
	query := s.d.rebind(`
		SELECT ` + s.d.dataSelect + `
		FROM checklist_rows
		WHERE user_id = ? AND category = ? AND period_key = ?
	`)
	var data string
	err := s.db.QueryRowContext(ctx, query, userID, string(category), periodKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch row: %w", err)
	}
	return json.RawMessage(data), true, nil
}

// UpsertRow replaces the whole blob for one key.
func (s *SQLStore) UpsertRow(ctx context.Context, userID string, category Category, periodKey string, data json.RawMessage) error {
	if !json.Valid(data) {
		return fmt.Errorf("upsert row: data is not valid JSON")
	}
	query := s.d.rebind(`
		INSERT INTO checklist_rows (user_id, category, period_key, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category, period_key)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, userID, string(category), periodKey, string(data), s.clock()); err != nil {
		return fmt.Errorf("upsert row: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteRow(ctx context.Context, userID string, category Category, periodKey string) error {
	query := s.d.rebind(`DELETE FROM checklist_rows WHERE user_id = ? AND category = ? AND period_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, userID, string(category), periodKey); err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	return nil
}

// FetchRange lists rows with period_key >= from, oldest first.
func (s *SQLStore) FetchRange(ctx context.Context, userID string, category Category, from string) ([]Row, error) {
	query := s.d.rebind(`
		SELECT user_id, category, period_key, ` + s.d.dataSelect + `, updated_at
		FROM checklist_rows
		WHERE user_id = ? AND category = ? AND period_key >= ?
		ORDER BY period_key ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, userID, string(category), from)
	if err != nil {
		return nil, fmt.Errorf("fetch range: %w", err)
	}
	return scanRows(rows, "range")
}

// FetchOlderThan lists rows in categories with period_key < cutoff, oldest first.
func (s *SQLStore) FetchOlderThan(ctx context.Context, userID string, categories []Category, cutoff string) ([]Row, error) {
	if len(categories) == 0 {
		return []Row{}, nil
	}
	in, args := inClause(categories)
	query := s.d.rebind(`
		SELECT user_id, category, period_key, ` + s.d.dataSelect + `, updated_at
		FROM checklist_rows
		WHERE user_id = ? AND period_key < ? AND category IN (` + in + `)
		ORDER BY period_key ASC
	`)
	rows, err := s.db.QueryContext(ctx, query, append([]any{userID, cutoff}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("fetch expired rows: %w", err)
	}
	return scanRows(rows, "expired")
}

// CleanupOlderThan deletes rows in categories with period_key < cutoff.
func (s *SQLStore) CleanupOlderThan(ctx context.Context, userID string, categories []Category, cutoff string) (int64, error) {
	if len(categories) == 0 {
		return 0, nil
	}
	in, args := inClause(categories)
	query := s.d.rebind(`
		DELETE FROM checklist_rows
		WHERE user_id = ? AND period_key < ? AND category IN (` + in + `)
	`)
	res, err := s.db.ExecContext(ctx, query, append([]any{userID, cutoff}, args...)...)
	if err != nil {
		return 0, fmt.Errorf("cleanup rows: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup rows affected: %w", err)
	}
	return n, nil
}

func inClause(categories []Category) (string, []any) {
	marks := make([]string, len(categories))
	args := make([]any, len(categories))
	for i, c := range categories {
		marks[i] = "?"
		args[i] = string(c)
	}
	return strings.Join(marks, ", "), args
}

func scanRows(rows *sql.Rows, what string) ([]Row, error) {
	defer rows.Close()

	items := make([]Row, 0)
	for rows.Next() {
		var (
			item     Row
			category string
			data     string
		)
		if err := rows.Scan(&item.UserID, &category, &item.PeriodKey, &data, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", what, err)
		}
		item.Category = Category(category)
		item.Data = json.RawMessage(data)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", what, err)
	}
	return items, nil
}

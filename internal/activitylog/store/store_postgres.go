package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"vms/internal/activitylog"
)

// PostgresStore persists entries in the activity_log table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry *activitylog.Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal log details: %w", err)
	}
	query := `
		INSERT INTO activity_log (id, timestamp, level, action, details)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query, entry.ID, entry.Timestamp, string(entry.Level), entry.Action, details); err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// Recent orders by timestamp then id so entries sharing a timestamp keep append order.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*activitylog.Entry, error) {
	query := `
		SELECT id, timestamp, level, action, details
		FROM activity_log
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent log entries: %w", err)
	}
	defer rows.Close()

	var out []*activitylog.Entry
	for rows.Next() {
		var (
			e       activitylog.Entry
			level   string
			details []byte
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &level, &e.Action, &details); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.Level = activitylog.Level(level)
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, fmt.Errorf("unmarshal log details: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return out, nil
}

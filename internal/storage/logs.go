package storage

import (
	"context"
	"fmt"
)

// AppendActionLog inserts an audit record. The table is append-only; rows
// are never updated or deleted.
func (s *SQLiteStorage) AppendActionLog(ctx context.Context, entry *ActionLog) error {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO action_logs (user_id, user_email, action_type, description) VALUES (?, ?, ?, ?)",
		entry.UserID, entry.UserEmail, entry.ActionType, entry.Description)
	if err != nil {
		return fmt.Errorf("failed to append action log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	entry.LogID = id
	return nil
}

// ListActionLogs returns the most recent audit records, newest first.
func (s *SQLiteStorage) ListActionLogs(ctx context.Context, limit int) ([]*ActionLog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT log_id, user_id, user_email, action_type, description, timestamp FROM action_logs ORDER BY log_id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query action logs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var logs []*ActionLog
	for rows.Next() {
		var l ActionLog
		if err := rows.Scan(&l.LogID, &l.UserID, &l.UserEmail, &l.ActionType, &l.Description, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan action log row: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action logs: %w", err)
	}

	if logs == nil {
		logs = make([]*ActionLog, 0)
	}
	return logs, nil
}

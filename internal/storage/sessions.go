package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession persists a bearer session. Only the SHA-256 digest of the
// handed-out value is stored.
func (s *SQLiteStorage) CreateSession(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) (*Session, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token_hash, user_id, expires_at) VALUES (?, ?, ?)",
		tokenHash, userID, expiresAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return &Session{ID: id, TokenHash: tokenHash, UserID: userID, ExpiresAt: expiresAt.UTC()}, nil
}

// GetSessionByHash retrieves a session by its hash.
// Returns ErrNotFound if the hash doesn't exist.
func (s *SQLiteStorage) GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error) {
	var sess Session

	err := s.db.QueryRowContext(ctx,
		"SELECT id, token_hash, user_id, expires_at, created_at FROM sessions WHERE token_hash = ?",
		tokenHash).
		Scan(&sess.ID, &sess.TokenHash, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &sess, nil
}

// DeleteSessionByHash removes a session (logout or expiry on touch).
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStorage) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token_hash = ?", tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry.
// Safe to call periodically.
func (s *SQLiteStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateAccessToken persists a report access token record. Only the SHA-256
// digest of the handed-out value is stored.
// Returns ErrDuplicate if a token with this hash already exists.
func (s *SQLiteStorage) CreateAccessToken(ctx context.Context, clientID, tokenHash string, expiresAt time.Time) (*AccessToken, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO access_tokens (client_id, token_hash, expires_at) VALUES (?, ?, ?)",
		clientID, tokenHash, expiresAt.UTC())
	if err != nil {
		// UNIQUE constraint: extended code 2067, base code 19
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return &AccessToken{
		ID:        id,
		ClientID:  clientID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// GetAccessTokenByHash retrieves an access token by its hash.
// This is the redemption lookup; expiry is checked by the caller so that
// expired and unknown tokens surface as distinct errors.
// Returns ErrNotFound if the hash doesn't exist.
func (s *SQLiteStorage) GetAccessTokenByHash(ctx context.Context, tokenHash string) (*AccessToken, error) {
	var t AccessToken

	err := s.db.QueryRowContext(ctx,
		"SELECT id, client_id, token_hash, expires_at, created_at FROM access_tokens WHERE token_hash = ?",
		tokenHash).
		Scan(&t.ID, &t.ClientID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &t, nil
}

// CountAccessTokensForClient returns the number of tokens ever issued for a
// client. Tokens are never revoked or cleaned up; stale ones simply fail
// validation after expiry.
func (s *SQLiteStorage) CountAccessTokensForClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM access_tokens WHERE client_id = ?", clientID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count access tokens: %w", err)
	}
	return count, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// CreateAdminUser inserts a new admin account with a bcrypt password hash.
// Returns ErrDuplicate if the email is already registered.
func (s *SQLiteStorage) CreateAdminUser(ctx context.Context, email, passwordHash string) (*AdminUser, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash) VALUES (?, ?)",
		email, passwordHash)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) {
			if sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT {
				return nil, ErrDuplicate
			}
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return &AdminUser{ID: id, Email: email, PasswordHash: passwordHash}, nil
}

// GetAdminUserByEmail retrieves an admin account by email.
// Returns ErrNotFound if no account exists.
func (s *SQLiteStorage) GetAdminUserByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var u AdminUser

	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM admin_users WHERE email = ?",
		email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin user by email: %w", err)
	}

	return &u, nil
}

// GetAdminUserByID retrieves an admin account by ID.
// Returns ErrNotFound if no account exists.
func (s *SQLiteStorage) GetAdminUserByID(ctx context.Context, id int64) (*AdminUser, error) {
	var u AdminUser

	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM admin_users WHERE id = ?",
		id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin user by ID: %w", err)
	}

	return &u, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CreateClient inserts a new client and returns it with a generated ID.
func (s *SQLiteStorage) CreateClient(ctx context.Context, name, email, phone, address string) (*Client, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO clients (id, name, email, phone, address) VALUES (?, ?, ?, ?, ?)",
		id, name, email, phone, address)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return s.GetClient(ctx, id)
}

// GetClient retrieves a client by ID.
// Returns ErrNotFound if the client doesn't exist.
func (s *SQLiteStorage) GetClient(ctx context.Context, id string) (*Client, error) {
	var c Client

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, phone, address, created_at, updated_at FROM clients WHERE id = ?",
		id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &c, nil
}

// ListClients returns all clients ordered by creation time.
// Returns empty slice if no clients exist.
func (s *SQLiteStorage) ListClients(ctx context.Context) ([]*Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, phone, address, created_at, updated_at FROM clients ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var clients []*Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client row: %w", err)
		}
		clients = append(clients, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	if clients == nil {
		clients = make([]*Client, 0)
	}
	return clients, nil
}

// UpdateClient updates a client's fields.
// Returns ErrNotFound if the client doesn't exist.
func (s *SQLiteStorage) UpdateClient(ctx context.Context, id, name, email, phone, address string) (*Client, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE clients SET name = ?, email = ?, phone = ?, address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		name, email, phone, address, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetClient(ctx, id)
}

// DeleteClient deletes a client by ID.
// Returns ErrConflict if the client still owns projects, ErrNotFound if it
// doesn't exist. The dependent check runs first so a blocked delete leaves
// both the client and its projects untouched.
func (s *SQLiteStorage) DeleteClient(ctx context.Context, id string) error {
	count, err := s.CountProjectsForClient(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
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

// CountProjectsForClient returns the number of projects owned by a client.
func (s *SQLiteStorage) CountProjectsForClient(ctx context.Context, clientID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE client_id = ?", clientID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects for client: %w", err)
	}
	return count, nil
}

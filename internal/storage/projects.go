package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/facturia/facturia/internal/money"
)

// CreateProject inserts a new project for a client.
// The caller is responsible for validating that the client exists.
func (s *SQLiteStorage) CreateProject(ctx context.Context, clientID, name string, totalValue money.Cents, status ProjectStatus) (*Project, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, client_id, name, total_value_cents, status) VALUES (?, ?, ?, ?, ?)",
		id, clientID, name, int64(totalValue), string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(ctx, id)
}

// GetProject retrieves a project by ID.
// Returns ErrNotFound if the project doesn't exist.
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*Project, error) {
	var p Project
	var cents int64
	var status string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, client_id, name, total_value_cents, status, created_at, updated_at FROM projects WHERE id = ?",
		id).
		Scan(&p.ID, &p.ClientID, &p.Name, &cents, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	p.TotalValue = money.Cents(cents)
	p.Status = ProjectStatus(status)
	return &p, nil
}

// ListProjects returns all projects ordered by creation time.
func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.queryProjects(ctx,
		"SELECT id, client_id, name, total_value_cents, status, created_at, updated_at FROM projects ORDER BY created_at, id")
}

// ListProjectsByClient returns all projects owned by a client.
func (s *SQLiteStorage) ListProjectsByClient(ctx context.Context, clientID string) ([]*Project, error) {
	return s.queryProjects(ctx,
		"SELECT id, client_id, name, total_value_cents, status, created_at, updated_at FROM projects WHERE client_id = ? ORDER BY created_at, id",
		clientID)
}

func (s *SQLiteStorage) queryProjects(ctx context.Context, query string, args ...any) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var projects []*Project
	for rows.Next() {
		var p Project
		var cents int64
		var status string
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &cents, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		p.TotalValue = money.Cents(cents)
		p.Status = ProjectStatus(status)
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	if projects == nil {
		projects = make([]*Project, 0)
	}
	return projects, nil
}

// UpdateProject updates a project's fields.
// Returns ErrNotFound if the project doesn't exist.
func (s *SQLiteStorage) UpdateProject(ctx context.Context, id, clientID, name string, totalValue money.Cents, status ProjectStatus) (*Project, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE projects SET client_id = ?, name = ?, total_value_cents = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		clientID, name, int64(totalValue), string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetProject(ctx, id)
}

// DeleteProject deletes a project by ID.
// Returns ErrConflict if payments still reference the project, ErrNotFound
// if it doesn't exist.
func (s *SQLiteStorage) DeleteProject(ctx context.Context, id string) error {
	count, err := s.CountPaymentsForProject(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

// CountPaymentsForProject returns the number of payments recorded against a project.
func (s *SQLiteStorage) CountPaymentsForProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM payments WHERE project_id = ?", projectID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments for project: %w", err)
	}
	return count, nil
}

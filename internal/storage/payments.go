package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facturia/facturia/internal/money"
)

// CreatePayment inserts a new payment against a project.
// The caller is responsible for validating the amount against the project's
// total value before persisting.
func (s *SQLiteStorage) CreatePayment(ctx context.Context, projectID string, amount money.Cents, paymentDate time.Time, status PaymentStatus) (*Payment, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO payments (id, project_id, amount_cents, payment_date, status) VALUES (?, ?, ?, ?, ?)",
		id, projectID, int64(amount), paymentDate.Format(dateLayout), string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return s.GetPayment(ctx, id)
}

// GetPayment retrieves a payment by ID.
// Returns ErrNotFound if the payment doesn't exist.
func (s *SQLiteStorage) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	var cents int64
	var date, status string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, amount_cents, payment_date, status, created_at, updated_at FROM payments WHERE id = ?",
		id).
		Scan(&p.ID, &p.ProjectID, &cents, &date, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	p.Amount = money.Cents(cents)
	p.Status = PaymentStatus(status)
	p.PaymentDate, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment date %q: %w", date, err)
	}
	return &p, nil
}

// ListPayments returns all payments ordered by payment date descending.
func (s *SQLiteStorage) ListPayments(ctx context.Context) ([]*Payment, error) {
	return s.queryPayments(ctx,
		"SELECT id, project_id, amount_cents, payment_date, status, created_at, updated_at FROM payments ORDER BY payment_date DESC, id")
}

// ListPaymentsByProject returns all payments recorded against a project.
func (s *SQLiteStorage) ListPaymentsByProject(ctx context.Context, projectID string) ([]*Payment, error) {
	return s.queryPayments(ctx,
		"SELECT id, project_id, amount_cents, payment_date, status, created_at, updated_at FROM payments WHERE project_id = ? ORDER BY payment_date DESC, id",
		projectID)
}

// ListPaymentsForClient returns all payments whose project belongs to the
// given client, joined through the projects table.
func (s *SQLiteStorage) ListPaymentsForClient(ctx context.Context, clientID string) ([]*Payment, error) {
	return s.queryPayments(ctx,
		`SELECT p.id, p.project_id, p.amount_cents, p.payment_date, p.status, p.created_at, p.updated_at
		 FROM payments p
		 JOIN projects pr ON p.project_id = pr.id
		 WHERE pr.client_id = ?
		 ORDER BY p.payment_date DESC, p.id`,
		clientID)
}

func (s *SQLiteStorage) queryPayments(ctx context.Context, query string, args ...any) ([]*Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var payments []*Payment
	for rows.Next() {
		var p Payment
		var cents int64
		var date, status string
		if err := rows.Scan(&p.ID, &p.ProjectID, &cents, &date, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		p.Amount = money.Cents(cents)
		p.Status = PaymentStatus(status)
		p.PaymentDate, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse payment date %q: %w", date, err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	if payments == nil {
		payments = make([]*Payment, 0)
	}
	return payments, nil
}

// UpdatePayment updates a payment's fields.
// Returns ErrNotFound if the payment doesn't exist.
func (s *SQLiteStorage) UpdatePayment(ctx context.Context, id, projectID string, amount money.Cents, paymentDate time.Time, status PaymentStatus) (*Payment, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE payments SET project_id = ?, amount_cents = ?, payment_date = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		projectID, int64(amount), paymentDate.Format(dateLayout), string(status), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetPayment(ctx, id)
}

// DeletePayment deletes a payment by ID.
// Returns ErrNotFound if the payment doesn't exist.
func (s *SQLiteStorage) DeletePayment(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
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

// SumCompletedPayments returns the sum of completed payment amounts for a
// project, excluding the payment with excludeID (pass "" to include all).
// Used by the pre-save check that keeps completed payments within the
// project's total value.
func (s *SQLiteStorage) SumCompletedPayments(ctx context.Context, projectID, excludeID string) (money.Cents, error) {
	var sum sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT SUM(amount_cents) FROM payments WHERE project_id = ? AND status = ? AND id != ?",
		projectID, string(PaymentCompleted), excludeID).
		Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return money.Cents(sum.Int64), nil
}

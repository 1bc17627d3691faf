package storage

import (
	"time"

	"github.com/facturia/facturia/internal/money"
)

// ProjectStatus is the normalized project lifecycle vocabulary.
// Legacy values ("En Progreso", "Completado", "Terminado") are mapped to
// these two states at the API boundary.
type ProjectStatus string

const (
	// ProjectActive marks a project still in progress.
	ProjectActive ProjectStatus = "active"
	// ProjectClosed marks a completed or terminated project.
	ProjectClosed ProjectStatus = "closed"
)

// PaymentStatus is the normalized payment vocabulary.
type PaymentStatus string

const (
	// PaymentPending marks a payment that has not settled yet.
	PaymentPending PaymentStatus = "pending"
	// PaymentCompleted marks a settled payment. Only completed payments
	// contribute to paid totals.
	PaymentCompleted PaymentStatus = "completed"
)

// Client represents a billable party owning zero or more projects.
type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Project represents a billable engagement for a client.
type Project struct {
	ID         string
	ClientID   string
	Name       string
	TotalValue money.Cents
	Status     ProjectStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Payment represents an amount applied against a project's total value.
type Payment struct {
	ID          string
	ProjectID   string
	Amount      money.Cents
	PaymentDate time.Time // date precision, stored as YYYY-MM-DD
	Status      PaymentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccessToken represents a time-boxed report credential. The plain token
// value is handed out once at issuance; only its SHA-256 digest is stored.
type AccessToken struct {
	ID        int64
	ClientID  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActionLog is an append-only audit record. UserID and UserEmail are nil
// for system actions.
type ActionLog struct {
	LogID       int64
	UserID      *int64
	UserEmail   *string
	ActionType  string
	Description string
	Timestamp   time.Time
}

// AdminUser is an email/password admin account.
type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a DB-backed bearer session, stored hashed like access tokens.
type Session struct {
	ID        int64
	TokenHash string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// dateLayout is the storage format for payment dates.
const dateLayout = "2006-01-02"

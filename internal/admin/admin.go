// Package admin provides the HTTP surface of the service: the authenticated
// management API, the auth endpoints, and the public client report endpoint.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/facturia/facturia/internal/audit"
	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/money"
	"github.com/facturia/facturia/internal/report"
	"github.com/facturia/facturia/internal/storage"
)

// Handler provides all HTTP endpoints.
type Handler struct {
	storage  Storage
	logger   *slog.Logger
	logLevel *slog.LevelVar
	audit    *audit.Recorder
	sessions *auth.SessionService
	issuer   *report.Issuer
	resolver *report.Resolver
	now      func() time.Time
}

// Storage interface for admin operations
type Storage interface {
	// Health check
	Ping(ctx context.Context) error

	// Clients
	CreateClient(ctx context.Context, name, email, phone, address string) (*storage.Client, error)
	GetClient(ctx context.Context, id string) (*storage.Client, error)
	ListClients(ctx context.Context) ([]*storage.Client, error)
	UpdateClient(ctx context.Context, id, name, email, phone, address string) (*storage.Client, error)
	DeleteClient(ctx context.Context, id string) error

	// Projects
	CreateProject(ctx context.Context, clientID, name string, totalValue money.Cents, status storage.ProjectStatus) (*storage.Project, error)
	GetProject(ctx context.Context, id string) (*storage.Project, error)
	ListProjects(ctx context.Context) ([]*storage.Project, error)
	ListProjectsByClient(ctx context.Context, clientID string) ([]*storage.Project, error)
	UpdateProject(ctx context.Context, id, clientID, name string, totalValue money.Cents, status storage.ProjectStatus) (*storage.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// Payments
	CreatePayment(ctx context.Context, projectID string, amount money.Cents, paymentDate time.Time, status storage.PaymentStatus) (*storage.Payment, error)
	GetPayment(ctx context.Context, id string) (*storage.Payment, error)
	ListPayments(ctx context.Context) ([]*storage.Payment, error)
	ListPaymentsByProject(ctx context.Context, projectID string) ([]*storage.Payment, error)
	UpdatePayment(ctx context.Context, id, projectID string, amount money.Cents, paymentDate time.Time, status storage.PaymentStatus) (*storage.Payment, error)
	DeletePayment(ctx context.Context, id string) error
	SumCompletedPayments(ctx context.Context, projectID, excludeID string) (money.Cents, error)

	// Report tokens
	CountAccessTokensForClient(ctx context.Context, clientID string) (int, error)

	// Audit trail
	ListActionLogs(ctx context.Context, limit int) ([]*storage.ActionLog, error)
}

// NewHandler creates the HTTP handler.
func NewHandler(st Storage, logLevel *slog.LevelVar, logger *slog.Logger, recorder *audit.Recorder, sessions *auth.SessionService, issuer *report.Issuer, resolver *report.Resolver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		storage:  st,
		logger:   logger,
		logLevel: logLevel,
		audit:    recorder,
		sessions: sessions,
		issuer:   issuer,
		resolver: resolver,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests exercising date validation.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

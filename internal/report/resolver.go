package report

import (
	"context"
	"errors"
	"time"

	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/storage"
)

// ResolverStorage is the persistence surface the resolver needs.
type ResolverStorage interface {
	GetAccessTokenByHash(ctx context.Context, tokenHash string) (*storage.AccessToken, error)
	GetClient(ctx context.Context, id string) (*storage.Client, error)
	ListProjectsByClient(ctx context.Context, clientID string) ([]*storage.Project, error)
	ListPaymentsForClient(ctx context.Context, clientID string) ([]*storage.Payment, error)
}

// Resolver redeems report access tokens. Resolution is a pure read: repeated
// calls against the same snapshot return identical reports.
type Resolver struct {
	storage ResolverStorage
	now     func() time.Time
}

// NewResolver creates a Resolver.
func NewResolver(s ResolverStorage) *Resolver {
	return &Resolver{storage: s, now: time.Now}
}

// SetClock overrides the time source. Intended for tests.
func (r *Resolver) SetClock(now func() time.Time) {
	r.now = now
}

// Resolve validates a token value and assembles the bound client's report.
//
// Failure modes are distinguished because the remediation differs:
// ErrTokenInvalid for unknown tokens and for clients deleted after issuance,
// ErrTokenExpired once now >= expires_at.
func (r *Resolver) Resolve(ctx context.Context, tokenValue string) (*ClientReport, error) {
	token, err := r.storage.GetAccessTokenByHash(ctx, auth.HashToken(tokenValue))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	if !r.now().Before(token.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	client, err := r.storage.GetClient(ctx, token.ClientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}

	projects, err := r.storage.ListProjectsByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	payments, err := r.storage.ListPaymentsForClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	return Build(client, projects, payments), nil
}

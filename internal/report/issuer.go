package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/storage"
)

// IssuerStorage is the persistence surface the issuer needs.
type IssuerStorage interface {
	GetClient(ctx context.Context, id string) (*storage.Client, error)
	CreateAccessToken(ctx context.Context, clientID, tokenHash string, expiresAt time.Time) (*storage.AccessToken, error)
}

// IssuedToken is the one-time response to an issuance: the plain token value
// is never recoverable afterwards, only its hash is stored.
type IssuedToken struct {
	Token     string
	URL       string
	ExpiresAt time.Time
}

// Issuer mints time-boxed report access tokens.
type Issuer struct {
	storage IssuerStorage
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

// NewIssuer creates an Issuer. A zero ttl defaults to 24 hours.
func NewIssuer(s IssuerStorage, baseURL string, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		storage: s,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

// Issue mints a token granting read-only report access for the client.
// The record is persisted before any URL is produced: a storage failure
// returns an error and no partial state.
// Returns storage.ErrNotFound if the client doesn't exist.
func (i *Issuer) Issue(ctx context.Context, clientID string) (*IssuedToken, error) {
	if _, err := i.storage.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, err
	}

	expiresAt := i.now().Add(i.ttl)
	if _, err := i.storage.CreateAccessToken(ctx, clientID, auth.HashToken(token), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to persist access token: %w", err)
	}

	return &IssuedToken{
		Token:     token,
		URL:       fmt.Sprintf("%s/report/%s", i.baseURL, token),
		ExpiresAt: expiresAt,
	}, nil
}

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// hashValue mirrors the digest applied to tokens before storage.
func hashValue(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TestCreateAccessToken verifies issuance persistence and hash lookup.
func TestCreateAccessToken(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	c, err := s.CreateClient(ctx, "Acme", "billing@acme.test", "", "")
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	hash := hashValue("report-token-1")

	tok, err := s.CreateAccessToken(ctx, c.ID, hash, expires)
	if err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}
	if tok.ID <= 0 {
		t.Errorf("expected positive ID, got %d", tok.ID)
	}

	got, err := s.GetAccessTokenByHash(ctx, hash)
	if err != nil {
		t.Fatalf("GetAccessTokenByHash failed: %v", err)
	}
	if got.ClientID != c.ID {
		t.Errorf("client ID = %q, want %q", got.ClientID, c.ID)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("expires_at round-trip: got %v, want %v", got.ExpiresAt, expires)
	}
}

// TestAccessTokenDuplicateHash verifies the unique constraint surfaces as ErrDuplicate.
func TestAccessTokenDuplicateHash(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	c, err := s.CreateClient(ctx, "Acme", "billing@acme.test", "", "")
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	hash := hashValue("same-token")
	expires := time.Now().Add(time.Hour)

	if _, err := s.CreateAccessToken(ctx, c.ID, hash, expires); err != nil {
		t.Fatalf("first CreateAccessToken failed: %v", err)
	}
	if _, err := s.CreateAccessToken(ctx, c.ID, hash, expires); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

// TestAccessTokenUnknownHash verifies ErrNotFound for unknown digests.
func TestAccessTokenUnknownHash(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.GetAccessTokenByHash(context.Background(), hashValue("never-issued")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestTokensSurviveClientDelete verifies the weak reference: deleting a
// client does not cascade to its tokens.
func TestTokensSurviveClientDelete(t *testing.T) {
	t.Parallel()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	c, err := s.CreateClient(ctx, "Acme", "billing@acme.test", "", "")
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	hash := hashValue("orphan-token")
	if _, err := s.CreateAccessToken(ctx, c.ID, hash, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateAccessToken failed: %v", err)
	}

	if err := s.DeleteClient(ctx, c.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}

	// Token row remains; redemption resolves it and fails on the missing client
	if _, err := s.GetAccessTokenByHash(ctx, hash); err != nil {
		t.Errorf("token should survive client delete, got %v", err)
	}
}

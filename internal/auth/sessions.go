package auth

import (
	"context"
	"errors"
	"time"

	"github.com/facturia/facturia/internal/storage"
)

// Storage interface for dependency injection.
type Storage interface {
	CreateAdminUser(ctx context.Context, email, passwordHash string) (*storage.AdminUser, error)
	GetAdminUserByEmail(ctx context.Context, email string) (*storage.AdminUser, error)
	GetAdminUserByID(ctx context.Context, id int64) (*storage.AdminUser, error)
	CreateSession(ctx context.Context, tokenHash string, userID int64, expiresAt time.Time) (*storage.Session, error)
	GetSessionByHash(ctx context.Context, tokenHash string) (*storage.Session, error)
	DeleteSessionByHash(ctx context.Context, tokenHash string) error
}

// SessionService manages admin accounts and their bearer sessions.
// Sessions are opaque random tokens stored hashed with a fixed TTL.
type SessionService struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionService creates a SessionService. A zero ttl defaults to 24 hours.
func NewSessionService(s Storage, ttl time.Duration) *SessionService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{storage: s, ttl: ttl, now: time.Now}
}

// SetClock overrides the time source. Intended for tests.
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Register creates a new admin account.
// Returns storage.ErrDuplicate if the email is taken.
func (s *SessionService) Register(ctx context.Context, email, password string) (*storage.AdminUser, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.storage.CreateAdminUser(ctx, email, hash)
}

// Login verifies the credentials and mints a session token.
// The plain token is returned once; only its hash is stored.
func (s *SessionService) Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, err error) {
	user, err := s.storage.GetAdminUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}

	if VerifyPassword(password, user.PasswordHash) != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, err = GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt = s.now().Add(s.ttl)
	if _, err := s.storage.CreateSession(ctx, HashToken(token), user.ID, expiresAt); err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// Logout deletes the session for the given token. Unknown tokens are not an
// error; logout is idempotent.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	err := s.storage.DeleteSessionByHash(ctx, HashToken(token))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Validate resolves a session token to its admin user.
// Expired sessions are deleted on touch and reported as ErrInvalidSession.
func (s *SessionService) Validate(ctx context.Context, token string) (*storage.AdminUser, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	hash := HashToken(token)
	sess, err := s.storage.GetSessionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if !s.now().Before(sess.ExpiresAt) {
		_ = s.storage.DeleteSessionByHash(ctx, hash) //nolint:errcheck
		return nil, ErrInvalidSession
	}

	user, err := s.storage.GetAdminUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return user, nil
}

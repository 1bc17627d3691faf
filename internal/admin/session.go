package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/facturia/facturia/internal/audit"
	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/metrics"
	"github.com/facturia/facturia/internal/storage"
)

const minPasswordLength = 8

// RegisterRequest is the request body for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the response for POST /auth/register
type RegisterResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// HandleRegister creates an admin account
// POST /auth/register
// Body: {"email": "...", "password": "..."}
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "A valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation,
			fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	user, err := h.sessions.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			WriteError(w, http.StatusConflict, ErrCodeDuplicate, "An account with this email already exists")
			return
		}
		h.logger.Error("failed to register user", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Nuevo usuario administrador registrado: %s.", user.Email))
	h.logger.Info("admin user registered", "id", user.ID, "email", user.Email)

	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:    user.ID,
		Email: user.Email,
	})
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse includes the session token (shown only once)
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// HandleLogin verifies credentials and mints an opaque session token
// POST /auth/login
// Body: {"email": "...", "password": "..."}
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}

	token, expiresAt, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.RecordAuthFailure("bad_credentials")
			h.audit.Record(r.Context(), "",
				fmt.Sprintf("Intento de inicio de sesión fallido para %s.", req.Email))
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Inicio de sesión exitoso para %s.", req.Email))
	h.logger.Info("session created", "email", req.Email)

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// HandleLogout deletes the session named by the bearer token. Idempotent.
// POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Missing session token")
		return
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.audit.Record(r.Context(), audit.ActionLogout, "Cierre de sesión.")
	w.WriteHeader(http.StatusNoContent)
}

// WhoamiResponse is the response for GET /api/whoami
type WhoamiResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// HandleWhoami returns the authenticated admin user
// GET /api/whoami
func (h *Handler) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "No authenticated user")
		return
	}

	writeJSON(w, http.StatusOK, WhoamiResponse{
		ID:    user.ID,
		Email: user.Email,
	})
}

// SetLogLevelRequest is the request body for POST /api/loglevel
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes runtime log level
// POST /api/loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		WriteError(w, http.StatusBadRequest, ErrCodeValidation,
			"Invalid level (must be: debug, info, warn, error)")
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", req.Level)

	writeJSON(w, http.StatusOK, map[string]string{
		"level": req.Level,
	})
}

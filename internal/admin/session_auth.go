package admin

import (
	"net/http"
	"strings"

	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/logging"
	"github.com/facturia/facturia/internal/metrics"
)

// SessionAuthMiddleware validates Bearer session tokens for the admin API.
// On success the authenticated admin user is placed in the request context.
func (h *Handler) SessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			metrics.RecordAuthFailure("missing_token")
			WriteErrorWithHint(w, http.StatusUnauthorized, ErrCodeInvalidCredentials,
				"Missing session token",
				"Send the session token from /auth/login in the Authorization: Bearer header")
			return
		}

		user, err := h.sessions.Validate(r.Context(), token)
		if err != nil {
			metrics.RecordAuthFailure("invalid_session")
			h.logger.Warn("invalid session attempt",
				"remote_addr", r.RemoteAddr,
				"token", logging.MaskToken(token))
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials,
				"Invalid or expired session")
			return
		}

		ctx := auth.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header.
// Returns "" when the header is missing or not a Bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

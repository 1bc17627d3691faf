package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/facturia/facturia/internal/storage"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 500
)

// ActionLogResponse represents an audit entry in API responses.
type ActionLogResponse struct {
	LogID       int64  `json:"log_id"`
	UserID      *int64 `json:"user_id,omitempty"`
	UserEmail   string `json:"user_email,omitempty"`
	ActionType  string `json:"action_type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

func actionLogResponse(entry *storage.ActionLog) ActionLogResponse {
	resp := ActionLogResponse{
		LogID:       entry.LogID,
		UserID:      entry.UserID,
		ActionType:  entry.ActionType,
		Description: entry.Description,
		Timestamp:   entry.Timestamp.UTC().Format(time.RFC3339),
	}
	if entry.UserEmail != nil {
		resp.UserEmail = *entry.UserEmail
	}
	return resp
}

// HandleListLogs returns the audit trail, newest first
// GET /api/logs?limit=N
func (h *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, ErrCodeValidation, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	entries, err := h.storage.ListActionLogs(r.Context(), limit)
	if err != nil {
		// The in-memory ring still holds recent entries when the durable
		// table is unreadable; degraded beats empty for an audit view.
		h.logger.Error("failed to list action logs, serving in-memory ring", "error", err)
		entries = h.audit.Recent()
		if len(entries) > limit {
			entries = entries[:limit]
		}
	}

	response := make([]ActionLogResponse, len(entries))
	for i, entry := range entries {
		response[i] = actionLogResponse(entry)
	}

	writeJSON(w, http.StatusOK, response)
}

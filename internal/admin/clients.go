package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facturia/facturia/internal/storage"
)

// ClientRequest is the request body for creating and updating clients.
type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (req *ClientRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		return "Client name is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return "A valid client email is required"
	}
	return ""
}

// ClientResponse represents a client in API responses.
type ClientResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func clientResponse(c *storage.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleListClients returns all clients
// GET /api/clients
func (h *Handler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.storage.ListClients(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]ClientResponse, len(clients))
	for i, c := range clients {
		response[i] = clientResponse(c)
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleGetClient returns a single client
// GET /api/clients/{id}
func (h *Handler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	client, err := h.storage.GetClient(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	writeJSON(w, http.StatusOK, clientResponse(client))
}

// HandleCreateClient creates a new client
// POST /api/clients
// Body: {"name": "...", "email": "...", "phone": "...", "address": "..."}
func (h *Handler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	client, err := h.storage.CreateClient(r.Context(), req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Nuevo cliente '%s' creado.", client.Name))
	h.logger.Info("client created", "id", client.ID, "name", client.Name)

	writeJSON(w, http.StatusCreated, clientResponse(client))
}

// HandleUpdateClient updates an existing client
// PUT /api/clients/{id}
func (h *Handler) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	client, err := h.storage.UpdateClient(r.Context(), id, req.Name, req.Email, req.Phone, req.Address)
	if err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Cliente '%s' actualizado.", client.Name))
	h.logger.Info("client updated", "id", client.ID)

	writeJSON(w, http.StatusOK, clientResponse(client))
}

// HandleDeleteClient deletes a client. Blocked while the client still has
// projects; report tokens are left in place and go stale on their own.
// DELETE /api/clients/{id}
func (h *Handler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Fetch first so the audit entry can name the client
	client, err := h.storage.GetClient(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	if err := h.storage.DeleteClient(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			h.audit.Record(r.Context(), "",
				fmt.Sprintf("Intento fallido de eliminar cliente '%s' con proyectos asociados.", client.Name))
		}
		h.writeStorageError(w, err, "Client not found",
			"Client still has projects; delete or reassign them first")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Cliente '%s' eliminado.", client.Name))
	h.logger.Info("client deleted", "id", id)

	w.WriteHeader(http.StatusNoContent)
}

// ReportLinkResponse is the response for POST /api/clients/{id}/report-link.
// The token appears here once; only its hash is stored.
type ReportLinkResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// HandleIssueReportLink mints a time-boxed share link for a client report
// POST /api/clients/{id}/report-link
func (h *Handler) HandleIssueReportLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	issued, err := h.issuer.Issue(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Client not found")
			return
		}
		h.logger.Error("failed to issue report link", "error", err, "client_id", id)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	client, err := h.storage.GetClient(r.Context(), id)
	clientName := id
	if err == nil {
		clientName = client.Name
	}

	h.audit.Record(r.Context(), "",
		fmt.Sprintf("Enlace de informe generado para el cliente '%s'.", clientName))

	issuedCount, err := h.storage.CountAccessTokensForClient(r.Context(), id)
	if err != nil {
		issuedCount = -1
	}
	h.logger.Info("report link issued",
		"client_id", id,
		"expires_at", issued.ExpiresAt,
		"links_issued_total", issuedCount)

	writeJSON(w, http.StatusCreated, ReportLinkResponse{
		Token:     issued.Token,
		URL:       issued.URL,
		ExpiresAt: issued.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facturia/facturia/internal/money"
	"github.com/facturia/facturia/internal/storage"
)

// ProjectRequest is the request body for creating and updating projects.
type ProjectRequest struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	TotalValue money.Cents `json:"total_value"`
	Status     string      `json:"status"`
}

func (req *ProjectRequest) validate() string {
	req.ClientID = strings.TrimSpace(req.ClientID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ClientID == "" {
		return "client_id is required"
	}
	if req.Name == "" {
		return "Project name is required"
	}
	if req.TotalValue <= 0 {
		return "total_value must be greater than zero"
	}
	if req.Status == "" {
		req.Status = string(storage.ProjectActive)
	}
	if req.Status != string(storage.ProjectActive) && req.Status != string(storage.ProjectClosed) {
		return "status must be active or closed"
	}
	return ""
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID         string      `json:"id"`
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	TotalValue money.Cents `json:"total_value"`
	Status     string      `json:"status"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at"`
}

func projectResponse(p *storage.Project) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID,
		ClientID:   p.ClientID,
		Name:       p.Name,
		TotalValue: p.TotalValue,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleListProjects returns projects, optionally filtered by client
// GET /api/projects?client_id=...
func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	var (
		projects []*storage.Project
		err      error
	)
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		projects, err = h.storage.ListProjectsByClient(r.Context(), clientID)
	} else {
		projects, err = h.storage.ListProjects(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = projectResponse(p)
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleGetProject returns a single project
// GET /api/projects/{id}
func (h *Handler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	project, err := h.storage.GetProject(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "Project not found", "")
		return
	}

	writeJSON(w, http.StatusOK, projectResponse(project))
}

// HandleCreateProject creates a new project
// POST /api/projects
// Body: {"client_id": "...", "name": "...", "total_value": "1000.00", "status": "active"}
func (h *Handler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	// The client must exist before the row is written
	if _, err := h.storage.GetClient(r.Context(), req.ClientID); err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	project, err := h.storage.CreateProject(r.Context(), req.ClientID, req.Name, req.TotalValue, storage.ProjectStatus(req.Status))
	if err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Nuevo proyecto '%s' creado.", project.Name))
	h.logger.Info("project created", "id", project.ID, "client_id", project.ClientID)

	writeJSON(w, http.StatusCreated, projectResponse(project))
}

// HandleUpdateProject updates an existing project
// PUT /api/projects/{id}
func (h *Handler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	if _, err := h.storage.GetClient(r.Context(), req.ClientID); err != nil {
		h.writeStorageError(w, err, "Client not found", "")
		return
	}

	project, err := h.storage.UpdateProject(r.Context(), id, req.ClientID, req.Name, req.TotalValue, storage.ProjectStatus(req.Status))
	if err != nil {
		h.writeStorageError(w, err, "Project not found", "")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Proyecto '%s' actualizado.", project.Name))
	h.logger.Info("project updated", "id", project.ID)

	writeJSON(w, http.StatusOK, projectResponse(project))
}

// HandleDeleteProject deletes a project. Blocked while payments reference it.
// DELETE /api/projects/{id}
func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	project, err := h.storage.GetProject(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "Project not found", "")
		return
	}

	if err := h.storage.DeleteProject(r.Context(), id); err != nil {
		h.writeStorageError(w, err, "Project not found",
			"Project still has payments; delete them first")
		return
	}

	h.audit.Record(r.Context(), "", fmt.Sprintf("Proyecto '%s' eliminado.", project.Name))
	h.logger.Info("project deleted", "id", id)

	w.WriteHeader(http.StatusNoContent)
}

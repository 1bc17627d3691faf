// Package testenv provides a reusable full-stack test environment: an
// in-process server over a real SQLite database, with helpers for the
// common admin workflows so end-to-end tests read as scenarios.
package testenv

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/facturia/facturia/internal/admin"
	"github.com/facturia/facturia/internal/audit"
	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/report"
	"github.com/facturia/facturia/internal/storage"
)

// AdminEmail is the account registered by Setup.
const AdminEmail = "e2e@example.com"

// AdminPassword is the password for the account registered by Setup.
const AdminPassword = "e2e-test-password"

// TestEnv is a running server plus the credentials to drive it.
type TestEnv struct {
	// BaseURL is the root of the running test server.
	BaseURL string
	// SessionToken authenticates admin API requests.
	SessionToken string
	// Storage allows direct database assertions.
	Storage *storage.SQLiteStorage
	// Handler exposes clock overrides for expiry scenarios.
	Handler *admin.Handler

	server *httptest.Server
}

// Setup builds the whole service against a file-backed database in a
// temp dir, registers an admin, and logs in. Cleanup is automatic.
func Setup(t *testing.T) *TestEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "e2e.db")
	store, err := storage.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := auth.NewSessionService(store, 24*time.Hour)
	recorder := audit.NewRecorder(store, logger)
	resolver := report.NewResolver(store)

	ctx := context.Background()
	if _, err := sessions.Register(ctx, AdminEmail, AdminPassword); err != nil {
		t.Fatalf("failed to register admin: %v", err)
	}
	token, _, err := sessions.Login(ctx, AdminEmail, AdminPassword)
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}

	// The issuer needs the final base URL, so start the server first
	// with a placeholder handler and swap the router in below.
	server := httptest.NewUnstartedServer(nil)
	server.Start()

	issuer := report.NewIssuer(store, server.URL, 24*time.Hour)
	handler := admin.NewHandler(store, logLevel, logger, recorder, sessions, issuer, resolver)
	server.Config.Handler = handler.NewRouter()

	env := &TestEnv{
		BaseURL:      server.URL,
		SessionToken: token,
		Storage:      store,
		Handler:      handler,
		server:       server,
	}

	t.Cleanup(func() {
		server.Close()
		_ = store.Close()
	})

	return env
}

// Do issues a request against the test server. A nil body sends no payload;
// a string body is sent raw; anything else is JSON-encoded. The caller's
// session token is attached unless authenticated is false.
func (e *TestEnv) Do(t *testing.T, method, path string, body any, authenticated bool) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reqBody = bytes.NewBufferString(raw)
		} else {
			encoded, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("failed to marshal body: %v", err)
			}
			reqBody = bytes.NewBuffer(encoded)
		}
	}

	req, err := http.NewRequest(method, e.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+e.SessionToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// Decode reads a JSON response into v, closing the body, and fails the
// test unless the status matches.
func Decode(t *testing.T, resp *http.Response, wantStatus int, v any) {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body: %s)", resp.StatusCode, wantStatus, raw)
	}
	if v == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// CreateClient provisions a client and returns its ID.
func (e *TestEnv) CreateClient(t *testing.T, name, email string) string {
	t.Helper()
	resp := e.Do(t, http.MethodPost, "/api/clients", map[string]string{
		"name":  name,
		"email": email,
	}, true)
	var created struct {
		ID string `json:"id"`
	}
	Decode(t, resp, http.StatusCreated, &created)
	return created.ID
}

// CreateProject provisions a project and returns its ID.
func (e *TestEnv) CreateProject(t *testing.T, clientID, name, totalValue, status string) string {
	t.Helper()
	resp := e.Do(t, http.MethodPost, "/api/projects", map[string]string{
		"client_id":   clientID,
		"name":        name,
		"total_value": totalValue,
		"status":      status,
	}, true)
	var created struct {
		ID string `json:"id"`
	}
	Decode(t, resp, http.StatusCreated, &created)
	return created.ID
}

// CreatePayment records a payment and returns its ID.
func (e *TestEnv) CreatePayment(t *testing.T, projectID, amount, date, status string) string {
	t.Helper()
	resp := e.Do(t, http.MethodPost, "/api/payments", map[string]string{
		"project_id":   projectID,
		"amount":       amount,
		"payment_date": date,
		"status":       status,
	}, true)
	var created struct {
		ID string `json:"id"`
	}
	Decode(t, resp, http.StatusCreated, &created)
	return created.ID
}

// IssueReportLink mints a share link for the client and returns the token.
func (e *TestEnv) IssueReportLink(t *testing.T, clientID string) string {
	t.Helper()
	resp := e.Do(t, http.MethodPost, "/api/clients/"+clientID+"/report-link", nil, true)
	var issued struct {
		Token string `json:"token"`
	}
	Decode(t, resp, http.StatusCreated, &issued)
	return issued.Token
}

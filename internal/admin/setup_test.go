package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/facturia/facturia/internal/audit"
	"github.com/facturia/facturia/internal/auth"
	"github.com/facturia/facturia/internal/report"
	"github.com/facturia/facturia/internal/storage"
)

// testServer wires a full handler over an in-memory database with one
// registered admin and a live session.
type testServer struct {
	server       *httptest.Server
	handler      *Handler
	storage      *storage.SQLiteStorage
	sessionToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	logLevel := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := auth.NewSessionService(store, 24*time.Hour)
	recorder := audit.NewRecorder(store, logger)
	issuer := report.NewIssuer(store, "http://localhost:8080", 24*time.Hour)
	resolver := report.NewResolver(store)

	h := NewHandler(store, logLevel, logger, recorder, sessions, issuer, resolver)

	ctx := context.Background()
	if _, err := sessions.Register(ctx, "admin@example.com", "correct-horse"); err != nil {
		t.Fatalf("failed to register admin: %v", err)
	}
	token, _, err := sessions.Login(ctx, "admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}

	server := httptest.NewServer(h.NewRouter())

	ts := &testServer{
		server:       server,
		handler:      h,
		storage:      store,
		sessionToken: token,
	}
	t.Cleanup(ts.close)
	return ts
}

func (ts *testServer) close() {
	ts.server.Close()
	_ = ts.storage.Close()
}

// doRequest makes a request to the test server. A non-empty token is sent
// as a Bearer credential.
func (ts *testServer) doRequest(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		if str, ok := body.(string); ok {
			reqBody = bytes.NewBufferString(str)
		} else {
			jsonBytes, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("failed to marshal body: %v", err)
			}
			reqBody = bytes.NewBuffer(jsonBytes)
		}
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// decodeBody decodes a JSON response body into v and closes the body.
func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// createClient inserts a client through the API and returns its ID.
func (ts *testServer) createClient(t *testing.T, name, email string) string {
	t.Helper()
	resp := ts.doRequest(t, http.MethodPost, "/api/clients", ClientRequest{
		Name:  name,
		Email: email,
	}, ts.sessionToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("createClient status = %d, want 201", resp.StatusCode)
	}
	var created ClientResponse
	decodeBody(t, resp, &created)
	return created.ID
}

// createProject inserts a project through the API and returns its ID.
func (ts *testServer) createProject(t *testing.T, clientID, name, totalValue string) string {
	t.Helper()
	resp := ts.doRequest(t, http.MethodPost, "/api/projects", map[string]any{
		"client_id":   clientID,
		"name":        name,
		"total_value": totalValue,
		"status":      "active",
	}, ts.sessionToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("createProject status = %d, want 201", resp.StatusCode)
	}
	var created ProjectResponse
	decodeBody(t, resp, &created)
	return created.ID
}

package admin

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/facturia/facturia/internal/report"
)

func TestIssueAndServeReport(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	clientID := ts.createClient(t, "Acme", "a@acme.example")
	projectID := ts.createProject(t, clientID, "Website", "1000.00")

	resp := ts.doRequest(t, http.MethodPost, "/api/payments", map[string]any{
		"project_id":   projectID,
		"amount":       "400.00",
		"payment_date": "2024-03-01",
		"status":       "completed",
	}, ts.sessionToken)
	resp.Body.Close() //nolint:errcheck

	// Issue a share link
	resp = ts.doRequest(t, http.MethodPost, "/api/clients/"+clientID+"/report-link", nil, ts.sessionToken)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("issue status = %d, want 201", resp.StatusCode)
	}
	var link ReportLinkResponse
	decodeBody(t, resp, &link)
	if link.Token == "" {
		t.Fatal("issued link has empty token")
	}
	if !strings.HasSuffix(link.URL, "/report/"+link.Token) {
		t.Errorf("URL %q does not end with the token path", link.URL)
	}

	// Redeem without any authentication
	resp = ts.doRequest(t, http.MethodGet, "/report/"+link.Token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d, want 200", resp.StatusCode)
	}
	var rep report.ClientReport
	decodeBody(t, resp, &rep)
	if rep.Client.Name != "Acme" {
		t.Errorf("report client = %q, want Acme", rep.Client.Name)
	}
	if rep.Totals.TotalBilled.String() != "1000.00" {
		t.Errorf("total billed = %s, want 1000.00", rep.Totals.TotalBilled)
	}
	if rep.Totals.TotalPaid.String() != "400.00" {
		t.Errorf("total paid = %s, want 400.00", rep.Totals.TotalPaid)
	}
	if rep.Totals.TotalPending.String() != "600.00" {
		t.Errorf("total pending = %s, want 600.00", rep.Totals.TotalPending)
	}
}

func TestReportUnknownToken(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp := ts.doRequest(t, http.MethodGet, "/report/"+strings.Repeat("ab", 32), nil, "")
	var apiErr APIError
	decodeBody(t, resp, &apiErr)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if apiErr.Error != ErrCodeTokenInvalid {
		t.Errorf("code = %q, want %q", apiErr.Error, ErrCodeTokenInvalid)
	}
	if apiErr.Hint == "" {
		t.Error("expected a hint on invalid token response")
	}
}

func TestReportExpiredToken(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	clientID := ts.createClient(t, "Acme", "a@acme.example")

	resp := ts.doRequest(t, http.MethodPost, "/api/clients/"+clientID+"/report-link", nil, ts.sessionToken)
	var link ReportLinkResponse
	decodeBody(t, resp, &link)

	// Move the resolver past the expiry
	ts.handler.resolver.SetClock(func() time.Time {
		return time.Now().Add(25 * time.Hour)
	})

	resp = ts.doRequest(t, http.MethodGet, "/report/"+link.Token, nil, "")
	var apiErr APIError
	decodeBody(t, resp, &apiErr)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("status = %d, want 410", resp.StatusCode)
	}
	if apiErr.Error != ErrCodeTokenExpired {
		t.Errorf("code = %q, want %q", apiErr.Error, ErrCodeTokenExpired)
	}
	if !strings.Contains(apiErr.Hint, "new link") {
		t.Errorf("hint = %q, want a renewal hint", apiErr.Hint)
	}

	resp = ts.doRequest(t, http.MethodGet, "/api/logs", nil, ts.sessionToken)
	var entries []ActionLogResponse
	decodeBody(t, resp, &entries)
	if len(entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	if entries[0].Description != "Intento de acceso fallido al reporte. Razón: Token expirado." {
		t.Errorf("newest entry = %q, want expired-access audit record", entries[0].Description)
	}
}

func TestReportAccessIsAudited(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	clientID := ts.createClient(t, "Acme", "a@acme.example")

	resp := ts.doRequest(t, http.MethodPost, "/api/clients/"+clientID+"/report-link", nil, ts.sessionToken)
	var link ReportLinkResponse
	decodeBody(t, resp, &link)

	resp = ts.doRequest(t, http.MethodGet, "/report/"+link.Token, nil, "")
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d, want 200", resp.StatusCode)
	}

	resp = ts.doRequest(t, http.MethodGet, "/api/logs", nil, ts.sessionToken)
	var entries []ActionLogResponse
	decodeBody(t, resp, &entries)
	if len(entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	want := fmt.Sprintf("Acceso al reporte del cliente 'Acme' (ID: %s).", clientID)
	if entries[0].Description != want {
		t.Errorf("newest entry = %q, want %q", entries[0].Description, want)
	}
	if entries[0].ActionType != "client" {
		t.Errorf("action type = %q, want client", entries[0].ActionType)
	}
	// Anonymous access: no admin attached to the record
	if entries[0].UserEmail != "" {
		t.Errorf("user email = %q, want empty", entries[0].UserEmail)
	}
}

func TestFailedReportAccessIsAudited(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp := ts.doRequest(t, http.MethodGet, "/report/"+strings.Repeat("cd", 32), nil, "")
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	resp = ts.doRequest(t, http.MethodGet, "/api/logs", nil, ts.sessionToken)
	var entries []ActionLogResponse
	decodeBody(t, resp, &entries)
	if len(entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	if entries[0].Description != "Intento de acceso fallido al reporte. Razón: Token no válido." {
		t.Errorf("newest entry = %q, want failed-access audit record", entries[0].Description)
	}
	if entries[0].ActionType != "token" {
		t.Errorf("action type = %q, want token", entries[0].ActionType)
	}
}

func TestReportLinkUnknownClient(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	resp := ts.doRequest(t, http.MethodPost,
		"/api/clients/a2f6e8d0-0000-4000-8000-000000000000/report-link", nil, ts.sessionToken)
	var apiErr APIError
	decodeBody(t, resp, &apiErr)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if apiErr.Error != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", apiErr.Error, ErrCodeNotFound)
	}
}

package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facturia/facturia/tests/testenv"
)

// TestFullBillingFlow walks the whole lifecycle: client and project setup,
// payments against the project, a share link, and the public report a
// client sees through it.
func TestFullBillingFlow(t *testing.T) {
	env := testenv.Setup(t)

	clientID := env.CreateClient(t, "Estudio Vega", "facturas@vega.example")
	webID := env.CreateProject(t, clientID, "Tienda online", "3000.00", "active")
	brandID := env.CreateProject(t, clientID, "Identidad visual", "1200.00", "closed")

	env.CreatePayment(t, webID, "1000.00", "2024-02-10", "completed")
	env.CreatePayment(t, webID, "500.00", "2024-03-10", "pending")
	env.CreatePayment(t, brandID, "1200.00", "2024-01-20", "completed")

	token := env.IssueReportLink(t, clientID)

	resp := env.Do(t, http.MethodGet, "/report/"+token, nil, false)
	var rep struct {
		Client struct {
			Name string `json:"name"`
		} `json:"client"`
		ActiveProjects []struct {
			Name    string `json:"name"`
			Paid    string `json:"paid"`
			Pending string `json:"pending"`
		} `json:"active_projects"`
		ClosedProjects []struct {
			Name    string `json:"name"`
			Pending string `json:"pending"`
		} `json:"closed_projects"`
		Payments []struct {
			ProjectName string `json:"project_name"`
			Amount      string `json:"amount"`
		} `json:"payments"`
		Totals struct {
			TotalBilled    string `json:"total_billed"`
			TotalPaid      string `json:"total_paid"`
			TotalPending   string `json:"total_pending"`
			ActiveProjects int    `json:"active_projects"`
		} `json:"totals"`
	}
	testenv.Decode(t, resp, http.StatusOK, &rep)

	require.Equal(t, "Estudio Vega", rep.Client.Name)
	require.Len(t, rep.ActiveProjects, 1)
	require.Len(t, rep.ClosedProjects, 1)

	// Only completed payments count toward paid totals
	require.Equal(t, "1000.00", rep.ActiveProjects[0].Paid)
	require.Equal(t, "2000.00", rep.ActiveProjects[0].Pending)
	require.Equal(t, "0.00", rep.ClosedProjects[0].Pending)

	require.Equal(t, "4200.00", rep.Totals.TotalBilled)
	require.Equal(t, "2200.00", rep.Totals.TotalPaid)
	require.Equal(t, "2000.00", rep.Totals.TotalPending)
	require.Equal(t, 1, rep.Totals.ActiveProjects)

	// All three payments appear in the ledger with project names resolved
	require.Len(t, rep.Payments, 3)
	for _, p := range rep.Payments {
		require.NotEmpty(t, p.ProjectName, "ledger row missing project name: %+v", p)
	}
}

// TestDeleteGuardsAcrossTheStack verifies the dependent-row guards through
// the public API, bottom-up: payments block project deletes, projects block
// client deletes, and removing dependents unblocks each level.
func TestDeleteGuardsAcrossTheStack(t *testing.T) {
	env := testenv.Setup(t)

	clientID := env.CreateClient(t, "Acme", "a@acme.example")
	projectID := env.CreateProject(t, clientID, "Website", "1000.00", "active")
	paymentID := env.CreatePayment(t, projectID, "100.00", "2024-04-01", "completed")

	resp := env.Do(t, http.MethodDelete, "/api/projects/"+projectID, nil, true)
	testenv.Decode(t, resp, http.StatusConflict, nil)

	resp = env.Do(t, http.MethodDelete, "/api/clients/"+clientID, nil, true)
	testenv.Decode(t, resp, http.StatusConflict, nil)

	resp = env.Do(t, http.MethodDelete, "/api/payments/"+paymentID, nil, true)
	testenv.Decode(t, resp, http.StatusNoContent, nil)

	resp = env.Do(t, http.MethodDelete, "/api/projects/"+projectID, nil, true)
	testenv.Decode(t, resp, http.StatusNoContent, nil)

	resp = env.Do(t, http.MethodDelete, "/api/clients/"+clientID, nil, true)
	testenv.Decode(t, resp, http.StatusNoContent, nil)
}

// TestAuditTrailForWorkflow verifies the audit log captures the session and
// data mutations in classifier vocabulary.
func TestAuditTrailForWorkflow(t *testing.T) {
	env := testenv.Setup(t)

	// A login through the HTTP surface, so the trail records it
	resp := env.Do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    testenv.AdminEmail,
		"password": testenv.AdminPassword,
	}, false)
	testenv.Decode(t, resp, http.StatusOK, nil)

	clientID := env.CreateClient(t, "Acme", "a@acme.example")
	env.IssueReportLink(t, clientID)

	resp = env.Do(t, http.MethodGet, "/api/logs", nil, true)
	var entries []struct {
		ActionType  string `json:"action_type"`
		Description string `json:"description"`
		UserEmail   string `json:"user_email"`
	}
	testenv.Decode(t, resp, http.StatusOK, &entries)

	byType := map[string]int{}
	for _, e := range entries {
		byType[e.ActionType]++
	}

	require.NotZero(t, byType["create"], "no create entries in audit trail")
	require.NotZero(t, byType["token"], "no token entry for the issued report link")
	require.NotZero(t, byType["login"], "no login entry in audit trail")

	// Newest entry is the link issuance, attributed to the admin
	require.Equal(t, "token", entries[0].ActionType)
	require.Equal(t, testenv.AdminEmail, entries[0].UserEmail)
}

// TestStaleLinkAfterClientRemoval verifies a link issued for a client that
// is later deleted resolves as invalid rather than erroring.
func TestStaleLinkAfterClientRemoval(t *testing.T) {
	env := testenv.Setup(t)

	clientID := env.CreateClient(t, "Acme", "a@acme.example")
	token := env.IssueReportLink(t, clientID)

	resp := env.Do(t, http.MethodDelete, "/api/clients/"+clientID, nil, true)
	testenv.Decode(t, resp, http.StatusNoContent, nil)

	resp = env.Do(t, http.MethodGet, "/report/"+token, nil, false)
	var apiErr struct {
		Error string `json:"error"`
	}
	testenv.Decode(t, resp, http.StatusNotFound, &apiErr)
	require.Equal(t, "token_invalid", apiErr.Error)
}

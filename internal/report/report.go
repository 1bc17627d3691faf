// Package report implements the client report access-token lifecycle and the
// derived-financials computation behind the public report endpoint.
package report

import (
	"sort"

	"github.com/facturia/facturia/internal/money"
	"github.com/facturia/facturia/internal/storage"
)

// maxAddressDisplay is the display cap for client addresses; longer values
// are truncated with an ellipsis in the report view.
const maxAddressDisplay = 80

// ClientSummary is the client header of a report.
type ClientSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// ProjectLine is a project row with its derived balance attached.
// Pending is signed: an overpaid project shows a negative pending balance.
type ProjectLine struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Status     string      `json:"status"`
	TotalValue money.Cents `json:"total_value"`
	Paid       money.Cents `json:"paid"`
	Pending    money.Cents `json:"pending"`
}

// PaymentLine is a payment ledger row.
type PaymentLine struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Amount      money.Cents `json:"amount"`
	PaymentDate string      `json:"payment_date"`
	Status      string      `json:"status"`
}

// Totals are the report-level aggregates.
type Totals struct {
	TotalBilled    money.Cents `json:"total_billed"`
	TotalPaid      money.Cents `json:"total_paid"`
	TotalPending   money.Cents `json:"total_pending"`
	ActiveProjects int         `json:"active_projects"`
}

// ClientReport is the aggregated, read-only view returned to a token holder.
type ClientReport struct {
	Client         ClientSummary `json:"client"`
	ActiveProjects []ProjectLine `json:"active_projects"`
	ClosedProjects []ProjectLine `json:"closed_projects"`
	Payments       []PaymentLine `json:"payments"`
	Totals         Totals        `json:"totals"`
}

// Build derives a ClientReport from a snapshot of the client's projects and
// payments. Pure: it never mutates its inputs, and identical snapshots
// produce identical reports (ordering included).
func Build(client *storage.Client, projects []*storage.Project, payments []*storage.Payment) *ClientReport {
	report := &ClientReport{
		Client: ClientSummary{
			ID:      client.ID,
			Name:    client.Name,
			Email:   client.Email,
			Phone:   client.Phone,
			Address: truncateAddress(client.Address),
		},
		ActiveProjects: make([]ProjectLine, 0),
		ClosedProjects: make([]ProjectLine, 0),
		Payments:       make([]PaymentLine, 0),
	}

	// Completed payment totals per project
	paidByProject := make(map[string]money.Cents, len(projects))
	for _, p := range payments {
		if p.Status == storage.PaymentCompleted {
			paidByProject[p.ProjectID] += p.Amount
		}
	}

	// Deterministic project order: name, then ID for ties
	sorted := make([]*storage.Project, len(projects))
	copy(sorted, projects)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	projectNames := make(map[string]string, len(sorted))
	for _, p := range sorted {
		projectNames[p.ID] = p.Name
		paid := paidByProject[p.ID]
		line := ProjectLine{
			ID:         p.ID,
			Name:       p.Name,
			Status:     string(p.Status),
			TotalValue: p.TotalValue,
			Paid:       paid,
			Pending:    p.TotalValue - paid,
		}

		report.Totals.TotalBilled += p.TotalValue
		report.Totals.TotalPaid += line.Paid
		report.Totals.TotalPending += line.Pending

		if p.Status == storage.ProjectActive {
			report.Totals.ActiveProjects++
			report.ActiveProjects = append(report.ActiveProjects, line)
		} else {
			report.ClosedProjects = append(report.ClosedProjects, line)
		}
	}

	// Payment ledger: date descending, ID for ties
	ledger := make([]*storage.Payment, len(payments))
	copy(ledger, payments)
	sort.Slice(ledger, func(i, j int) bool {
		if !ledger[i].PaymentDate.Equal(ledger[j].PaymentDate) {
			return ledger[i].PaymentDate.After(ledger[j].PaymentDate)
		}
		return ledger[i].ID < ledger[j].ID
	})
	for _, p := range ledger {
		report.Payments = append(report.Payments, PaymentLine{
			ID:          p.ID,
			ProjectID:   p.ProjectID,
			ProjectName: projectNames[p.ProjectID],
			Amount:      p.Amount,
			PaymentDate: p.PaymentDate.Format("2006-01-02"),
			Status:      string(p.Status),
		})
	}

	return report
}

func truncateAddress(address string) string {
	runes := []rune(address)
	if len(runes) <= maxAddressDisplay {
		return address
	}
	return string(runes[:maxAddressDisplay]) + "…"
}

package report

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/facturia/facturia/internal/money"
	"github.com/facturia/facturia/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testClient() *storage.Client {
	return &storage.Client{ID: "c1", Name: "Acme", Email: "billing@acme.test"}
}

func TestBuildBalances(t *testing.T) {
	t.Parallel()

	projects := []*storage.Project{
		{ID: "p1", ClientID: "c1", Name: "Website", TotalValue: 100000, Status: storage.ProjectActive},
		{ID: "p2", ClientID: "c1", Name: "Branding", TotalValue: 50000, Status: storage.ProjectClosed},
	}
	payments := []*storage.Payment{
		{ID: "pay1", ProjectID: "p1", Amount: 40000, PaymentDate: day(2026, 1, 10), Status: storage.PaymentCompleted},
		{ID: "pay2", ProjectID: "p1", Amount: 99999, PaymentDate: day(2026, 1, 11), Status: storage.PaymentPending},
		{ID: "pay3", ProjectID: "p2", Amount: 50000, PaymentDate: day(2026, 2, 1), Status: storage.PaymentCompleted},
	}

	r := Build(testClient(), projects, payments)

	if len(r.ActiveProjects) != 1 || len(r.ClosedProjects) != 1 {
		t.Fatalf("partition wrong: %d active, %d closed", len(r.ActiveProjects), len(r.ClosedProjects))
	}

	website := r.ActiveProjects[0]
	if website.Paid != 40000 {
		t.Errorf("pending payment counted: paid = %s", website.Paid)
	}
	if website.Pending != 60000 {
		t.Errorf("pending = %s, want 600.00", website.Pending)
	}

	branding := r.ClosedProjects[0]
	if branding.Pending != 0 {
		t.Errorf("fully paid project pending = %s, want 0.00", branding.Pending)
	}

	if r.Totals.TotalBilled != 150000 {
		t.Errorf("total billed = %s", r.Totals.TotalBilled)
	}
	if r.Totals.TotalPaid != 90000 {
		t.Errorf("total paid = %s", r.Totals.TotalPaid)
	}
	if r.Totals.TotalPending != 60000 {
		t.Errorf("total pending = %s", r.Totals.TotalPending)
	}
	if r.Totals.ActiveProjects != 1 {
		t.Errorf("active projects = %d", r.Totals.ActiveProjects)
	}
}

func TestBuildOverpaymentIsSigned(t *testing.T) {
	t.Parallel()

	projects := []*storage.Project{
		{ID: "p1", ClientID: "c1", Name: "Website", TotalValue: 10000, Status: storage.ProjectActive},
	}
	payments := []*storage.Payment{
		{ID: "pay1", ProjectID: "p1", Amount: 15000, PaymentDate: day(2026, 1, 10), Status: storage.PaymentCompleted},
	}

	r := Build(testClient(), projects, payments)

	// Signed everywhere, consistently
	if r.ActiveProjects[0].Pending != -5000 {
		t.Errorf("project pending = %s, want -50.00", r.ActiveProjects[0].Pending)
	}
	if r.Totals.TotalPending != -5000 {
		t.Errorf("total pending = %s, want -50.00", r.Totals.TotalPending)
	}
}

// TestBalanceIdentity is the property check: for randomized payment sets,
// pending + sum(completed) == totalValue per project, and report totals equal
// the per-project sums.
func TestBalanceIdentity(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	for iter := 0; iter < 200; iter++ {
		var projects []*storage.Project
		var payments []*storage.Payment

		nProjects := 1 + rng.Intn(5)
		for i := 0; i < nProjects; i++ {
			total := money.Cents(1 + rng.Intn(1_000_000))
			status := storage.ProjectActive
			if rng.Intn(2) == 0 {
				status = storage.ProjectClosed
			}
			p := &storage.Project{
				ID:         fmt.Sprintf("p%d", i),
				ClientID:   "c1",
				Name:       fmt.Sprintf("Project %d", i),
				TotalValue: total,
				Status:     status,
			}
			projects = append(projects, p)

			// Random payments summing at most totalValue for completed ones
			remaining := total
			for j := 0; j < rng.Intn(4) && remaining > 0; j++ {
				amount := money.Cents(1 + rng.Int63n(int64(remaining)))
				status := storage.PaymentCompleted
				if rng.Intn(3) == 0 {
					status = storage.PaymentPending
				} else {
					remaining -= amount
				}
				payments = append(payments, &storage.Payment{
					ID:          fmt.Sprintf("pay%d-%d", i, j),
					ProjectID:   p.ID,
					Amount:      amount,
					PaymentDate: day(2026, time.Month(1+rng.Intn(12)), 1+rng.Intn(28)),
					Status:      status,
				})
			}
		}

		r := Build(testClient(), projects, payments)

		var sumPaid, sumPending, sumBilled money.Cents
		for _, line := range append(append([]ProjectLine{}, r.ActiveProjects...), r.ClosedProjects...) {
			if line.Pending+line.Paid != line.TotalValue {
				t.Fatalf("iter %d: balance identity broken for %s: %s + %s != %s",
					iter, line.ID, line.Pending, line.Paid, line.TotalValue)
			}
			sumPaid += line.Paid
			sumPending += line.Pending
			sumBilled += line.TotalValue
		}
		if r.Totals.TotalPaid != sumPaid || r.Totals.TotalPending != sumPending || r.Totals.TotalBilled != sumBilled {
			t.Fatalf("iter %d: aggregate mismatch: totals %+v, sums paid=%s pending=%s billed=%s",
				iter, r.Totals, sumPaid, sumPending, sumBilled)
		}
	}
}

func TestBuildPaymentLedgerOrder(t *testing.T) {
	t.Parallel()

	projects := []*storage.Project{
		{ID: "p1", ClientID: "c1", Name: "Website", TotalValue: 100000, Status: storage.ProjectActive},
	}
	payments := []*storage.Payment{
		{ID: "pay-b", ProjectID: "p1", Amount: 100, PaymentDate: day(2026, 1, 10), Status: storage.PaymentCompleted},
		{ID: "pay-c", ProjectID: "p1", Amount: 200, PaymentDate: day(2026, 3, 1), Status: storage.PaymentCompleted},
		{ID: "pay-a", ProjectID: "p1", Amount: 300, PaymentDate: day(2026, 1, 10), Status: storage.PaymentPending},
	}

	r := Build(testClient(), projects, payments)

	if len(r.Payments) != 3 {
		t.Fatalf("expected 3 ledger rows, got %d", len(r.Payments))
	}
	if r.Payments[0].ID != "pay-c" {
		t.Errorf("newest payment not first: %q", r.Payments[0].ID)
	}
	// Date tie broken by ID for deterministic output
	if r.Payments[1].ID != "pay-a" || r.Payments[2].ID != "pay-b" {
		t.Errorf("tie-break order wrong: %q, %q", r.Payments[1].ID, r.Payments[2].ID)
	}
	if r.Payments[0].ProjectName != "Website" {
		t.Errorf("project name not joined: %q", r.Payments[0].ProjectName)
	}
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	projects := []*storage.Project{
		{ID: "p2", ClientID: "c1", Name: "Zeta", TotalValue: 100, Status: storage.ProjectActive},
		{ID: "p1", ClientID: "c1", Name: "Alpha", TotalValue: 200, Status: storage.ProjectActive},
	}
	payments := []*storage.Payment{
		{ID: "pay2", ProjectID: "p1", Amount: 10, PaymentDate: day(2026, 1, 1), Status: storage.PaymentCompleted},
		{ID: "pay1", ProjectID: "p2", Amount: 20, PaymentDate: day(2026, 2, 1), Status: storage.PaymentCompleted},
	}

	Build(testClient(), projects, payments)

	if projects[0].ID != "p2" || payments[0].ID != "pay2" {
		t.Errorf("Build reordered its input slices")
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	t.Parallel()

	r := Build(testClient(), nil, nil)

	if r.ActiveProjects == nil || r.ClosedProjects == nil || r.Payments == nil {
		t.Errorf("empty report should have empty slices, not nil")
	}
	if r.Totals != (Totals{}) {
		t.Errorf("empty snapshot totals = %+v", r.Totals)
	}
}

func TestAddressTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 100)
	c := &storage.Client{ID: "c1", Name: "Acme", Email: "a@b.test", Address: long}

	r := Build(c, nil, nil)

	if len([]rune(r.Client.Address)) != 81 {
		t.Errorf("address not truncated to 80+ellipsis: %d runes", len([]rune(r.Client.Address)))
	}
	if !strings.HasSuffix(r.Client.Address, "…") {
		t.Errorf("truncated address missing ellipsis")
	}

	// Short addresses pass through
	c.Address = "Calle Falsa 123"
	if got := Build(c, nil, nil).Client.Address; got != "Calle Falsa 123" {
		t.Errorf("short address changed: %q", got)
	}
}

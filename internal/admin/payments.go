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

// Payment dates older than this are rejected as data-entry mistakes.
const maxPaymentAge = 50 * 365 * 24 * time.Hour

const paymentDateLayout = "2006-01-02"

// PaymentRequest is the request body for creating and updating payments.
type PaymentRequest struct {
	ProjectID   string      `json:"project_id"`
	Amount      money.Cents `json:"amount"`
	PaymentDate string      `json:"payment_date"`
	Status      string      `json:"status"`
}

// validate checks the fields that need no storage access. The parsed date
// is returned so handlers do not parse twice.
func (req *PaymentRequest) validate(now time.Time) (time.Time, string) {
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	if req.ProjectID == "" {
		return time.Time{}, "project_id is required"
	}
	if req.Amount <= 0 {
		return time.Time{}, "amount must be greater than zero"
	}
	if req.Status == "" {
		req.Status = string(storage.PaymentCompleted)
	}
	if req.Status != string(storage.PaymentPending) && req.Status != string(storage.PaymentCompleted) {
		return time.Time{}, "status must be pending or completed"
	}

	date, err := time.Parse(paymentDateLayout, req.PaymentDate)
	if err != nil {
		return time.Time{}, "payment_date must be a YYYY-MM-DD date"
	}
	// Compare at date precision so a payment entered today is accepted
	// regardless of the time of day.
	today := now.UTC().Truncate(24 * time.Hour)
	if date.After(today) {
		return time.Time{}, "payment_date cannot be in the future"
	}
	if date.Before(now.Add(-maxPaymentAge)) {
		return time.Time{}, "payment_date is too far in the past"
	}
	return date, ""
}

// checkProjectLimits enforces the per-project money invariants before any
// row is written: the amount fits the project's total value, and completed
// payments never sum past it. excludeID skips the payment being updated.
func (h *Handler) checkProjectLimits(r *http.Request, req *PaymentRequest, excludeID string) (string, int) {
	project, err := h.storage.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		return "Project not found", http.StatusNotFound
	}

	if req.Amount > project.TotalValue {
		return fmt.Sprintf("amount %s exceeds the project total value %s",
			req.Amount, project.TotalValue), http.StatusBadRequest
	}

	if req.Status == string(storage.PaymentCompleted) {
		completed, err := h.storage.SumCompletedPayments(r.Context(), req.ProjectID, excludeID)
		if err != nil {
			h.logger.Error("failed to sum payments", "error", err, "project_id", req.ProjectID)
			return "Internal error", http.StatusInternalServerError
		}
		if completed+req.Amount > project.TotalValue {
			return fmt.Sprintf("completed payments would total %s, exceeding the project total value %s",
				completed+req.Amount, project.TotalValue), http.StatusBadRequest
		}
	}

	return "", 0
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	Amount      money.Cents `json:"amount"`
	PaymentDate string      `json:"payment_date"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
}

func paymentResponse(p *storage.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		ProjectID:   p.ProjectID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format(paymentDateLayout),
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleListPayments returns payments, optionally filtered by project
// GET /api/payments?project_id=...
func (h *Handler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		payments []*storage.Payment
		err      error
	)
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		payments, err = h.storage.ListPaymentsByProject(r.Context(), projectID)
	} else {
		payments, err = h.storage.ListPayments(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list payments", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		response[i] = paymentResponse(p)
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleGetPayment returns a single payment
// GET /api/payments/{id}
func (h *Handler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payment, err := h.storage.GetPayment(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err, "Payment not found", "")
		return
	}

	writeJSON(w, http.StatusOK, paymentResponse(payment))
}

// HandleCreatePayment validates and records a payment
// POST /api/payments
// Body: {"project_id": "...", "amount": "400.00", "payment_date": "2026-08-30", "status": "completed"}
func (h *Handler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}
	date, msg := req.validate(h.now())
	if msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	if msg, status := h.checkProjectLimits(r, &req, ""); msg != "" {
		code := ErrCodeValidation
		switch status {
		case http.StatusNotFound:
			code = ErrCodeNotFound
		case http.StatusInternalServerError:
			code = ErrCodeInternalError
		}
		WriteError(w, status, code, msg)
		return
	}

	payment, err := h.storage.CreatePayment(r.Context(), req.ProjectID, req.Amount, date, storage.PaymentStatus(req.Status))
	if err != nil {
		h.writeStorageError(w, err, "Project not found", "")
		return
	}

	h.audit.Record(r.Context(), "",
		fmt.Sprintf("Nuevo pago de %s registrado.", payment.Amount))
	h.logger.Info("payment created", "id", payment.ID, "project_id", payment.ProjectID, "amount", payment.Amount)

	writeJSON(w, http.StatusCreated, paymentResponse(payment))
}

// HandleUpdatePayment validates and updates a payment
// PUT /api/payments/{id}
func (h *Handler) HandleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON")
		return
	}
	date, msg := req.validate(h.now())
	if msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidation, msg)
		return
	}

	// Exclude this payment from the completed sum so raising or lowering
	// its own amount is judged against the other payments only.
	if msg, status := h.checkProjectLimits(r, &req, id); msg != "" {
		code := ErrCodeValidation
		switch status {
		case http.StatusNotFound:
			code = ErrCodeNotFound
		case http.StatusInternalServerError:
			code = ErrCodeInternalError
		}
		WriteError(w, status, code, msg)
		return
	}

	payment, err := h.storage.UpdatePayment(r.Context(), id, req.ProjectID, req.Amount, date, storage.PaymentStatus(req.Status))
	if err != nil {
		h.writeStorageError(w, err, "Payment not found", "")
		return
	}

	h.audit.Record(r.Context(), "", "Pago actualizado.")
	h.logger.Info("payment updated", "id", payment.ID)

	writeJSON(w, http.StatusOK, paymentResponse(payment))
}

// HandleDeletePayment deletes a payment
// DELETE /api/payments/{id}
func (h *Handler) HandleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.storage.DeletePayment(r.Context(), id); err != nil {
		h.writeStorageError(w, err, "Payment not found", "")
		return
	}

	h.audit.Record(r.Context(), "", "Pago eliminado.")
	h.logger.Info("payment deleted", "id", id)

	w.WriteHeader(http.StatusNoContent)
}

package admin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/facturia/facturia/internal/metrics"
	"github.com/facturia/facturia/internal/report"
)

// HandleClientReport serves the token-gated financial report. Expired and
// unknown tokens get distinct responses so a client with a stale link knows
// to ask for a fresh one.
// GET /report/{token}
func (h *Handler) HandleClientReport(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	clientReport, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrTokenExpired):
			metrics.RecordReportResolution("expired")
			h.audit.Record(r.Context(), "",
				"Intento de acceso fallido al reporte. Razón: Token expirado.")
			WriteErrorWithHint(w, http.StatusGone, ErrCodeTokenExpired,
				"This report link has expired",
				"Request a new link from your account manager")
		case errors.Is(err, report.ErrTokenInvalid):
			metrics.RecordReportResolution("invalid")
			h.audit.Record(r.Context(), "",
				"Intento de acceso fallido al reporte. Razón: Token no válido.")
			WriteErrorWithHint(w, http.StatusNotFound, ErrCodeTokenInvalid,
				"Report link not found",
				"Verify the link is complete and correct")
		default:
			metrics.RecordReportResolution("error")
			h.logger.Error("report resolution failed", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		}
		return
	}

	metrics.RecordReportResolution("ok")
	h.audit.Record(r.Context(), "", fmt.Sprintf("Acceso al reporte del cliente '%s' (ID: %s).",
		clientReport.Client.Name, clientReport.Client.ID))
	writeJSON(w, http.StatusOK, clientReport)
}

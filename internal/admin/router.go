package admin

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/facturia/facturia/internal/metrics"
	mw "github.com/facturia/facturia/internal/middleware"
)

// NewRouter creates the router with all routes.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(metrics.Middleware)
	r.Use(mw.HTTPLogging(h.logger))
	r.Use(chimiddleware.Recoverer)

	// Public endpoints (no auth)
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	// Token-gated client report
	r.Get("/report/{token}", h.HandleClientReport)

	// Session management
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.HandleRegister)
		r.Post("/login", h.HandleLogin)
		r.Post("/logout", h.HandleLogout)
	})

	// Admin API (session auth)
	r.Route("/api", func(r chi.Router) {
		r.Use(h.SessionAuthMiddleware)

		r.Get("/whoami", h.HandleWhoami)
		r.Post("/loglevel", h.HandleSetLogLevel)

		r.Get("/clients", h.HandleListClients)
		r.Post("/clients", h.HandleCreateClient)
		r.Get("/clients/{id}", h.HandleGetClient)
		r.Put("/clients/{id}", h.HandleUpdateClient)
		r.Delete("/clients/{id}", h.HandleDeleteClient)
		r.Post("/clients/{id}/report-link", h.HandleIssueReportLink)

		r.Get("/projects", h.HandleListProjects)
		r.Post("/projects", h.HandleCreateProject)
		r.Get("/projects/{id}", h.HandleGetProject)
		r.Put("/projects/{id}", h.HandleUpdateProject)
		r.Delete("/projects/{id}", h.HandleDeleteProject)

		r.Get("/payments", h.HandleListPayments)
		r.Post("/payments", h.HandleCreatePayment)
		r.Get("/payments/{id}", h.HandleGetPayment)
		r.Put("/payments/{id}", h.HandleUpdatePayment)
		r.Delete("/payments/{id}", h.HandleDeletePayment)

		r.Get("/logs", h.HandleListLogs)
	})

	return r
}

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"agency-budget-go/internal/config"
	"agency-budget-go/internal/transport/httpserver/handler"
	corsmw "agency-budget-go/internal/transport/httpserver/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers) http.Handler {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(corsmw.NewCORS(cfg.CORSOrigins))

	r.Route("/api", func(r chi.Router) {
		// The watch stream is long-lived; it stays outside the timed
		// group so the request timeout cannot tear the session down.
		if cfg.Realtime.Enabled {
			r.Get("/projects/watch", handlers.Watch)
		}

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))

			r.Get("/health", handlers.Health)

			r.Get("/projects", handlers.ListProjects)
			r.Post("/projects", handlers.CreateProject)
			r.Get("/projects/overview", handlers.Overview)
			r.Get("/projects/{id}", handlers.GetProject)
			r.Put("/projects/{id}", handlers.UpdateProject)
			r.Delete("/projects/{id}", handlers.DeleteProject)

			r.Get("/projects/{id}/summary", handlers.ProjectSummary)
			r.Get("/projects/{id}/export", handlers.ExportProject)

			r.Put("/projects/{id}/categories/{category}/items", handlers.ReplaceItems)
			r.Post("/projects/{id}/categories/{category}/items", handlers.AddItem)
			r.Put("/projects/{id}/categories/{category}/items/{item_id}", handlers.UpdateItem)
			r.Delete("/projects/{id}/categories/{category}/items/{item_id}", handlers.DeleteItem)

			r.Put("/projects/{id}/vat-rates/{category}", handlers.SetVatRate)

			r.Post("/projects/{id}/payments", handlers.AddPayment)
			r.Put("/projects/{id}/payments/{payment_id}", handlers.UpdatePayment)
			r.Delete("/projects/{id}/payments/{payment_id}", handlers.DeletePayment)

			r.Post("/projects/{id}/advances", handlers.AddAdvance)
			r.Put("/projects/{id}/advances/{advance_id}", handlers.UpdateAdvance)
			r.Delete("/projects/{id}/advances/{advance_id}", handlers.DeleteAdvance)

			r.Post("/projects/{id}/expenses", handlers.AddExpense)
			r.Put("/projects/{id}/expenses/{expense_id}", handlers.UpdateExpense)
			r.Delete("/projects/{id}/expenses/{expense_id}", handlers.DeleteExpense)
		})
	})

	return r
}

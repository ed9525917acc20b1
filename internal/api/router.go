package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID, middleware.RealIP, middleware.Recoverer, AccessLog(app.Logger))

	r.Get("/healthz", app.Health.LivenessHandler)
	r.Get("/readyz", app.Health.ReadinessHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/chains", app.Chains)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", app.CreateProject)
			r.Post("/validate", app.ValidateProject)
			r.Post("/import", app.ImportProject)
			r.Get("/{id}", app.GetProject)
			r.Get("/{id}/export", app.ExportProject)
			r.Get("/{id}/embed/{kind}", app.StoredProjectEmbed)
			r.Get("/{id}/transfers", app.ListTransfers)
		})

		r.Post("/embed/{kind}", app.EmbedProject)
		r.Post("/split", app.Split)
		r.Post("/donations", app.Donate)
		r.Get("/share", app.Share)
	})

	return r
}

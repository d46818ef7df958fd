package httpapi

import (
	"net/http"

	"sportscast/internal/http/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)

	r.Get("/v1/healthz", app.Health)

	r.Post("/v1/generate", app.Generate)
	r.Route("/v1/videos", func(r chi.Router) {
		r.Get("/{id}", app.VideoStatus)
	})
	r.Route("/v1/scripts", func(r chi.Router) {
		r.Get("/{id}", app.Script)
	})

	return r
}

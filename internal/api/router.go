package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mjashby/forage/internal/tracker"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *tracker.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog aliases.
	r.Get("/foods", h.ListFoods)

	// Matching.
	r.Post("/match", h.Match)

	// Event log.
	r.Get("/log", h.ListEvents)
	r.Post("/log", h.LogFoods)
	r.Delete("/log", h.ClearEvents)

	// Weekly aggregation.
	r.Get("/weeks", h.ListWeeks)
	r.Get("/weeks/current", h.CurrentWeek)

	// Settings.
	r.Get("/settings/week-start", h.GetWeekStart)
	r.Put("/settings/week-start", h.PutWeekStart)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// Package server exposes template lookups, plan generation and
// productions as a JSON API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultRequestTimeout = 30 * time.Second

// NewRouter mounts the API on a chi mux. Production requests run the full
// pipeline and are exempt from the request timeout.
func NewRouter(h *Handler, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(timeout))

			r.Get("/templates/channels", h.ListChannels)
			r.Get("/templates/channels/{key}", h.GetChannel)
			r.Get("/styles", h.ListStyles)
			r.Post("/styles/suggest", h.SuggestStyle)
			r.Post("/plans/gospel", h.GospelPlan)
			r.Post("/plans/{niche}", h.NichePlan)
			r.Get("/productions/{name}", h.GetProduction)
			r.Get("/automations/{kind}", h.GetAutomation)
		})

		r.Post("/productions", h.CreateProduction)
	})

	return r
}

package assistant

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers assistant routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", h.Ask)
		r.Get("/prompts", h.Prompts)
	})
}

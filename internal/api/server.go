package api

import (
	"net/http"
	"time"

	assistantapi "github.com/deanhq/portfolio-assistant/internal/api/assistant"
	"github.com/deanhq/portfolio-assistant/internal/api/docs"
	"github.com/deanhq/portfolio-assistant/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(assistantHandler *assistantapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(120 * time.Second)) // the pipeline may make three model calls

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	assistantapi.RegisterRoutes(r, assistantHandler)

	return r
}

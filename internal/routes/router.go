package routes

import (
	"net/http"

	"uav-logchat/flightdesk/internal/api"
	"uav-logchat/flightdesk/internal/logging"
	"uav-logchat/flightdesk/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the chi router for the upload, summary and chat API.
func RegisterRoutes(deps *api.Dependencies) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	handlers := api.NewHandlers(deps)

	r.Get("/", api.RootHandler())
	r.Get("/healthCheck", handlers.HealthCheck())

	RegisterAPIRoutes(r, handlers, deps)

	logging.Info("Router initialized", "cors_origins", len(deps.Config.CORSOrigins))
	return r
}

package routes

import (
	"uav-logchat/flightdesk/internal/api"
	"uav-logchat/flightdesk/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers the /api routes
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	r.Route("/api", func(a chi.Router) {
		a.Post("/upload", handlers.UploadLog())
		a.Get("/logs/{log_id}", handlers.GetLog())

		// Chat calls the language model, so it is throttled per client
		a.Group(func(chat chi.Router) {
			limiter := middleware.NewRateLimiter(deps.Config.ChatRateLimit, deps.Config.ChatRateBurst)
			chat.Use(limiter.Middleware)

			chat.Post("/chat/{log_id}", handlers.Chat())
			chat.Delete("/chat/{log_id}", handlers.ClearChat())
		})
	})
}

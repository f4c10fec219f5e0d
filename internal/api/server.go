package api

import (
	"net/http"
	"time"

	"github.com/futig/faq-assistant/internal/api/chat"
	"github.com/futig/faq-assistant/internal/api/docs"
	"github.com/futig/faq-assistant/internal/api/middleware"
	"github.com/futig/faq-assistant/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router.
// requestTimeout must leave room for the generative fallback call.
func SetupRouter(chatHandler *chat.Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(middleware.CORS)                       // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	chat.RegisterRoutes(r, chatHandler)

	return r
}

package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/chat-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.EndSession)
		r.Post("/{id}/turn", h.SubmitTurn)
		r.Post("/{id}/reset", h.ResetSession)
		r.Patch("/{id}/settings", h.UpdateSettings)
		r.Get("/{id}/transcript", h.GetTranscript)
	})
}

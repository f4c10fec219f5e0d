package handlers

import (
	"context"
)

// Handler route constants
const (
	RouteText     = "TEXT"
	RouteCommand  = "COMMAND"
	RouteCallback = "CALLBACK"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	CommandArgs  string
	CallbackData string
	CallbackID   string
}

// Handler defines the interface for route-specific handlers
type Handler interface {
	// Handle processes a message for this route
	Handle(ctx context.Context, msg *Message) error

	// GetRoute returns the route this handler manages
	GetRoute() string
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	route         string
	messageSender *MessageSender
}

// GetRoute implements Handler
func (h *BaseHandler) GetRoute() string {
	return h.route
}

// sendMessage is a convenience wrapper for messageSender.Send
func (h *BaseHandler) sendMessage(ctx context.Context, chatID int64, text string, markup interface{}) {
	if h.messageSender != nil {
		_ = h.messageSender.Send(ctx, chatID, text, markup)
	}
}

// validRoutes defines all valid handler routes
var validRoutes = map[string]bool{
	RouteText:     true,
	RouteCommand:  true,
	RouteCallback: true,
}

// IsValidRoute checks if a route is valid for handler registration
func IsValidRoute(route string) bool {
	_, ok := validRoutes[route]
	return ok
}

package state

import "context"

// Storage maps a Telegram chat to its conversation session
type Storage interface {
	GetSessionID(ctx context.Context, chatID int64) (string, bool)
	SetSessionID(ctx context.Context, chatID int64, sessionID string)
	DeleteSessionID(ctx context.Context, chatID int64)
}

package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// ChatSessionRepository maps a Telegram chat to its conversation session
type ChatSessionRepository interface {
	GetSessionID(ctx context.Context, chatID int64) (string, bool)
	SetSessionID(ctx context.Context, chatID int64, sessionID string)
	DeleteSessionID(ctx context.Context, chatID int64)
}

var _ ChatSessionRepository = &ChatSessionMemory{}

type ChatSessionMemory struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewChatSessionMemory uses the same TTL as the session store so a mapping never outlives its session for long
func NewChatSessionMemory(ttl, cleanupInterval time.Duration) *ChatSessionMemory {
	return &ChatSessionMemory{
		store: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (r *ChatSessionMemory) GetSessionID(_ context.Context, chatID int64) (string, bool) {
	value, ok := r.store.Get(chatKey(chatID))
	if !ok {
		return "", false
	}
	return value.(string), true
}

func (r *ChatSessionMemory) SetSessionID(_ context.Context, chatID int64, sessionID string) {
	r.store.Set(chatKey(chatID), sessionID, r.ttl)
}

func (r *ChatSessionMemory) DeleteSessionID(_ context.Context, chatID int64) {
	r.store.Delete(chatKey(chatID))
}

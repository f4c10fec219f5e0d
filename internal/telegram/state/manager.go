package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/futig/faq-assistant/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
)

// SessionStarter is the part of the chat use case the manager needs
type SessionStarter interface {
	StartSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
}

// Manager keeps one conversation session per chat
type Manager struct {
	storage  Storage
	sessions SessionStarter
	// creating serializes mapping a chat to a new session
	creating sync.Mutex
}

// NewManager creates a new state manager
func NewManager(storage Storage, sessions SessionStarter) *Manager {
	return &Manager{
		storage:  storage,
		sessions: sessions,
	}
}

// SessionID returns the session mapped to the chat, if any
func (m *Manager) SessionID(ctx context.Context, chatID int64) (string, bool) {
	return m.storage.GetSessionID(ctx, chatID)
}

// EnsureSession returns the chat's session and starts a new one when the mapping is missing or its session expired.
// Concurrent first messages from one chat end up in the same session.
func (m *Manager) EnsureSession(ctx context.Context, chatID int64) (*entity.Session, error) {
	if session, err := m.mapped(ctx, chatID); session != nil || err != nil {
		return session, err
	}

	m.creating.Lock()
	defer m.creating.Unlock()

	// another update of this chat may have won the race
	if session, err := m.mapped(ctx, chatID); session != nil || err != nil {
		return session, err
	}

	session, err := m.sessions.StartSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	m.storage.SetSessionID(ctx, chatID, session.ID)
	return session, nil
}

// mapped returns the live session the chat points to and refreshes the mapping.
// Both results are nil when there is no mapping or its session is gone.
func (m *Manager) mapped(ctx context.Context, chatID int64) (*entity.Session, error) {
	sessionID, ok := m.storage.GetSessionID(ctx, chatID)
	if !ok {
		return nil, nil
	}

	session, err := m.sessions.GetSession(ctx, sessionID)
	switch {
	case err == nil:
		m.storage.SetSessionID(ctx, chatID, session.ID)
		return session, nil
	case errors.Is(err, entity.ErrSessionNotFound):
		ctxzap.Info(ctx, "chat session expired",
			logger.Chat(chatID),
			logger.Session(sessionID),
		)
		return nil, nil
	default:
		return nil, err
	}
}

// Forget drops the chat mapping
func (m *Manager) Forget(ctx context.Context, chatID int64) {
	m.storage.DeleteSessionID(ctx, chatID)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/patrickmn/go-cache"
)

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	SaveSession(ctx context.Context, session *entity.Session) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
	OnEvicted(f func(id string))
}

var _ SessionRepository = &SessionMemory{}

// SessionMemory keeps sessions in process memory. Entries expire after the TTL
// since their last save and are swept every cleanup interval.
type SessionMemory struct {
	store *cache.Cache
	ttl   time.Duration
}

func NewSessionMemory(ttl, cleanupInterval time.Duration) *SessionMemory {
	return &SessionMemory{
		store: cache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

func (r *SessionMemory) CreateSession(_ context.Context, session *entity.Session) (*entity.Session, error) {
	if session == nil || session.ID == "" {
		return nil, fmt.Errorf("%w: session id", entity.ErrMissingField)
	}

	if err := r.store.Add(session.ID, session.Clone(), r.ttl); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session.Clone(), nil
}

func (r *SessionMemory) GetSessionByID(_ context.Context, id string) (*entity.Session, error) {
	value, ok := r.store.Get(id)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}

	return value.(*entity.Session).Clone(), nil
}

// SaveSession replaces the stored session and refreshes its expiry
func (r *SessionMemory) SaveSession(_ context.Context, session *entity.Session) (*entity.Session, error) {
	if _, ok := r.store.Get(session.ID); !ok {
		return nil, entity.ErrSessionNotFound
	}

	r.store.Set(session.ID, session.Clone(), r.ttl)

	return session.Clone(), nil
}

func (r *SessionMemory) DeleteSession(_ context.Context, id string) error {
	if _, ok := r.store.Get(id); !ok {
		return entity.ErrSessionNotFound
	}

	r.store.Delete(id)
	return nil
}

// OnEvicted registers a callback run when a session expires or is deleted
func (r *SessionMemory) OnEvicted(f func(id string)) {
	r.store.OnEvicted(func(id string, _ interface{}) {
		f(id)
	})
}

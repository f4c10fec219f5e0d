package repository

import (
	"context"
	"testing"
	"time"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMemory_CreateAndGet(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	_, err := repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	require.NoError(t, err)

	got, err := repo.GetSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, entity.SessionStateIdle, got.State)
	assert.Empty(t, got.History)
}

func TestSessionMemory_CreateDuplicate(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	_, err := repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	require.NoError(t, err)
	_, err = repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	assert.Error(t, err)
}

func TestSessionMemory_ReturnsCopies(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	_, err := repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	require.NoError(t, err)

	got, err := repo.GetSessionByID(ctx, "s1")
	require.NoError(t, err)
	got.Append(entity.RoleUser, "not saved")

	again, err := repo.GetSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.History)
}

func TestSessionMemory_Save(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	session := entity.NewSession("s1", time.Now())
	_, err := repo.CreateSession(ctx, session)
	require.NoError(t, err)

	session.Append(entity.RoleUser, "hi")
	session.State = entity.SessionStateAwaitingInput
	_, err = repo.SaveSession(ctx, session)
	require.NoError(t, err)

	got, err := repo.GetSessionByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []entity.Turn{{Role: entity.RoleUser, Content: "hi"}}, got.History)
	assert.Equal(t, entity.SessionStateAwaitingInput, got.State)
}

func TestSessionMemory_SaveUnknown(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)

	_, err := repo.SaveSession(context.Background(), entity.NewSession("ghost", time.Now()))
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionMemory_Delete(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	_, err := repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	_, err = repo.GetSessionByID(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
	assert.ErrorIs(t, repo.DeleteSession(ctx, "s1"), entity.ErrSessionNotFound)
}

func TestSessionMemory_Expires(t *testing.T) {
	repo := NewSessionMemory(20*time.Millisecond, time.Hour)
	ctx := context.Background()

	_, err := repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = repo.GetSessionByID(ctx, "s1")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestChatSessionMemory(t *testing.T) {
	repo := NewChatSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	_, ok := repo.GetSessionID(ctx, 42)
	assert.False(t, ok)

	repo.SetSessionID(ctx, 42, "s1")
	id, ok := repo.GetSessionID(ctx, 42)
	assert.True(t, ok)
	assert.Equal(t, "s1", id)

	repo.DeleteSessionID(ctx, 42)
	_, ok = repo.GetSessionID(ctx, 42)
	assert.False(t, ok)
}

func TestSessionMemory_OnEvicted(t *testing.T) {
	repo := NewSessionMemory(time.Minute, time.Minute)
	ctx := context.Background()

	var evicted []string
	repo.OnEvicted(func(id string) {
		evicted = append(evicted, id)
	})

	_, err := repo.CreateSession(ctx, entity.NewSession("s1", time.Now()))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteSession(ctx, "s1"))

	assert.Equal(t, []string{"s1"}, evicted)
}

package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cafefinder/gateway/internal/adapters/storage"
	"github.com/cafefinder/gateway/internal/domain/entities"
	apperrors "github.com/cafefinder/gateway/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.SQLiteSessionStore {
	t.Helper()
	store, err := storage.NewSQLiteSessionStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(id string) *entities.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &entities.Session{
		ID:    id,
		Token: "bearer-" + id,
		User: entities.User{
			ID:       "u-" + id,
			Username: "jane",
			Email:    "jane@example.com",
			Roles:    []string{"USER", "ADMIN"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	session := sampleSession("s1")
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.Token, loaded.Token)
	assert.Equal(t, session.User.Username, loaded.User.Username)
	assert.Equal(t, []string{"USER", "ADMIN"}, loaded.User.Roles)
	assert.True(t, session.CreatedAt.Equal(loaded.CreatedAt))
}

func TestSessionStore_SaveIsUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	session := sampleSession("s1")
	require.NoError(t, store.Save(ctx, session))

	session.Token = "rotated"
	session.UpdatedAt = session.UpdatedAt.Add(time.Minute)
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "rotated", loaded.Token)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestSessionStore_DeleteIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.Error(t, err)
}

func TestSessionStore_AllOrdersByCreation(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	first := sampleSession("s1")
	second := sampleSession("s2")
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	second.UpdatedAt = second.CreatedAt

	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, first))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "s1", all[0].ID)
	assert.Equal(t, "s2", all[1].ID)
}

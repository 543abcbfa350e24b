package session

import (
	"context"
	"testing"

	"github.com/sabi-web/sabi/internal/auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user := models.User{
		Username: "bob",
		Google:   &models.GoogleProfile{ID: "g-2", Email: "bob@example.com", Name: "bob"},
	}

	sess := New()
	require.NoError(t, sess.Set(UserKey, user))

	token, err := store.Store(ctx, sess)
	require.NoError(t, err)

	loaded, found, err := store.Load(ctx, token)
	require.NoError(t, err)
	require.True(t, found)

	var got models.User
	require.NoError(t, loaded.Get(UserKey, &got))
	assert.Equal(t, user, got)
}

func TestMemoryStore_AbsentAndDestroy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Load(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)

	sess := New()
	_, err = store.Store(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Destroy(ctx, sess))
	require.NoError(t, store.Destroy(ctx, sess))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ClearAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := store.Store(ctx, New())
		require.NoError(t, err)
	}
	require.Equal(t, 10, store.Len())

	require.NoError(t, store.ClearAll(ctx))
	assert.Equal(t, 0, store.Len())
}

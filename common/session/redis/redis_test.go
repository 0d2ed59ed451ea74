package redis

import (
	"context"
	"testing"
	"time"

	"shenanigigs/common/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := New(session.Options{RedisURL: mr.Addr(), DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Set(ctx, "board:selection:abc", "Sales", 0))
	assert.Equal(t, time.Hour, mr.TTL("board:selection:abc"))

	var got string
	require.NoError(t, store.Get(ctx, "board:selection:abc", &got))
	assert.Equal(t, "Sales", got)
}

func TestStoreMissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	var got string
	err := store.Get(context.Background(), "nope", &got)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStoreExpiryAndDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)
	var got string
	assert.ErrorIs(t, store.Get(ctx, "k", &got), session.ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

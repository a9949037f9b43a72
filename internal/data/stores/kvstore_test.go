package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/data/db"
)

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewKVStore(database)
}

func TestKVStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	require.NoError(t, store.Set(ctx, "test-key", payload{Name: "hello", Value: 42}))

	var got payload
	require.NoError(t, store.Get(ctx, "test-key", &got))
	assert.Equal(t, payload{Name: "hello", Value: 42}, got)
}

func TestKVStore_GetNotFound(t *testing.T) {
	var v string
	err := newTestKVStore(t).Get(context.Background(), "nonexistent", &v)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStore_SetOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "key", "first"))
	require.NoError(t, store.Set(ctx, "key", "second"))

	var got string
	require.NoError(t, store.Get(ctx, "key", &got))
	assert.Equal(t, "second", got)

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key"}, keys)
}

func TestKVStore_UnmarshalError(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)
	require.NoError(t, store.Set(ctx, "k", "a string"))

	var n int
	err := store.Get(ctx, "k", &n)
	require.Error(t, err)
	assert.NotErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStore_DeleteMissingIsNoop(t *testing.T) {
	assert.NoError(t, newTestKVStore(t).Delete(context.Background(), "nope"))
}

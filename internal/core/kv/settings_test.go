package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tinydiff/internal/core/kv"
	"github.com/colonyops/tinydiff/internal/data/db"
	"github.com/colonyops/tinydiff/internal/data/stores"
)

func TestSettings_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := kv.NewSettings(kv.MemoryOpener(), kv.DiffStyleSplit)

	assert.Equal(t, kv.DiffStyleSplit, s.DiffStyle(ctx), "closed service returns the default")
	assert.ErrorIs(t, s.SetDiffStyle(ctx, kv.DiffStyleUnified), kv.ErrClosed)
	assert.Nil(t, s.Store())

	require.NoError(t, s.Open(ctx))
	require.NoError(t, s.Open(ctx), "open twice is a no-op")

	require.NoError(t, s.SetDiffStyle(ctx, kv.DiffStyleUnified))
	assert.Equal(t, kv.DiffStyleUnified, s.DiffStyle(ctx))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, kv.DiffStyleSplit, s.DiffStyle(ctx))
}

func TestSettings_InvalidStyle(t *testing.T) {
	ctx := context.Background()
	s := kv.NewSettings(kv.MemoryOpener(), "bogus")
	require.NoError(t, s.Open(ctx))

	assert.Equal(t, kv.DiffStyleSplit, s.DiffStyle(ctx), "invalid default falls back to split")
	assert.Error(t, s.SetDiffStyle(ctx, "sideways"))

	require.NoError(t, s.Store().Set(ctx, "prefs:diff_style", "sideways"))
	assert.Equal(t, kv.DiffStyleSplit, s.DiffStyle(ctx), "stored garbage is ignored")
}

func TestSettings_OpenError(t *testing.T) {
	s := kv.NewSettings(func(context.Context) (kv.KV, func() error, error) {
		return nil, nil, errors.New("locked")
	}, kv.DiffStyleSplit)

	err := s.Open(context.Background())
	assert.ErrorContains(t, err, "locked")
}

func TestSettings_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	opener := func(context.Context) (kv.KV, func() error, error) {
		database, err := db.Open(dir, db.DefaultOpenOptions())
		if err != nil {
			return nil, nil, err
		}
		return stores.NewKVStore(database), database.Close, nil
	}

	first := kv.NewSettings(opener, kv.DiffStyleSplit)
	require.NoError(t, first.Open(ctx))
	require.NoError(t, first.SetDiffStyle(ctx, kv.DiffStyleUnified))
	require.NoError(t, first.SaveTreeState(ctx, "/repo", kv.TreeState{Collapsed: []string{"vendor"}}))
	require.NoError(t, first.Close())

	second := kv.NewSettings(opener, kv.DiffStyleSplit)
	require.NoError(t, second.Open(ctx))
	t.Cleanup(func() { _ = second.Close() })

	assert.Equal(t, kv.DiffStyleUnified, second.DiffStyle(ctx))
	st, err := second.TreeState(ctx, "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor"}, st.Collapsed)

	empty, err := second.TreeState(ctx, "/other")
	require.NoError(t, err)
	assert.Equal(t, kv.TreeState{}, empty)
}

func TestSettings_DefaultTreeStateIsForgotten(t *testing.T) {
	ctx := context.Background()
	s := kv.NewSettings(kv.MemoryOpener(), kv.DiffStyleSplit)
	require.NoError(t, s.Open(ctx))

	require.NoError(t, s.SaveTreeState(ctx, "/repo", kv.TreeState{}), "nothing stored yet")
	keys, err := s.Store().ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, s.SaveTreeState(ctx, "/repo", kv.TreeState{FocusedPath: "main.go"}))
	keys, err = s.Store().ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tree:/repo"}, keys)

	require.NoError(t, s.SaveTreeState(ctx, "/repo", kv.TreeState{}))
	keys, err = s.Store().ListKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDiffStyle_Toggle(t *testing.T) {
	assert.Equal(t, kv.DiffStyleUnified, kv.DiffStyleSplit.Toggle())
	assert.Equal(t, kv.DiffStyleSplit, kv.DiffStyleUnified.Toggle())
}

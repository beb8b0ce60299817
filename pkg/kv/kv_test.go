package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavaniTiago/jurista-ai-frontend/pkg/logger"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.NewTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "chat-doc-1", []byte(`{"messages":[]}`)))

	got, err := store.Get(ctx, "chat-doc-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":[]}`, string(got))

	require.NoError(t, store.Delete(ctx, "chat-doc-1"))
	_, err = store.Get(ctx, "chat-doc-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreMissingKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreDeleteMissingKeyIsNoOp(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "nope"))
}

func TestFileStoreOverwriteKeepsLastValue(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "slot", []byte("first")))
	require.NoError(t, store.Set(ctx, "slot", []byte("second")))

	got, err := store.Get(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.NewTestLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "../escape/attempt", []byte("x")))

	// Nothing may land outside the store directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), string(filepath.Separator))
	assert.NotContains(t, entries[0].Name(), "..")

	got, err := store.Get(ctx, "../escape/attempt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir, logger.NewTestLogger())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "chat-doc-1", []byte("history")))

	second, err := NewFileStore(dir, logger.NewTestLogger())
	require.NoError(t, err)
	got, err := second.Get(ctx, "chat-doc-1")
	require.NoError(t, err)
	assert.Equal(t, "history", string(got))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1")))
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	require.NoError(t, store.Delete(ctx, "a"))
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "a"))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, store.Set(ctx, "a", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}

func TestNewStoreFactory(t *testing.T) {
	log := logger.NewTestLogger()

	mem, err := NewStore(StoreTypeMemory, Config{}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	file, err := NewStore(StoreTypeFile, Config{Dir: t.TempDir()}, log)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, file)

	_, err = NewStore(StoreType("tape"), Config{}, log)
	assert.Error(t, err)
}

package blobstore

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	data := []byte("hello artifacts")
	require.NoError(t, store.Put(ctx, "runs/a/ckpt-1", data))

	blob, err := store.Open(ctx, "runs/a/ckpt-1")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len(data)), blob.Size())

	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_CreateIsAtomic(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	w, err := store.Create(ctx, "ckpt-2")
	require.NoError(t, err)

	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	// Not visible before Close.
	_, err = store.Open(ctx, "ckpt-2")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "ckpt-2")
	require.NoError(t, err)
	defer blob.Close()
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("partial"), got)
}

func TestLocalStore_AbortLeavesNothing(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	w, err := store.Create(ctx, "ckpt-3")
	require.NoError(t, err)
	_, err = w.Write([]byte("doomed"))
	require.NoError(t, err)
	require.NoError(t, w.Abort())

	// Abort after Abort and Close after Abort are no-ops.
	require.NoError(t, w.Abort())
	require.NoError(t, w.Close())

	_, err = store.Open(ctx, "ckpt-3")
	assert.ErrorIs(t, err, ErrNotFound)

	// No temp leftovers.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_List(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "runs/a/ckpt-1", []byte("1")))
	require.NoError(t, store.Put(ctx, "runs/a/ckpt-2", []byte("2")))
	require.NoError(t, store.Put(ctx, "runs/b/ckpt-1", []byte("3")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("runs/a/ckpt-2")))

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT", "runs/a/ckpt-1", "runs/a/ckpt-2", "runs/b/ckpt-1"}, all)

	sub, err := store.List(ctx, "runs/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a/ckpt-1", "runs/a/ckpt-2"}, sub)
}

func TestLocalStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "gone", []byte("x")))
	require.NoError(t, store.Delete(ctx, "gone"))
	require.NoError(t, store.Delete(ctx, "gone")) // idempotent

	_, err = store.Open(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("old")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("new")))

	blob, err := store.Open(ctx, "CURRENT")
	require.NoError(t, err)
	defer blob.Close()
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestLocalStore_TempFilesHiddenFromList(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	w, err := store.Create(ctx, "pending")
	require.NoError(t, err)
	defer func() { _ = w.Abort() }()

	_, err = w.Write([]byte("inflight"))
	require.NoError(t, err)

	// The staged temp file exists on disk but List must not report it.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

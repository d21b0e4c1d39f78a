package checkpoint

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/gibbsgo/blobstore"
)

func TestManager_CheckpointAndRestore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	g := buildGraph(t)

	m := NewManager(store, ManagerOptions{
		Prefix:      "checkpoints",
		Compression: CompressionZstd,
	})

	key, err := m.Checkpoint(ctx, g)
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if !strings.HasPrefix(key, "checkpoints/run-"+m.RunID()+"/") {
		t.Errorf("key = %q, want run-scoped under prefix", key)
	}
	if !strings.HasSuffix(key, "ckpt-00001.gmrf") {
		t.Errorf("key = %q, want first sequence number", key)
	}

	latest, err := m.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != key {
		t.Errorf("Latest = %q, want %q", latest, key)
	}

	loaded, from, err := m.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if from != key {
		t.Errorf("Restore key = %q, want %q", from, key)
	}
	assertGraphsEqual(t, g, loaded)
}

func TestManager_SequencesKeys(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	g := buildGraph(t)

	m := NewManager(store, ManagerOptions{})

	first, err := m.ForceCheckpoint(ctx, g)
	if err != nil {
		t.Fatalf("ForceCheckpoint failed: %v", err)
	}
	second, err := m.ForceCheckpoint(ctx, g)
	if err != nil {
		t.Fatalf("ForceCheckpoint failed: %v", err)
	}

	if !strings.HasSuffix(first, "ckpt-00001.gmrf") || !strings.HasSuffix(second, "ckpt-00002.gmrf") {
		t.Errorf("keys = %q, %q; want consecutive sequence numbers", first, second)
	}

	latest, err := m.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != second {
		t.Errorf("Latest = %q, want %q", latest, second)
	}
}

func TestManager_Throttle(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	g := buildGraph(t)

	m := NewManager(store, ManagerOptions{MinInterval: time.Hour})

	if _, err := m.Checkpoint(ctx, g); err != nil {
		t.Fatalf("first Checkpoint failed: %v", err)
	}
	if _, err := m.Checkpoint(ctx, g); !errors.Is(err, ErrThrottled) {
		t.Errorf("second Checkpoint error = %v, want ErrThrottled", err)
	}

	// ForceCheckpoint ignores the throttle.
	if _, err := m.ForceCheckpoint(ctx, g); err != nil {
		t.Fatalf("ForceCheckpoint failed: %v", err)
	}
}

func TestManager_Retention(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	g := buildGraph(t)

	m := NewManager(store, ManagerOptions{Keep: 2})

	var last string
	for i := 0; i < 4; i++ {
		key, err := m.ForceCheckpoint(ctx, g)
		if err != nil {
			t.Fatalf("ForceCheckpoint %d failed: %v", i, err)
		}
		last = key
	}

	names, err := store.List(ctx, "run-"+m.RunID()+"/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("retained checkpoints = %v, want 2", names)
	}
	if names[len(names)-1] != last {
		t.Errorf("newest retained = %q, want %q", names[len(names)-1], last)
	}

	// The survivor named by CURRENT still loads.
	loaded, from, err := m.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if from != last {
		t.Errorf("Restore key = %q, want %q", from, last)
	}
	assertGraphsEqual(t, g, loaded)
}

func TestManager_LatestWithoutCheckpoint(t *testing.T) {
	m := NewManager(blobstore.NewMemoryStore(), ManagerOptions{})

	if _, err := m.Latest(context.Background()); !errors.Is(err, blobstore.ErrNotFound) {
		t.Errorf("Latest error = %v, want ErrNotFound", err)
	}
}

func TestManager_IsolatedRuns(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	g := buildGraph(t)

	m1 := NewManager(store, ManagerOptions{})
	m2 := NewManager(store, ManagerOptions{})

	if m1.RunID() == m2.RunID() {
		t.Fatal("managers share a run id")
	}

	key1, err := m1.ForceCheckpoint(ctx, g)
	if err != nil {
		t.Fatalf("ForceCheckpoint failed: %v", err)
	}
	key2, err := m2.ForceCheckpoint(ctx, g)
	if err != nil {
		t.Fatalf("ForceCheckpoint failed: %v", err)
	}
	if key1 == key2 {
		t.Fatalf("runs collided on key %q", key1)
	}

	// CURRENT follows the last committer, but the first run's blob survives.
	latest, err := m1.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if latest != key2 {
		t.Errorf("Latest = %q, want %q", latest, key2)
	}
	if _, err := m1.Load(ctx, key1); err != nil {
		t.Errorf("Load of first run's checkpoint failed: %v", err)
	}
}

func TestManager_Closed(t *testing.T) {
	ctx := context.Background()
	g := buildGraph(t)

	m := NewManager(blobstore.NewMemoryStore(), ManagerOptions{})
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, err := m.Checkpoint(ctx, g); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Checkpoint error = %v, want ErrManagerClosed", err)
	}
	if _, err := m.ForceCheckpoint(ctx, g); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("ForceCheckpoint error = %v, want ErrManagerClosed", err)
	}
	if _, err := m.Latest(ctx); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Latest error = %v, want ErrManagerClosed", err)
	}
	if _, _, err := m.Restore(ctx); !errors.Is(err, ErrManagerClosed) {
		t.Errorf("Restore error = %v, want ErrManagerClosed", err)
	}
}

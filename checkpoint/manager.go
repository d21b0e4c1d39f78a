package checkpoint

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/gibbsgo/blobstore"
	"github.com/hupe1980/gibbsgo/mrf"
	"github.com/hupe1980/gibbsgo/resource"
	"golang.org/x/time/rate"
)

var (
	// ErrManagerClosed is returned when operations are attempted on a closed
	// manager.
	ErrManagerClosed = errors.New("checkpoint manager is closed")

	// ErrThrottled is returned by Checkpoint when the minimum interval since
	// the previous attempt has not elapsed.
	ErrThrottled = errors.New("checkpoint throttled")
)

// ManagerOptions configures the checkpoint manager.
type ManagerOptions struct {
	// Prefix namespaces every key the manager writes (optional).
	Prefix string

	// Compression selects the body codec for new checkpoints. The zero
	// value stores bodies uncompressed.
	Compression Compression

	// MinInterval throttles Checkpoint; attempts closer together than this
	// return ErrThrottled. Zero disables throttling.
	MinInterval time.Duration

	// Keep bounds how many checkpoints of this run are retained; older ones
	// are pruned after each successful save. Zero keeps everything.
	Keep int

	// Controller gates saves against global background-worker and IO
	// limits. A nil controller enforces nothing.
	Controller *resource.Controller
}

// Manager writes sequenced checkpoints of a sampler graph to a blob store
// and tracks the newest one through the CURRENT pointer blob.
//
// Every manager owns a fresh run id, so concurrent runs sharing a store
// never overwrite each other's checkpoint blobs. Only the CURRENT pointer
// is contended; stores such as s3.CommitStore arbitrate it.
//
// The Manager is safe for concurrent use. Saves are serialized.
type Manager struct {
	store       blobstore.Store
	prefix      string
	compression Compression
	keep        int
	controller  *resource.Controller
	limiter     *rate.Limiter // nil when throttling is disabled
	runID       string

	mu     sync.Mutex
	seq    uint64 // sequence number of the last committed checkpoint
	closed bool
}

// NewManager creates a checkpoint manager writing to store. The caller
// retains ownership of the store; Close does not close it.
func NewManager(store blobstore.Store, opts ManagerOptions) *Manager {
	m := &Manager{
		store:       store,
		prefix:      opts.Prefix,
		compression: opts.Compression,
		keep:        opts.Keep,
		controller:  opts.Controller,
		runID:       uuid.NewString(),
	}
	if opts.MinInterval > 0 {
		m.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return m
}

// RunID returns the run identifier embedded in this manager's keys.
func (m *Manager) RunID() string { return m.runID }

func (m *Manager) key(seq uint64) string {
	return path.Join(m.prefix, "run-"+m.runID, fmt.Sprintf("ckpt-%05d.gmrf", seq))
}

func (m *Manager) runPrefix() string {
	return path.Join(m.prefix, "run-"+m.runID) + "/"
}

// Checkpoint saves the graph and returns the key of the written blob.
// Attempts closer together than MinInterval return ErrThrottled without
// touching the store; failed attempts count against the throttle too, so
// a broken store cannot be hammered in a hot loop.
//
// The caller must guarantee the graph is quiescent for the duration.
func (m *Manager) Checkpoint(ctx context.Context, g *mrf.Graph) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrManagerClosed
	}
	if m.limiter != nil && !m.limiter.Allow() {
		return "", ErrThrottled
	}
	return m.save(ctx, g)
}

// ForceCheckpoint saves the graph regardless of the throttle.
func (m *Manager) ForceCheckpoint(ctx context.Context, g *mrf.Graph) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrManagerClosed
	}
	return m.save(ctx, g)
}

// save writes the next sequenced checkpoint and commits the CURRENT
// pointer. The caller holds m.mu. On failure the sequence number does not
// advance, so a retry reuses the same key.
func (m *Manager) save(ctx context.Context, g *mrf.Graph) (string, error) {
	if err := m.controller.AcquireBackground(ctx); err != nil {
		return "", err
	}
	defer m.controller.ReleaseBackground()

	key := m.key(m.seq + 1)

	wb, err := m.store.Create(ctx, key)
	if err != nil {
		return "", fmt.Errorf("checkpoint: create %s: %w", key, err)
	}

	var w io.Writer = wb
	if m.controller != nil {
		w = resource.NewRateLimitedWriter(ctx, m.controller, w)
	}
	bw := bufio.NewWriterSize(w, 256*1024) // 256KB buffer

	if err := Write(bw, g, WithCompression(m.compression)); err != nil {
		_ = wb.Abort()
		return "", fmt.Errorf("checkpoint: write %s: %w", key, err)
	}
	if err := bw.Flush(); err != nil {
		_ = wb.Abort()
		return "", fmt.Errorf("checkpoint: write %s: %w", key, err)
	}
	if err := wb.Close(); err != nil {
		return "", fmt.Errorf("checkpoint: commit %s: %w", key, err)
	}

	if err := m.store.Put(ctx, blobstore.Current, []byte(key)); err != nil {
		return "", fmt.Errorf("checkpoint: update %s: %w", blobstore.Current, err)
	}

	m.seq++

	// Retention is best effort; a failed prune never fails the save.
	m.pruneLocked(ctx)

	return key, nil
}

// pruneLocked deletes this run's oldest checkpoints beyond the retention
// bound. The caller holds m.mu.
func (m *Manager) pruneLocked(ctx context.Context) {
	if m.keep <= 0 {
		return
	}
	names, err := m.store.List(ctx, m.runPrefix())
	if err != nil || len(names) <= m.keep {
		return
	}
	for _, name := range names[:len(names)-m.keep] {
		_ = m.store.Delete(ctx, name)
	}
}

// Latest returns the key of the newest committed checkpoint in the store.
// It returns blobstore.ErrNotFound (wrapped) when no run has committed a
// checkpoint yet.
func (m *Manager) Latest(ctx context.Context) (string, error) {
	if err := m.checkOpen(); err != nil {
		return "", err
	}

	b, err := m.store.Open(ctx, blobstore.Current)
	if err != nil {
		return "", fmt.Errorf("checkpoint: open %s: %w", blobstore.Current, err)
	}
	defer b.Close()

	data, err := io.ReadAll(b)
	if err != nil {
		return "", fmt.Errorf("checkpoint: read %s: %w", blobstore.Current, err)
	}
	return string(data), nil
}

// Load reads and decodes the checkpoint stored under key.
func (m *Manager) Load(ctx context.Context, key string) (*mrf.Graph, error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}

	b, err := m.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", key, err)
	}
	defer b.Close()

	var r io.Reader = b
	if m.controller != nil {
		r = resource.NewRateLimitedReader(ctx, m.controller, r)
	}

	g, err := Read(bufio.NewReaderSize(r, 256*1024)) // 256KB buffer
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", key, err)
	}
	return g, nil
}

// Restore loads the newest committed checkpoint and returns the decoded
// graph together with the key it came from.
func (m *Manager) Restore(ctx context.Context) (*mrf.Graph, string, error) {
	key, err := m.Latest(ctx)
	if err != nil {
		return nil, "", err
	}
	g, err := m.Load(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return g, key, nil
}

// Close marks the manager closed. Further operations return
// ErrManagerClosed. The underlying store stays open.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Manager) checkOpen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	return nil
}

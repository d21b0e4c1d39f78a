package gibbsgo

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hupe1980/gibbsgo/alchemy"
	"github.com/hupe1980/gibbsgo/blobstore"
	"github.com/hupe1980/gibbsgo/checkpoint"
	"github.com/hupe1980/gibbsgo/model"
	"github.com/hupe1980/gibbsgo/mrf"
	"github.com/hupe1980/gibbsgo/report"
)

// Run owns a factorized model, its pairwise graph and the checkpoint and
// report plumbing around them. The sampling engine mutates the graph in
// place between checkpoints.
//
// Run is safe for concurrent use of its own methods; mutating the graph
// concurrently with Checkpoint or a report export is the engine's
// responsibility to avoid (checkpoints run at quiesced boundaries).
type Run struct {
	opts    options
	model   *model.FactorizedModel
	graph   *mrf.Graph
	store   blobstore.Store
	manager *checkpoint.Manager

	ownsStore bool
	memBytes  int64

	mu     sync.Mutex
	closed bool
}

// Open loads an Alchemy-format model file and materializes its pairwise
// graph.
func Open(ctx context.Context, modelPath string, optFns ...Option) (*Run, error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	m, err := alchemy.ParseFile(modelPath)
	opts.metricsCollector.RecordModelLoad(time.Since(start), err)
	if err != nil {
		opts.logger.LogModelLoad(ctx, modelPath, 0, 0, err)
		return nil, translateError(err)
	}
	opts.logger.LogModelLoad(ctx, modelPath, m.NumVariables(), m.NumFactors(), nil)

	return New(ctx, m, optFns...)
}

// New materializes the pairwise graph of a programmatically built model.
func New(ctx context.Context, m *model.FactorizedModel, optFns ...Option) (*Run, error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	g, err := mrf.NewGraph(m, func(o *mrf.Options) {
		if opts.rng != nil {
			o.Rand = opts.rng
		}
		if opts.buildParallelism > 0 {
			o.Parallelism = opts.buildParallelism
		}
	})
	opts.metricsCollector.RecordGraphBuild(time.Since(start), err)
	if err != nil {
		opts.logger.LogGraphBuild(ctx, 0, 0, err)
		return nil, translateError(err)
	}
	opts.logger.LogGraphBuild(ctx, g.NumVertices(), g.NumEdges(), nil)

	return newRun(ctx, opts, g)
}

// Resume reloads a binary checkpoint file and continues from its state.
func Resume(ctx context.Context, checkpointPath string, optFns ...Option) (*Run, error) {
	opts := applyOptions(optFns...)

	start := time.Now()
	g, err := checkpoint.Load(checkpointPath)
	opts.metricsCollector.RecordRestore(time.Since(start), err)
	opts.logger.LogRestore(ctx, checkpointPath, err)
	if err != nil {
		return nil, translateError(err)
	}

	return newRun(ctx, opts, g)
}

func newRun(ctx context.Context, opts options, g *mrf.Graph) (*Run, error) {
	memBytes := int64(g.Stats().MemoryBytes)
	if err := opts.controller.AcquireMemory(ctx, memBytes); err != nil {
		return nil, fmt.Errorf("acquire graph memory: %w", err)
	}

	run := &Run{
		opts:     opts,
		model:    g.Model(),
		graph:    g,
		memBytes: memBytes,
	}

	store := opts.store
	if store == nil && opts.checkpointDir != "" {
		local, err := blobstore.NewLocalStore(opts.checkpointDir)
		if err != nil {
			opts.controller.ReleaseMemory(memBytes)
			return nil, fmt.Errorf("open checkpoint dir: %w", err)
		}
		store = local
		run.ownsStore = true
	}

	if store != nil {
		run.store = store
		run.manager = checkpoint.NewManager(store, checkpoint.ManagerOptions{
			Compression: opts.compression,
			MinInterval: opts.checkpointInterval,
			Keep:        opts.keepCheckpoints,
			Controller:  opts.controller,
		})
		run.opts.logger = opts.logger.WithRun(run.manager.RunID())
	}

	return run, nil
}

// Model returns the factorized model shared read-only by the graph.
func (r *Run) Model() *model.FactorizedModel { return r.model }

// Graph returns the pairwise graph the sampling engine operates on.
func (r *Run) Graph() *mrf.Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph
}

// UpdateBounds returns the minimum and maximum per-vertex update counts,
// the engine's measure of sweep progress.
func (r *Run) UpdateBounds() (minUpdates, maxUpdates uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph.UpdateBounds()
}

// Checkpoint saves the graph to the configured store, subject to the
// configured minimum interval (ErrThrottled when violated). Returns the
// checkpoint key.
func (r *Run) Checkpoint(ctx context.Context) (string, error) {
	return r.checkpoint(ctx, false)
}

// ForceCheckpoint saves the graph to the configured store, bypassing the
// interval throttle.
func (r *Run) ForceCheckpoint(ctx context.Context) (string, error) {
	return r.checkpoint(ctx, true)
}

func (r *Run) checkpoint(ctx context.Context, force bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrClosed
	}
	if r.manager == nil {
		return "", ErrNoStore
	}

	start := time.Now()
	var (
		key string
		err error
	)
	if force {
		key, err = r.manager.ForceCheckpoint(ctx, r.graph)
	} else {
		key, err = r.manager.Checkpoint(ctx, r.graph)
	}
	r.opts.metricsCollector.RecordCheckpoint(time.Since(start), err)
	r.opts.logger.LogCheckpoint(ctx, key, err)

	return key, translateError(err)
}

// RestoreLatest replaces the graph with the newest checkpoint in the
// store, following the CURRENT pointer.
func (r *Run) RestoreLatest(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.manager == nil {
		return ErrNoStore
	}

	start := time.Now()
	g, key, err := r.manager.Restore(ctx)
	r.opts.metricsCollector.RecordRestore(time.Since(start), err)
	r.opts.logger.LogRestore(ctx, key, err)
	if err != nil {
		return translateError(err)
	}

	memBytes := int64(g.Stats().MemoryBytes)
	if err := r.opts.controller.AcquireMemory(ctx, memBytes); err != nil {
		return fmt.Errorf("acquire graph memory: %w", err)
	}
	r.opts.controller.ReleaseMemory(r.memBytes)

	r.graph = g
	r.model = g.Model()
	r.memBytes = memBytes

	return nil
}

// SaveCheckpoint writes a checkpoint directly to a local file, bypassing
// the store and the manager's sequencing.
func (r *Run) SaveCheckpoint(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	start := time.Now()
	err := checkpoint.Save(path, r.graph, checkpoint.WithCompression(r.opts.compression))
	r.opts.metricsCollector.RecordCheckpoint(time.Since(start), err)
	r.opts.logger.LogCheckpoint(context.Background(), path, err)

	return translateError(err)
}

// SaveBeliefs exports the per-vertex marginals to a named blob.
func (r *Run) SaveBeliefs(ctx context.Context, name string) error {
	return r.saveReport(ctx, name, report.WriteBeliefs)
}

// SaveAssignments exports the per-vertex sampled values to a named blob.
func (r *Run) SaveAssignments(ctx context.Context, name string) error {
	return r.saveReport(ctx, name, report.WriteAssignments)
}

// SaveColors exports the greedy vertex coloring to a named blob.
func (r *Run) SaveColors(ctx context.Context, name string) error {
	return r.saveReport(ctx, name, report.WriteColors)
}

// SaveTreeState exports the per-vertex tree state to a named blob.
func (r *Run) SaveTreeState(ctx context.Context, name string) error {
	return r.saveReport(ctx, name, report.WriteTreeState)
}

func (r *Run) saveReport(ctx context.Context, name string, writeFn func(io.Writer, *mrf.Graph) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.store == nil {
		return ErrNoStore
	}

	start := time.Now()
	err := r.writeReport(ctx, name, writeFn)
	r.opts.metricsCollector.RecordReport(time.Since(start), err)
	r.opts.logger.LogReport(ctx, name, err)

	return translateError(err)
}

func (r *Run) writeReport(ctx context.Context, name string, writeFn func(io.Writer, *mrf.Graph) error) error {
	wb, err := r.store.Create(ctx, name)
	if err != nil {
		return err
	}

	if err := writeFn(wb, r.graph); err != nil {
		_ = wb.Abort()
		return err
	}

	return wb.Close()
}

// Close releases the run's resources. It is idempotent; every other
// method fails with ErrClosed afterwards.
func (r *Run) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	if r.manager != nil {
		if err := r.manager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.ownsStore && r.store != nil {
		if err := r.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.opts.controller.ReleaseMemory(r.memBytes)
	r.memBytes = 0

	return firstErr
}

package gibbsgo

import (
	"math/rand"
	"time"

	"github.com/hupe1980/gibbsgo/blobstore"
	"github.com/hupe1980/gibbsgo/checkpoint"
	"github.com/hupe1980/gibbsgo/resource"
)

type options struct {
	logger             *Logger
	metricsCollector   MetricsCollector
	store              blobstore.Store
	checkpointDir      string
	compression        checkpoint.Compression
	checkpointInterval time.Duration
	keepCheckpoints    int
	rng                *rand.Rand
	buildParallelism   int
	controller         *resource.Controller
}

// Option configures Run constructor behavior.
type Option func(*options)

func applyOptions(optFns ...Option) options {
	opts := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      checkpoint.CompressionZstd,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metricsCollector = collector
	}
}

// WithStore configures the blob store that receives checkpoints and
// report exports. The caller retains ownership; Run.Close does not close
// it.
func WithStore(store blobstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithCheckpointDir is a convenience alternative to WithStore: checkpoints
// and reports go to a local directory. The Run owns the resulting store.
// WithStore takes precedence when both are set.
func WithCheckpointDir(dir string) Option {
	return func(o *options) {
		o.checkpointDir = dir
	}
}

// WithCompression selects the checkpoint body codec. The default is zstd.
func WithCompression(c checkpoint.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCheckpointInterval throttles Run.Checkpoint: attempts closer
// together than the interval return ErrThrottled. Zero disables
// throttling.
func WithCheckpointInterval(d time.Duration) Option {
	return func(o *options) {
		o.checkpointInterval = d
	}
}

// WithKeepCheckpoints bounds how many checkpoints of this run are
// retained in the store. Zero keeps everything.
func WithKeepCheckpoints(n int) Option {
	return func(o *options) {
		o.keepCheckpoints = n
	}
}

// WithRand configures the random source drawing the initial vertex
// assignments. Defaults to a time-seeded source; fix the seed for
// reproducible graphs.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithBuildParallelism bounds the number of concurrent graph-construction
// workers. Defaults to GOMAXPROCS.
func WithBuildParallelism(n int) Option {
	return func(o *options) {
		o.buildParallelism = n
	}
}

// WithResourceController subjects graph memory, checkpoint I/O and
// background work to a shared resource controller. A nil controller
// enforces nothing.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

package gibbsgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    checkpointCounter   prometheus.Counter
//	    checkpointHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCheckpoint(duration time.Duration, err error) {
//	    p.checkpointCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordModelLoad is called after each model load.
	// duration is the total time taken, err is nil if successful.
	RecordModelLoad(duration time.Duration, err error)

	// RecordGraphBuild is called after each clique-graph construction.
	RecordGraphBuild(duration time.Duration, err error)

	// RecordCheckpoint is called after each checkpoint save attempt,
	// including throttled ones.
	RecordCheckpoint(duration time.Duration, err error)

	// RecordRestore is called after each checkpoint restore.
	RecordRestore(duration time.Duration, err error)

	// RecordReport is called after each report export.
	RecordReport(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordModelLoad(time.Duration, error)  {}
func (NoopMetricsCollector) RecordGraphBuild(time.Duration, error) {}
func (NoopMetricsCollector) RecordCheckpoint(time.Duration, error) {}
func (NoopMetricsCollector) RecordRestore(time.Duration, error)    {}
func (NoopMetricsCollector) RecordReport(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ModelLoadCount       atomic.Int64
	ModelLoadErrors      atomic.Int64
	GraphBuildCount      atomic.Int64
	GraphBuildErrors     atomic.Int64
	GraphBuildTotalNanos atomic.Int64
	CheckpointCount      atomic.Int64
	CheckpointErrors     atomic.Int64
	CheckpointTotalNanos atomic.Int64
	RestoreCount         atomic.Int64
	RestoreErrors        atomic.Int64
	ReportCount          atomic.Int64
	ReportErrors         atomic.Int64
}

// RecordModelLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordModelLoad(duration time.Duration, err error) {
	b.ModelLoadCount.Add(1)
	if err != nil {
		b.ModelLoadErrors.Add(1)
	}
}

// RecordGraphBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGraphBuild(duration time.Duration, err error) {
	b.GraphBuildCount.Add(1)
	b.GraphBuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GraphBuildErrors.Add(1)
	}
}

// RecordCheckpoint implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckpoint(duration time.Duration, err error) {
	b.CheckpointCount.Add(1)
	b.CheckpointTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CheckpointErrors.Add(1)
	}
}

// RecordRestore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRestore(duration time.Duration, err error) {
	b.RestoreCount.Add(1)
	if err != nil {
		b.RestoreErrors.Add(1)
	}
}

// RecordReport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordReport(duration time.Duration, err error) {
	b.ReportCount.Add(1)
	if err != nil {
		b.ReportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ModelLoadCount:      b.ModelLoadCount.Load(),
		ModelLoadErrors:     b.ModelLoadErrors.Load(),
		GraphBuildCount:     b.GraphBuildCount.Load(),
		GraphBuildErrors:    b.GraphBuildErrors.Load(),
		GraphBuildAvgNanos:  avgNanos(&b.GraphBuildTotalNanos, &b.GraphBuildCount),
		CheckpointCount:     b.CheckpointCount.Load(),
		CheckpointErrors:    b.CheckpointErrors.Load(),
		CheckpointAvgNanos:  avgNanos(&b.CheckpointTotalNanos, &b.CheckpointCount),
		RestoreCount:        b.RestoreCount.Load(),
		RestoreErrors:       b.RestoreErrors.Load(),
		ReportCount:         b.ReportCount.Load(),
		ReportErrors:        b.ReportErrors.Load(),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	c := count.Load()
	if c == 0 {
		return 0
	}
	return total.Load() / c
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ModelLoadCount     int64
	ModelLoadErrors    int64
	GraphBuildCount    int64
	GraphBuildErrors   int64
	GraphBuildAvgNanos int64
	CheckpointCount    int64
	CheckpointErrors   int64
	CheckpointAvgNanos int64
	RestoreCount       int64
	RestoreErrors      int64
	ReportCount        int64
	ReportErrors       int64
}

package blockloc

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/blockloc/iostats"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordResolve is called after each block location lookup.
	// cached is true when the location came from the block cache.
	RecordResolve(cached bool, duration time.Duration, err error)

	// RecordRead is called after each stream read with the bytes returned.
	RecordRead(bytes int, duration time.Duration, err error)

	// RecordStreamClose is called once per stream with its final statistics.
	RecordStreamClose(stats iostats.Snapshot)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordResolve(bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordRead(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordStreamClose(iostats.Snapshot)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ResolveCount      atomic.Int64
	ResolveHits       atomic.Int64
	ResolveErrors     atomic.Int64
	ResolveTotalNanos atomic.Int64
	ReadCount         atomic.Int64
	ReadBytes         atomic.Int64
	ReadErrors        atomic.Int64
	ReadTotalNanos    atomic.Int64
	StreamsClosed     atomic.Int64
	StreamOps         atomic.Int64
}

// RecordResolve implements MetricsCollector.
func (b *BasicMetricsCollector) RecordResolve(cached bool, duration time.Duration, err error) {
	b.ResolveCount.Add(1)
	b.ResolveTotalNanos.Add(duration.Nanoseconds())
	if cached {
		b.ResolveHits.Add(1)
	}
	if err != nil {
		b.ResolveErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(bytes))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordStreamClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStreamClose(stats iostats.Snapshot) {
	b.StreamsClosed.Add(1)
	b.StreamOps.Add(stats.TotalOps)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ResolveCount:    b.ResolveCount.Load(),
		ResolveHits:     b.ResolveHits.Load(),
		ResolveErrors:   b.ResolveErrors.Load(),
		ResolveAvgNanos: avgNanos(b.ResolveTotalNanos.Load(), b.ResolveCount.Load()),
		ReadCount:       b.ReadCount.Load(),
		ReadBytes:       b.ReadBytes.Load(),
		ReadErrors:      b.ReadErrors.Load(),
		ReadAvgNanos:    avgNanos(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		StreamsClosed:   b.StreamsClosed.Load(),
		StreamOps:       b.StreamOps.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ResolveCount    int64
	ResolveHits     int64
	ResolveErrors   int64
	ResolveAvgNanos int64
	ReadCount       int64
	ReadBytes       int64
	ReadErrors      int64
	ReadAvgNanos    int64
	StreamsClosed   int64
	StreamOps       int64
}

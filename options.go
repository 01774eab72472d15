package blockloc

import (
	"github.com/hupe1980/blockloc/blockcache"
	"github.com/hupe1980/blockloc/internal/resource"
	"github.com/hupe1980/blockloc/iostats"
)

// DefaultPrefetchConcurrency bounds parallel block fetches per Prefetch call.
const DefaultPrefetchConcurrency = 4

type options struct {
	logger              *Logger
	metricsCollector    MetricsCollector
	resource            *resource.Controller
	statistics          *iostats.Statistics
	registry            *iostats.Registry
	cacheOptions        []blockcache.Option
	prefetchConcurrency int
}

func defaultOptions() options {
	return options{
		logger:              NoopLogger(),
		metricsCollector:    NoopMetricsCollector{},
		prefetchConcurrency: DefaultPrefetchConcurrency,
	}
}

// Option configures a Client or Resolver.
type Option func(*options)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController limits metadata lookups and data tier reads.
// A nil controller means unlimited.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithStatistics injects the process-wide statistics that closed streams
// are merged into.
func WithStatistics(s *iostats.Statistics) Option {
	return func(o *options) {
		o.statistics = s
	}
}

// WithStatisticsRegistry registers the client statistics with r instead of
// a private registry.
func WithStatisticsRegistry(r *iostats.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithCacheShards sets the shard counts of the block location cache: files
// for the fd level, blocks for each per-file map.
func WithCacheShards(files, blocks int) Option {
	return func(o *options) {
		o.cacheOptions = append(o.cacheOptions,
			blockcache.WithShards(files),
			blockcache.WithFileShards(blocks),
		)
	}
}

// WithPrefetchConcurrency bounds parallel block fetches per Prefetch call.
func WithPrefetchConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.prefetchConcurrency = n
		}
	}
}

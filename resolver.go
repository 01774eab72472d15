package blockloc

import (
	"context"
	"strconv"
	"time"

	"github.com/hupe1980/blockloc/blockcache"
	"github.com/hupe1980/blockloc/namenode"
	"golang.org/x/sync/singleflight"
)

// Resolver maps (fd, block index) to a block location, consulting the block
// cache before the catalog. Concurrent misses for the same block of the same
// descriptor share one catalog lookup.
type Resolver struct {
	catalog namenode.Catalog
	cache   *blockcache.Cache[namenode.BlockInfo]
	opts    options
	group   singleflight.Group
}

// NewResolver creates a Resolver over catalog that fills cache.
// Only WithLogger, WithMetricsCollector and WithResourceController apply.
func NewResolver(catalog namenode.Catalog, cache *blockcache.Cache[namenode.BlockInfo], opts ...Option) *Resolver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newResolver(catalog, cache, o)
}

func newResolver(catalog namenode.Catalog, cache *blockcache.Cache[namenode.BlockInfo], o options) *Resolver {
	return &Resolver{
		catalog: catalog,
		cache:   cache,
		opts:    o,
	}
}

// Resolve returns the location of block index of file, opened as fd.
// cached reports whether the location was served from the block cache.
// Failures are returned as *ErrResolve.
func (r *Resolver) Resolve(ctx context.Context, fd int64, path string, file namenode.FileInfo, index int64) (namenode.BlockInfo, bool, error) {
	return r.resolve(ctx, fd, path, file, index, false)
}

// resolve is Resolve for demand reads and, with speculative set, for
// prefetches. A speculative miss only takes a lookup slot that is free right
// now and fails with resource.ErrLookupLimitExceeded otherwise, so prefetches
// never queue ahead of demand reads.
func (r *Resolver) resolve(ctx context.Context, fd int64, path string, file namenode.FileInfo, index int64, speculative bool) (info namenode.BlockInfo, cached bool, err error) {
	start := time.Now()
	defer func() {
		r.opts.metricsCollector.RecordResolve(cached, time.Since(start), err)
		if !cached {
			r.opts.logger.LogResolve(ctx, index, cached, err)
		}
	}()

	key := namenode.BlockKey(index, file.Generation)
	fc := r.cache.GetOrCreate(fd)

	if info, ok := fc.Get(key); ok {
		return info, true, nil
	}

	flight := strconv.FormatInt(fd, 10) + "/" + key
	if speculative {
		// Demand reads must not inherit a speculative rejection.
		flight = "prefetch/" + flight
	}

	v, err, _ := r.group.Do(flight, func() (any, error) {
		// A lookup that finished between Get and Do already filled the cache.
		if info, ok := fc.Get(key); ok {
			return info, nil
		}

		if speculative {
			if err := r.opts.resource.TryAcquireLookup(); err != nil {
				return nil, err
			}
		} else if err := r.opts.resource.AcquireLookup(ctx); err != nil {
			return nil, err
		}
		defer r.opts.resource.ReleaseLookup()

		info, err := r.catalog.Lookup(ctx, path, index)
		if err != nil {
			return nil, err
		}
		fc.Put(key, info)
		return info, nil
	})
	if err != nil {
		return namenode.BlockInfo{}, false, &ErrResolve{Path: path, Block: index, cause: err}
	}
	return v.(namenode.BlockInfo), false, nil
}

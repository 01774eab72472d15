package blockloc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/blockloc/blobstore"
	"github.com/hupe1980/blockloc/blockcache"
	"github.com/hupe1980/blockloc/iostats"
	"github.com/hupe1980/blockloc/namenode"
)

// Client opens read streams over files described by a namenode.Catalog and
// stored in a blobstore.BlobStore. It owns the block location cache and the
// process-wide statistics every closed stream is merged into.
//
// A Client is safe for concurrent use.
type Client struct {
	catalog namenode.Catalog
	store   blobstore.BlobStore
	opts    options

	cache    *blockcache.Cache[namenode.BlockInfo]
	resolver *Resolver
	stats    *iostats.Statistics
	registry *iostats.Registry
	// ownStats is set when stats was created by New rather than injected.
	ownStats bool

	nextFD atomic.Int64

	mu      sync.Mutex
	streams map[int64]*Stream
	closed  bool
}

// New creates a Client.
func New(catalog namenode.Catalog, store blobstore.BlobStore, opts ...Option) *Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	stats, ownStats := o.statistics, false
	if stats == nil {
		stats, ownStats = iostats.New("client"), true
	}
	registry := o.registry
	if registry == nil {
		registry = iostats.NewRegistry()
	}
	registry.Register(stats)

	cache := blockcache.New[namenode.BlockInfo](o.cacheOptions...)

	return &Client{
		catalog:  catalog,
		store:    store,
		opts:     o,
		cache:    cache,
		resolver: newResolver(catalog, cache, o),
		stats:    stats,
		registry: registry,
		ownStats: ownStats,
		streams:  make(map[int64]*Stream),
	}
}

// Open stats path and returns a stream positioned at offset 0 with a fresh
// file descriptor.
func (c *Client) Open(ctx context.Context, path string) (*Stream, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	file, err := c.catalog.Stat(ctx, path)
	if err != nil {
		err = fmt.Errorf("open %s: %w", path, err)
		c.opts.logger.LogOpen(ctx, path, 0, err)
		return nil, err
	}
	if file.Size > 0 && file.BlockSize <= 0 {
		return nil, fmt.Errorf("open %s: invalid block size %d", path, file.BlockSize)
	}

	fd := c.nextFD.Add(1)
	s := newStream(c, fd, file)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.streams[fd] = s
	c.mu.Unlock()

	c.opts.logger.LogOpen(ctx, path, fd, nil)
	return s, nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) forget(fd int64) {
	c.mu.Lock()
	delete(c.streams, fd)
	c.mu.Unlock()
}

// Statistics returns the process-wide statistics.
func (c *Client) Statistics() *iostats.Statistics {
	return c.stats
}

// BlockCache returns the block location cache.
func (c *Client) BlockCache() *blockcache.Cache[namenode.BlockInfo] {
	return c.cache
}

// Resolver returns the resolver streams use to locate blocks.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// Registry returns the statistics registry the client reports to.
func (c *Client) Registry() *iostats.Registry {
	return c.registry
}

// Close closes every open stream and logs the final statistics. Statistics
// created by New are then removed from the registry; statistics injected
// with WithStatistics stay registered for the other clients sharing them.
// Subsequent calls return nil.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	open := make([]*Stream, 0, len(c.streams))
	for _, s := range c.streams {
		open = append(open, s)
	}
	c.mu.Unlock()

	var errs []error
	for _, s := range open {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	c.opts.logger.LogStatistics(ctx, c.stats)
	if c.ownStats {
		c.registry.Unregister(c.stats)
	}
	return errors.Join(errs...)
}

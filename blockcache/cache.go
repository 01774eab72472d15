package blockcache

import "github.com/hupe1980/blockloc/internal/shardmap"

// Cache maps open file descriptors to their per-file block caches.
// It is safe for concurrent use.
type Cache[V any] struct {
	files      *shardmap.Map[int64, *FileCache[V]]
	fileShards int
}

// New creates an empty Cache.
func New[V any](opts ...Option) *Cache[V] {
	o := options{
		shards:     DefaultShards,
		fileShards: DefaultFileShards,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fileShards <= 0 {
		o.fileShards = DefaultFileShards
	}

	return &Cache[V]{
		files:      shardmap.New[int64, *FileCache[V]](o.shards),
		fileShards: o.fileShards,
	}
}

// GetOrCreate returns the FileCache for fd, creating an empty one if none is
// installed. Concurrent callers for the same fd all receive the same instance.
func (c *Cache[V]) GetOrCreate(fd int64) *FileCache[V] {
	fc, _ := c.files.LoadOrCompute(fd, func() *FileCache[V] {
		return newFileCache[V](fd, c.fileShards)
	})
	return fc
}

// Lookup returns the FileCache for fd without creating one.
func (c *Cache[V]) Lookup(fd int64) (*FileCache[V], bool) {
	return c.files.Load(fd)
}

// Remove detaches the FileCache for fd. Removing an unknown fd is a no-op.
// A later GetOrCreate for the same fd starts from an empty FileCache.
func (c *Cache[V]) Remove(fd int64) {
	c.files.Delete(fd)
}

// Len returns the number of descriptors with an installed FileCache.
func (c *Cache[V]) Len() int {
	return c.files.Len()
}

// Range calls fn for every installed FileCache until fn returns false.
func (c *Cache[V]) Range(fn func(fd int64, fc *FileCache[V]) bool) {
	c.files.Range(fn)
}

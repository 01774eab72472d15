package blockcache

import "github.com/hupe1980/blockloc/internal/shardmap"

// FileCache holds the cached block locations of one open file.
// It is safe for concurrent use; conflicting Puts on the same key resolve
// last-writer-wins.
type FileCache[V any] struct {
	fd     int64
	blocks *shardmap.Map[string, V]
}

func newFileCache[V any](fd int64, shards int) *FileCache[V] {
	return &FileCache[V]{
		fd:     fd,
		blocks: shardmap.New[string, V](shards),
	}
}

// FD returns the descriptor this cache belongs to.
func (f *FileCache[V]) FD() int64 {
	return f.fd
}

// Put stores v under key, replacing any previous value.
func (f *FileCache[V]) Put(key string, v V) {
	f.blocks.Store(key, v)
}

// Get returns the value for key. ok is false on a miss.
func (f *FileCache[V]) Get(key string) (v V, ok bool) {
	return f.blocks.Load(key)
}

// ContainsKey reports whether key has a cached value.
func (f *FileCache[V]) ContainsKey(key string) bool {
	return f.blocks.Contains(key)
}

// Len returns the number of cached blocks.
func (f *FileCache[V]) Len() int {
	return f.blocks.Len()
}

// Range calls fn for each cached block until fn returns false.
func (f *FileCache[V]) Range(fn func(key string, v V) bool) {
	f.blocks.Range(fn)
}

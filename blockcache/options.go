package blockcache

import "github.com/hupe1980/blockloc/internal/shardmap"

const (
	// DefaultShards is the shard count of the descriptor-level map.
	DefaultShards = shardmap.DefaultShards
	// DefaultFileShards is the shard count of each per-file map.
	DefaultFileShards = 8
)

type options struct {
	shards     int
	fileShards int
}

// Option configures a Cache.
type Option func(*options)

// WithShards sets the number of shards for the descriptor-level map.
// Values are rounded up to a power of two; n <= 0 selects DefaultShards.
func WithShards(n int) Option {
	return func(o *options) {
		o.shards = n
	}
}

// WithFileShards sets the number of shards for every per-file map.
// Values are rounded up to a power of two; n <= 0 selects DefaultFileShards.
func WithFileShards(n int) Option {
	return func(o *options) {
		o.fileShards = n
	}
}

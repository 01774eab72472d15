// Package shardmap provides a generic concurrent map partitioned into
// independently locked shards.
//
// Keys are spread across shards with hash/maphash, so contention is limited to
// callers whose keys land in the same shard. There is no map-wide lock; Len and
// Range visit shards one at a time and therefore observe each shard at a
// slightly different instant.
package shardmap

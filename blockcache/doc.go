// Package blockcache memoizes resolved block locations per open file.
//
// A Cache maps a file descriptor to a FileCache, and a FileCache maps a block
// key to a location value. The value type is a type parameter; the cache never
// inspects it.
//
//	c := blockcache.New[namenode.BlockInfo]()
//	fc := c.GetOrCreate(fd)
//	if info, ok := fc.Get(key); ok {
//	    // cache hit
//	}
//	fc.Put(key, resolved)
//	...
//	c.Remove(fd) // on close
//
// # Concurrency
//
// Both levels are sharded maps with per-shard locks. GetOrCreate installs the
// per-file level with a single insert-if-absent step, so all callers racing on
// the same descriptor observe the same FileCache.
//
// # Growth
//
// Entries are never evicted. A FileCache lives until Remove is called for its
// descriptor, and memory grows with the number of distinct (fd, key) pairs
// seen until then. Len and Range are exposed so a bounded policy can be built
// on top without changing this API.
package blockcache

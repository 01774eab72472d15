package shardmap

import (
	"hash/maphash"
	"math/bits"
	"sync"
)

// DefaultShards is the shard count used when New is given n <= 0.
const DefaultShards = 64

// Map is a sharded map safe for concurrent use.
type Map[K comparable, V any] struct {
	shards []shard[K, V]
	mask   uint64
	seed   maphash.Seed
}

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New creates a map with n shards, rounded up to the next power of two.
func New[K comparable, V any](n int) *Map[K, V] {
	if n <= 0 {
		n = DefaultShards
	}
	n = 1 << bits.Len(uint(n-1))

	m := &Map[K, V]{
		shards: make([]shard[K, V], n),
		mask:   uint64(n - 1),
		seed:   maphash.MakeSeed(),
	}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shard(key K) *shard[K, V] {
	return &m.shards[maphash.Comparable(m.seed, key)&m.mask]
}

// Shards returns the number of shards.
func (m *Map[K, V]) Shards() int {
	return len(m.shards)
}

// Load returns the value stored under key.
func (m *Map[K, V]) Load(key K) (V, bool) {
	s := m.shard(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	s := m.shard(key)
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()
	return ok
}

// Store sets the value for key, replacing any previous value.
func (m *Map[K, V]) Store(key K, value V) {
	s := m.shard(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// LoadOrCompute returns the existing value for key if present. Otherwise it
// stores the result of newValue and returns it; loaded reports which case
// happened. newValue runs at most once per call and only while the shard
// lock is held, so only the winning caller allocates.
func (m *Map[K, V]) LoadOrCompute(key K, newValue func() V) (actual V, loaded bool) {
	s := m.shard(key)

	s.mu.RLock()
	actual, loaded = s.items[key]
	s.mu.RUnlock()
	if loaded {
		return actual, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if actual, loaded = s.items[key]; loaded {
		return actual, true
	}
	actual = newValue()
	s.items[key] = actual
	return actual, false
}

// Delete removes key. Deleting a missing key is a no-op.
func (m *Map[K, V]) Delete(key K) {
	s := m.shard(key)
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
}

// Len returns the number of entries across all shards.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Range calls fn for each entry until fn returns false.
// Each shard is copied under its read lock before fn is invoked, so fn may
// call back into the map.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	type kv struct {
		k K
		v V
	}

	var buf []kv
	for i := range m.shards {
		s := &m.shards[i]

		s.mu.RLock()
		buf = buf[:0]
		for k, v := range s.items {
			buf = append(buf, kv{k, v})
		}
		s.mu.RUnlock()

		for _, e := range buf {
			if !fn(e.k, e.v) {
				return
			}
		}
	}
}

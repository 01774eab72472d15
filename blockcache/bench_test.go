package blockcache

import (
	"strconv"
	"testing"
)

func BenchmarkCache_GetOrCreateHit(b *testing.B) {
	c := New[location]()
	for fd := range int64(1024) {
		c.GetOrCreate(fd)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		var fd int64
		for pb.Next() {
			c.GetOrCreate(fd & 1023)
			fd++
		}
	})
}

func BenchmarkFileCache_Get(b *testing.B) {
	fc := newFileCache[location](1, DefaultFileShards)
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
		fc.Put(keys[i], location{offset: int64(i)})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = fc.Get(keys[i&255])
			i++
		}
	})
}

package blockcache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache_GetMiss(t *testing.T) {
	fc := newFileCache[location](3, 4)

	v, ok := fc.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, location{}, v)
	assert.False(t, fc.ContainsKey("missing"))
}

func TestFileCache_PutOverwrites(t *testing.T) {
	fc := newFileCache[location](3, 4)

	fc.Put("k", location{addr: "a"})
	fc.Put("k", location{addr: "b"})

	v, ok := fc.Get("k")
	require.True(t, ok)
	assert.Equal(t, "b", v.addr)
	assert.Equal(t, 1, fc.Len())
}

func TestFileCache_ContainsKeyAgreesWithGet(t *testing.T) {
	fc := newFileCache[*location](1, 2)

	// A nil placeholder is present even though the value is nil-like.
	fc.Put("placeholder", nil)
	fc.Put("real", &location{addr: "x"})

	for _, key := range []string{"placeholder", "real", "absent"} {
		_, ok := fc.Get(key)
		assert.Equal(t, ok, fc.ContainsKey(key), key)
	}
	assert.True(t, fc.ContainsKey("placeholder"))
}

func TestFileCache_Range(t *testing.T) {
	fc := newFileCache[int](1, 4)
	for i := range 20 {
		fc.Put(strconv.Itoa(i), i)
	}

	sum := 0
	fc.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	assert.Equal(t, 190, sum)
}

func TestFileCache_ConcurrentPutGet(t *testing.T) {
	fc := newFileCache[int](1, DefaultFileShards)

	const goroutines = 32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := range goroutines {
		go func(g int) {
			defer wg.Done()
			for i := range 100 {
				key := strconv.Itoa(i)
				fc.Put(key, g)
				_, ok := fc.Get(key)
				assert.True(t, ok)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 100, fc.Len())
	v, ok := fc.Get("50")
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, goroutines)
}

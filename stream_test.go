package blockloc

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/blockloc/blobstore"
	"github.com/hupe1980/blockloc/internal/resource"
	"github.com/hupe1980/blockloc/namenode"
	"github.com/hupe1980/blockloc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_ReadAtAcrossBlocks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(1).Text(3000)
	f.putFile(t, "/a", data, testutil.FileOptions{Compression: namenode.CompressionLZ4})

	s := f.open(t, "/a")
	p := make([]byte, 1500)

	n, err := s.ReadAt(ctx, p, 500)
	require.NoError(t, err)
	assert.Equal(t, 1500, n)
	assert.Equal(t, data[500:2000], p)

	st := s.Statistics()
	assert.Equal(t, int64(1), st.TotalOps())
	assert.Equal(t, int64(1500), st.OpLen())
	assert.Equal(t, int64(2), st.BlockingOps())
	assert.Equal(t, int64(2), st.LocalOps())
	assert.Zero(t, st.CachedOps())

	_, err = s.ReadAt(ctx, p, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalOps())
	assert.Equal(t, int64(2), st.CachedOps())
	assert.Equal(t, int64(4), st.BlockingOps())
	assert.Equal(t, int64(2), f.catalog.Lookups())
}

func TestStream_ReadAtBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(2).Bytes(3000)
	f.putFile(t, "/a", data, testutil.FileOptions{Compression: namenode.CompressionZSTD})

	s := f.open(t, "/a")
	p := make([]byte, 100)

	n, err := s.ReadAt(ctx, p, 2950)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 50, n)
	assert.Equal(t, data[2950:], p[:n])

	n, err = s.ReadAt(ctx, p, 3000)
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, n)

	_, err = s.ReadAt(ctx, p, -1)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	n, err = s.ReadAt(ctx, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStream_Locality(t *testing.T) {
	tests := []struct {
		name   string
		opts   testutil.FileOptions
		expect func(t *testing.T, s *Stream)
	}{
		{"local", testutil.FileOptions{}, func(t *testing.T, s *Stream) {
			assert.Equal(t, int64(1), s.Statistics().LocalOps())
		}},
		{"remote", testutil.FileOptions{Remote: true}, func(t *testing.T, s *Stream) {
			assert.Equal(t, int64(1), s.Statistics().RemoteOps())
		}},
		{"local dir", testutil.FileOptions{Dir: true}, func(t *testing.T, s *Stream) {
			assert.Equal(t, int64(1), s.Statistics().LocalDirOps())
			assert.Zero(t, s.Statistics().LocalOps())
		}},
		{"remote dir", testutil.FileOptions{Dir: true, Remote: true}, func(t *testing.T, s *Stream) {
			assert.Equal(t, int64(1), s.Statistics().RemoteDirOps())
			assert.Zero(t, s.Statistics().RemoteOps())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.putFile(t, "/a", []byte("hello"), tt.opts)
			s := f.open(t, "/a")

			_, err := s.ReadAt(context.Background(), make([]byte, 5), 0)
			require.NoError(t, err)
			tt.expect(t, s)
		})
	}
}

func TestStream_PrefetchNonblocking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(3).Text(2048)
	f.putFile(t, "/a", data, testutil.FileOptions{})

	s := f.open(t, "/a")
	require.NoError(t, s.Prefetch(ctx, 0, 2048))
	require.NoError(t, s.Prefetch(ctx, 0, 2048))
	assert.Equal(t, uint64(2), s.prefetched.GetCardinality())
	s.inflight.Wait()

	p := make([]byte, 1024)
	_, err := s.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, data[:1024], p)

	st := s.Statistics()
	assert.Equal(t, int64(1), st.PrefetchedOps())
	assert.Equal(t, int64(1), st.PrefetchedNonblockingOps())
	assert.Zero(t, st.PrefetchedBlockingOps())
	assert.Zero(t, st.BlockingOps())
	assert.Equal(t, int64(1), st.CachedOps())

	// The slot is consumed; the next read fetches synchronously.
	_, err = s.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.BlockingOps())
	assert.Equal(t, uint64(1), s.prefetched.GetCardinality())
}

func TestStream_PrefetchBlocking(t *testing.T) {
	ctx := context.Background()
	store := &gateStore{BlobStore: blobstore.NewMemoryStore(), gate: make(chan struct{})}
	f := newFixture(t, store)
	data := testutil.NewRNG(4).Text(1024)
	f.putFile(t, "/a", data, testutil.FileOptions{})

	s := f.open(t, "/a")
	require.NoError(t, s.Prefetch(ctx, 0, 1024))

	type result struct {
		n   int
		err error
	}
	p := make([]byte, 1024)
	done := make(chan result, 1)
	go func() {
		n, err := s.ReadAt(ctx, p, 0)
		done <- result{n, err}
	}()

	assert.Eventually(t, func() bool {
		return s.Statistics().PrefetchedBlockingOps() == 1
	}, time.Second, time.Millisecond)
	close(store.gate)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, 1024, res.n)
	assert.Equal(t, data, p)

	st := s.Statistics()
	assert.Equal(t, int64(1), st.PrefetchedOps())
	assert.Zero(t, st.PrefetchedNonblockingOps())
	assert.Zero(t, st.BlockingOps())
}

func TestStream_PrefetchFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(5).Text(1024)
	f.putFile(t, "/a", data, testutil.FileOptions{})

	s := f.open(t, "/a")
	require.NoError(t, f.store.Delete(ctx, testutil.BlobName("/a", 0)))
	require.NoError(t, s.Prefetch(ctx, 0, 1))
	s.inflight.Wait()

	f.putFile(t, "/a", data, testutil.FileOptions{})

	p := make([]byte, 1024)
	_, err := s.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, data, p)
	assert.Equal(t, int64(1), s.Statistics().PrefetchedOps())
	assert.Equal(t, int64(1), s.Statistics().BlockingOps())
}

func TestStream_PrefetchValidation(t *testing.T) {
	f := newFixture(t, nil)
	f.putFile(t, "/a", []byte("hello"), testutil.FileOptions{})
	s := f.open(t, "/a")

	assert.ErrorIs(t, s.Prefetch(context.Background(), -1, 10), ErrInvalidOffset)
	assert.ErrorIs(t, s.Prefetch(context.Background(), 6, 10), ErrInvalidOffset)
	assert.NoError(t, s.Prefetch(context.Background(), 5, 10))
	assert.NoError(t, s.Prefetch(context.Background(), 0, 0))
	assert.Zero(t, s.prefetched.GetCardinality())
}

func TestStream_PrefetchHugeLength(t *testing.T) {
	f := newFixture(t, nil)
	f.putFile(t, "/a", testutil.NewRNG(12).Text(3000), testutil.FileOptions{})
	s := f.open(t, "/a")

	require.NoError(t, s.Prefetch(context.Background(), 1500, math.MaxInt64))
	s.inflight.Wait()
	assert.Equal(t, []uint64{1, 2}, s.prefetched.ToArray())
}

func TestStream_PrefetchDoesNotQueueForLookups(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MaxInflightLookups: 1})
	f := newFixture(t, nil, WithResourceController(rc))
	data := testutil.NewRNG(13).Text(1024)
	f.putFile(t, "/a", data, testutil.FileOptions{})
	s := f.open(t, "/a")

	// Every lookup slot is taken, so the prefetch gives up on the block.
	require.NoError(t, rc.AcquireLookup(ctx))
	require.NoError(t, s.Prefetch(ctx, 0, 1024))
	s.inflight.Wait()
	assert.Zero(t, f.catalog.Lookups())
	rc.ReleaseLookup()

	p := make([]byte, 1024)
	_, err := s.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	assert.Equal(t, data, p)

	st := s.Statistics()
	assert.Equal(t, int64(1), st.PrefetchedOps())
	assert.Equal(t, int64(1), st.BlockingOps())
	assert.Equal(t, int64(1), f.catalog.Lookups())
}

func TestStream_ReadAndSeek(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(6).Bytes(3000)
	f.putFile(t, "/a", data, testutil.FileOptions{})
	s := f.open(t, "/a")

	var got []byte
	p := make([]byte, 1000)
	for {
		n, err := s.Read(ctx, p)
		got = append(got, p[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, data, got)

	pos, err := s.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(2990), pos)

	n, err := s.Read(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, data[2990:], p[:n])

	pos, err = s.Seek(-1000, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), pos)

	_, err = s.Seek(1, io.SeekEnd)
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = s.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	assert.Equal(t, int64(4), s.Statistics().TotalSeeks())
}

func TestStream_ReadAsync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(7).Text(2000)
	f.putFile(t, "/a", data, testutil.FileOptions{})
	s := f.open(t, "/a")

	p := make([]byte, 100)
	fut := s.ReadAsync(ctx, p, 1000)
	<-fut.Done()
	n, err := fut.Wait()
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[1000:1100], p)

	assert.Equal(t, int64(1), s.Statistics().NonblockingOps())
	assert.Equal(t, int64(1), s.Statistics().TotalOps())
}

func TestStream_Close(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}
	f := newFixture(t, nil, WithMetricsCollector(mc))
	info := f.putFile(t, "/a", testutil.NewRNG(8).Bytes(2500), testutil.FileOptions{})
	s := f.open(t, "/a")

	_, err := s.ReadAt(ctx, make([]byte, 10), 0)
	require.NoError(t, err)
	_, ok := f.client.BlockCache().Lookup(s.FD())
	require.True(t, ok)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))

	total := f.client.Statistics()
	assert.Equal(t, int64(1), total.TotalStreams())
	assert.Equal(t, int64(1), total.TotalOps())
	assert.Equal(t, info.Capacity(), total.Capacity())
	assert.Equal(t, int64(3*testBlockSize), total.AvgCapacity())
	assert.Equal(t, info.Capacity(), s.Statistics().Capacity())

	_, ok = f.client.BlockCache().Lookup(s.FD())
	assert.False(t, ok)
	assert.Equal(t, int64(1), mc.GetStats().StreamsClosed)

	_, err = s.ReadAt(ctx, make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Read(ctx, make([]byte, 1))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Prefetch(ctx, 0, 1), ErrClosed)
	_, err = s.ReadAsync(ctx, make([]byte, 1), 0).Wait()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStream_CloseWaitsForPrefetch(t *testing.T) {
	ctx := context.Background()
	store := &gateStore{BlobStore: blobstore.NewMemoryStore(), gate: make(chan struct{})}
	f := newFixture(t, store)
	f.putFile(t, "/a", testutil.NewRNG(9).Text(2048), testutil.FileOptions{})

	s := f.open(t, "/a")
	require.NoError(t, s.Prefetch(ctx, 0, 2048))

	time.AfterFunc(20*time.Millisecond, func() { close(store.gate) })
	require.NoError(t, s.Close(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		select {
		case <-slot.done:
		default:
			t.Fatal("prefetch still running after Close")
		}
	}
}

func TestStream_CloseWaitsForReadAt(t *testing.T) {
	ctx := context.Background()
	store := &gateStore{BlobStore: blobstore.NewMemoryStore(), gate: make(chan struct{})}
	f := newFixture(t, store)
	data := testutil.NewRNG(14).Text(3000)
	f.putFile(t, "/a", data, testutil.FileOptions{})
	s := f.open(t, "/a")

	type result struct {
		n   int
		err error
	}
	p := make([]byte, 3000)
	read := make(chan result, 1)
	go func() {
		n, err := s.ReadAt(ctx, p, 0)
		read <- result{n, err}
	}()

	// Block 0 is resolved and its fetch is parked on the gate.
	require.Eventually(t, func() bool {
		return f.catalog.Lookups() == 1
	}, time.Second, time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- s.Close(ctx) }()

	assert.Never(t, func() bool {
		return len(closed) > 0
	}, 50*time.Millisecond, 5*time.Millisecond, "Close returned while a read was running")

	close(store.gate)
	res := <-read
	require.NoError(t, res.err)
	assert.Equal(t, 3000, res.n)
	assert.Equal(t, data, p)
	require.NoError(t, <-closed)

	assert.Zero(t, f.client.BlockCache().Len())
	total := f.client.Statistics()
	assert.Equal(t, int64(1), total.TotalStreams())
	assert.Equal(t, int64(1), total.TotalOps())
	assert.Equal(t, int64(3000), total.OpLen())
	assert.Equal(t, int64(3), total.LocalOps())

	_, err := s.ReadAt(ctx, p, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, f.client.BlockCache().Len())
}

func TestStream_CloseWaitsForRead(t *testing.T) {
	ctx := context.Background()
	store := &gateStore{BlobStore: blobstore.NewMemoryStore(), gate: make(chan struct{})}
	f := newFixture(t, store)
	f.putFile(t, "/a", testutil.NewRNG(15).Text(100), testutil.FileOptions{})
	s := f.open(t, "/a")

	read := make(chan error, 1)
	go func() {
		_, err := s.Read(ctx, make([]byte, 100))
		read <- err
	}()
	require.Eventually(t, func() bool {
		return f.catalog.Lookups() == 1
	}, time.Second, time.Millisecond)

	closed := make(chan error, 1)
	go func() { closed <- s.Close(ctx) }()
	time.AfterFunc(20*time.Millisecond, func() { close(store.gate) })

	require.NoError(t, <-read)
	require.NoError(t, <-closed)
	assert.Zero(t, f.client.BlockCache().Len())
	assert.Equal(t, int64(100), f.client.Statistics().OpLen())
}

func TestStream_EmptyFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.putFile(t, "/empty", nil, testutil.FileOptions{})
	s := f.open(t, "/empty")

	n, err := s.ReadAt(ctx, make([]byte, 8), 0)
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, n)

	require.NoError(t, s.Close(ctx))
	assert.Zero(t, f.client.Statistics().Capacity())
}

func TestStream_ConcurrentReadAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	data := testutil.NewRNG(10).Text(16 * testBlockSize)
	f.putFile(t, "/a", data, testutil.FileOptions{Compression: namenode.CompressionLZ4})
	s := f.open(t, "/a")

	rng := testutil.NewRNG(11)
	const workers, reads = 16, 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < reads; i++ {
				off := rng.Int63n(int64(len(data)))
				p := make([]byte, 1+rng.Intn(3*testBlockSize))
				n, err := s.ReadAt(ctx, p, off)
				if err != nil {
					assert.Equal(t, io.EOF, err)
				}
				assert.Equal(t, data[off:off+int64(n)], p[:n])
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.Close(ctx))
	total := f.client.Statistics()
	assert.Equal(t, int64(workers*reads), total.TotalOps())
	// Each block location was looked up at most once per descriptor.
	assert.LessOrEqual(t, f.catalog.Lookups(), int64(16))
}

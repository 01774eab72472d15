package blockloc

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/blockloc/blobstore"
	"github.com/hupe1980/blockloc/internal/blockcodec"
	"github.com/hupe1980/blockloc/internal/conv"
	"github.com/hupe1980/blockloc/iostats"
	"github.com/hupe1980/blockloc/namenode"
	"golang.org/x/sync/errgroup"
)

// Stream is a read stream over one open file.
//
// ReadAt, ReadAsync and Prefetch may be called concurrently. Read and Seek
// share the stream position and are serialized against each other. Close
// waits for every read and prefetch that started before it.
type Stream struct {
	client *Client
	fd     int64
	file   namenode.FileInfo
	stats  *iostats.Statistics
	logger *Logger

	posMu sync.Mutex
	pos   int64

	mu         sync.Mutex
	prefetched *roaring64.Bitmap // indices with an outstanding slot
	slots      map[int64]*prefetchSlot

	closed    atomic.Bool
	inflight  sync.WaitGroup // reads and prefetch batches
	closeOnce sync.Once
}

type prefetchSlot struct {
	done chan struct{}
	data []byte
	err  error
}

func newStream(c *Client, fd int64, file namenode.FileInfo) *Stream {
	return &Stream{
		client:     c,
		fd:         fd,
		file:       file,
		stats:      iostats.New("input"),
		logger:     c.opts.logger.WithFD(fd).WithPath(file.Path),
		prefetched: roaring64.New(),
		slots:      make(map[int64]*prefetchSlot),
	}
}

// FD returns the file descriptor assigned at Open.
func (s *Stream) FD() int64 { return s.fd }

// Size returns the file size in bytes.
func (s *Stream) Size() int64 { return s.file.Size }

// Info returns the file metadata captured at Open.
func (s *Stream) Info() namenode.FileInfo { return s.file }

// Statistics returns the per-stream statistics.
func (s *Stream) Statistics() *iostats.Statistics { return s.stats }

// ReadAt reads len(p) bytes at off. It returns io.EOF when fewer bytes remain.
func (s *Stream) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if !s.track() {
		return 0, ErrClosed
	}
	defer s.inflight.Done()

	return s.readAt(ctx, p, off)
}

func (s *Stream) readAt(ctx context.Context, p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}

	start := time.Now()
	defer func() {
		s.stats.RecordOperation(int64(n))
		s.client.opts.metricsCollector.RecordRead(n, time.Since(start), err)
	}()

	size := s.file.Size
	for n < len(p) && off+int64(n) < size {
		cur := off + int64(n)
		index := cur / s.file.BlockSize
		within := cur - index*s.file.BlockSize

		data, err := s.block(ctx, index)
		if err != nil {
			return n, err
		}
		if within >= int64(len(data)) {
			return n, fmt.Errorf("block %d of %s: %w", index, s.file.Path, io.ErrUnexpectedEOF)
		}
		n += copy(p[n:], data[within:])
	}

	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// block returns the decoded payload of block index and classifies the access.
func (s *Stream) block(ctx context.Context, index int64) ([]byte, error) {
	info, cached, err := s.client.resolver.Resolve(ctx, s.fd, s.file.Path, s.file, index)
	if err != nil {
		return nil, err
	}
	if cached {
		s.stats.IncCachedOps()
	}
	s.countLocality(info)

	if slot := s.takeSlot(index); slot != nil {
		s.stats.IncPrefetchedOps()
		select {
		case <-slot.done:
			s.stats.IncPrefetchedNonblockingOps()
		default:
			s.stats.IncPrefetchedBlockingOps()
			select {
			case <-slot.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if slot.err == nil {
			return slot.data, nil
		}
		s.logger.DebugContext(ctx, "prefetch failed, refetching", "block", index, "error", slot.err)
	}

	s.stats.IncBlockingOps()
	return s.fetch(ctx, index, info)
}

func (s *Stream) countLocality(info namenode.BlockInfo) {
	switch {
	case s.file.Dir && info.Local:
		s.stats.IncLocalDirOps()
	case s.file.Dir:
		s.stats.IncRemoteDirOps()
	case info.Local:
		s.stats.IncLocalOps()
	default:
		s.stats.IncRemoteOps()
	}
}

// fetch reads and decodes one framed block from the data tier.
func (s *Stream) fetch(ctx context.Context, index int64, info namenode.BlockInfo) ([]byte, error) {
	length, err := conv.Int64ToInt(info.Length)
	if err != nil {
		return nil, fmt.Errorf("block %d of %s: %w", index, s.file.Path, err)
	}
	if err := s.client.opts.resource.AcquireIO(ctx, length); err != nil {
		return nil, err
	}

	frame, err := blobstore.ReadFull(ctx, s.client.store, info.Addr, info.Offset, info.Length)
	if err != nil {
		return nil, fmt.Errorf("read block %d of %s: %w", index, s.file.Path, err)
	}

	data, err := blockcodec.Decode(frame)
	if err != nil {
		return nil, fmt.Errorf("decode block %d of %s: %w", index, s.file.Path, err)
	}
	return data, nil
}

func (s *Stream) takeSlot(index int64) *prefetchSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[index]
	if !ok {
		return nil
	}
	delete(s.slots, index)
	s.prefetched.Remove(uint64(index))
	return slot
}

// Read reads from the current position and advances it.
func (s *Stream) Read(ctx context.Context, p []byte) (int, error) {
	if !s.track() {
		return 0, ErrClosed
	}
	defer s.inflight.Done()

	s.posMu.Lock()
	defer s.posMu.Unlock()

	if s.pos >= s.file.Size && len(p) > 0 {
		return 0, io.EOF
	}
	n, err := s.readAt(ctx, p, s.pos)
	s.pos += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// Seek sets the position for the next Read. Offsets outside [0, Size] are
// rejected with ErrInvalidOffset.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}

	s.posMu.Lock()
	defer s.posMu.Unlock()

	s.stats.IncSeeks()

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = s.file.Size + offset
	default:
		return s.pos, fmt.Errorf("seek: invalid whence %d: %w", whence, ErrInvalidOffset)
	}
	if abs < 0 || abs > s.file.Size {
		return s.pos, ErrInvalidOffset
	}
	s.pos = abs
	return abs, nil
}

// ReadAsync starts ReadAt in the background. p must not be touched until the
// returned Future completes.
func (s *Stream) ReadAsync(ctx context.Context, p []byte, off int64) *Future {
	f := newFuture()

	if !s.track() {
		f.complete(0, ErrClosed)
		return f
	}
	s.stats.IncNonblockingOps()

	go func() {
		defer s.inflight.Done()
		f.complete(s.readAt(ctx, p, off))
	}()
	return f
}

// track registers background work unless the stream is closed.
func (s *Stream) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.inflight.Add(1)
	return true
}

// Prefetch starts fetching every block overlapping [off, off+length) that
// does not already have an outstanding prefetch. It does not wait for the
// fetches; failures surface as a synchronous refetch on the next read.
func (s *Stream) Prefetch(ctx context.Context, off, length int64) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if off < 0 || off > s.file.Size {
		return ErrInvalidOffset
	}
	length = min(length, s.file.Size-off)
	if length <= 0 {
		return nil
	}
	end := off + length

	first := off / s.file.BlockSize
	last := (end - 1) / s.file.BlockSize

	type job struct {
		index int64
		slot  *prefetchSlot
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return ErrClosed
	}
	var jobs []job
	for i := first; i <= last; i++ {
		if s.prefetched.Contains(uint64(i)) {
			continue
		}
		slot := &prefetchSlot{done: make(chan struct{})}
		s.prefetched.Add(uint64(i))
		s.slots[i] = slot
		jobs = append(jobs, job{index: i, slot: slot})
	}
	if len(jobs) > 0 {
		s.inflight.Add(1)
	}
	s.mu.Unlock()

	if len(jobs) == 0 {
		return nil
	}

	go func() {
		defer s.inflight.Done()

		// A failed block must not cancel its siblings, so errors stay in
		// the slots.
		var g errgroup.Group
		g.SetLimit(s.client.opts.prefetchConcurrency)
		for _, j := range jobs {
			g.Go(func() error {
				defer close(j.slot.done)

				info, _, err := s.client.resolver.resolve(ctx, s.fd, s.file.Path, s.file, j.index, true)
				if err == nil {
					j.slot.data, err = s.fetch(ctx, j.index, info)
				}
				if err != nil {
					s.logger.DebugContext(ctx, "prefetch incomplete", "block", j.index, "error", err)
				}
				j.slot.err = err
				return nil
			})
		}
		_ = g.Wait()
	}()
	return nil
}

// Close waits for in-flight reads and prefetches, records the file capacity
// and merges the stream statistics into the client statistics. Only the first
// call has an effect.
func (s *Stream) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		s.mu.Unlock()

		s.inflight.Wait()

		var locations int
		if fc, ok := s.client.cache.Lookup(s.fd); ok {
			locations = fc.Len()
		}

		s.stats.SetCapacity(s.file.Capacity())
		s.client.stats.Merge(s.stats)
		s.client.cache.Remove(s.fd)
		s.client.forget(s.fd)

		s.client.opts.metricsCollector.RecordStreamClose(s.stats.Snapshot())
		s.logger.LogClose(ctx, s.stats, locations)
	})
	return nil
}

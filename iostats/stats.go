package iostats

import (
	"fmt"
	"sync/atomic"
)

// Statistics is a bank of monotonically increasing I/O counters.
// All methods are safe for concurrent use.
type Statistics struct {
	mode string
	bank atomic.Pointer[bank]
}

// New creates zeroed statistics tagged with mode (e.g. "input", "client").
func New(mode string) *Statistics {
	s := &Statistics{mode: mode}
	s.bank.Store(new(bank))
	return s
}

// Mode returns the tag given to New.
func (s *Statistics) Mode() string {
	return s.mode
}

func (s *Statistics) inc(c counter) {
	s.bank.Load().add(c, 1)
}

func (s *Statistics) get(c counter) int64 {
	return s.bank.Load().load(c)
}

// RecordOperation counts one completed operation of length bytes.
// The count and the length land in the same counter generation, so a Reset
// never separates them. The length is added before the count and readers
// load the count first, so no snapshot shows an operation without its length.
func (s *Statistics) RecordOperation(length int64) {
	b := s.bank.Load()
	b.add(opLen, length)
	b.add(totalOps, 1)
}

// IncLocalOps counts a block of a regular file served from a local data node.
func (s *Statistics) IncLocalOps() { s.inc(localOps) }

// IncRemoteOps counts a block of a regular file served from a remote data node.
func (s *Statistics) IncRemoteOps() { s.inc(remoteOps) }

// IncLocalDirOps counts a directory block served from a local data node.
func (s *Statistics) IncLocalDirOps() { s.inc(localDirOps) }

// IncRemoteDirOps counts a directory block served from a remote data node.
func (s *Statistics) IncRemoteDirOps() { s.inc(remoteDirOps) }

// IncCachedOps counts a block whose location came from the block cache.
func (s *Statistics) IncCachedOps() { s.inc(cachedOps) }

// IncNonblockingOps counts an asynchronous read request.
func (s *Statistics) IncNonblockingOps() { s.inc(nonblockingOps) }

// IncBlockingOps counts a block fetched synchronously by the reader.
func (s *Statistics) IncBlockingOps() { s.inc(blockingOps) }

// IncPrefetchedOps counts a block served from a prefetch slot.
func (s *Statistics) IncPrefetchedOps() { s.inc(prefetchedOps) }

// IncPrefetchedBlockingOps counts a prefetched block the reader had to wait for.
func (s *Statistics) IncPrefetchedBlockingOps() { s.inc(prefetchedBlockingOps) }

// IncPrefetchedNonblockingOps counts a prefetched block that was ready when read.
func (s *Statistics) IncPrefetchedNonblockingOps() { s.inc(prefetchedNonblockingOps) }

// IncSeeks counts a seek.
func (s *Statistics) IncSeeks() { s.inc(totalSeeks) }

// SetCapacity overwrites the capacity accumulator.
// A stream records its own capacity with it right before being merged.
func (s *Statistics) SetCapacity(v int64) {
	s.bank.Load()[capacity].Store(v)
}

// TotalOps returns the number of recorded operations.
func (s *Statistics) TotalOps() int64 { return s.get(totalOps) }

// LocalOps returns the LocalOps counter.
func (s *Statistics) LocalOps() int64 { return s.get(localOps) }

// RemoteOps returns the RemoteOps counter.
func (s *Statistics) RemoteOps() int64 { return s.get(remoteOps) }

// LocalDirOps returns the LocalDirOps counter.
func (s *Statistics) LocalDirOps() int64 { return s.get(localDirOps) }

// RemoteDirOps returns the RemoteDirOps counter.
func (s *Statistics) RemoteDirOps() int64 { return s.get(remoteDirOps) }

// CachedOps returns the CachedOps counter.
func (s *Statistics) CachedOps() int64 { return s.get(cachedOps) }

// NonblockingOps returns the NonblockingOps counter.
func (s *Statistics) NonblockingOps() int64 { return s.get(nonblockingOps) }

// BlockingOps returns the BlockingOps counter.
func (s *Statistics) BlockingOps() int64 { return s.get(blockingOps) }

// PrefetchedOps returns the PrefetchedOps counter.
func (s *Statistics) PrefetchedOps() int64 { return s.get(prefetchedOps) }

// PrefetchedBlockingOps returns the PrefetchedBlockingOps counter.
func (s *Statistics) PrefetchedBlockingOps() int64 { return s.get(prefetchedBlockingOps) }

// PrefetchedNonblockingOps returns the PrefetchedNonblockingOps counter.
func (s *Statistics) PrefetchedNonblockingOps() int64 { return s.get(prefetchedNonblockingOps) }

// TotalSeeks returns the number of seeks.
func (s *Statistics) TotalSeeks() int64 { return s.get(totalSeeks) }

// TotalStreams returns the number of merged streams.
func (s *Statistics) TotalStreams() int64 { return s.get(totalStreams) }

// OpLen returns the summed length of all recorded operations.
func (s *Statistics) OpLen() int64 { return s.get(opLen) }

// Capacity returns the capacity accumulator.
func (s *Statistics) Capacity() int64 { return s.get(capacity) }

// AvgOpLen returns OpLen / TotalOps, or 0 if no operation was recorded.
func (s *Statistics) AvgOpLen() int64 {
	b := s.bank.Load()
	n := b.load(totalOps)
	return avg(b.load(opLen), n)
}

// AvgCapacity returns Capacity / TotalStreams, or 0 if nothing was merged.
func (s *Statistics) AvgCapacity() int64 {
	b := s.bank.Load()
	return avg(b.load(capacity), b.load(totalStreams))
}

// Merge adds every counter and accumulator of other into s and counts one
// more stream. It must be called once per merged instance.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}

	src := other.bank.Load()
	dst := s.bank.Load()
	for c := counter(0); c < numCounters; c++ {
		if c == totalOps || c == totalStreams {
			continue
		}
		if v := src.load(c); v != 0 {
			dst.add(c, v)
		}
	}
	// Operation count after its lengths, as in RecordOperation.
	dst.add(totalOps, src.load(totalOps))
	dst.add(totalStreams, 1)
}

// Reset zeroes all counters and accumulators in one step.
// Increments racing with Reset are applied to the discarded generation and
// are therefore ordered before it.
func (s *Statistics) Reset() {
	s.bank.Store(new(bank))
}

// Snapshot returns a copy of all counters.
func (s *Statistics) Snapshot() Snapshot {
	b := s.bank.Load()
	return Snapshot{
		Mode:                     s.mode,
		TotalOps:                 b.load(totalOps),
		LocalOps:                 b.load(localOps),
		RemoteOps:                b.load(remoteOps),
		LocalDirOps:              b.load(localDirOps),
		RemoteDirOps:             b.load(remoteDirOps),
		CachedOps:                b.load(cachedOps),
		NonblockingOps:           b.load(nonblockingOps),
		BlockingOps:              b.load(blockingOps),
		PrefetchedOps:            b.load(prefetchedOps),
		PrefetchedBlockingOps:    b.load(prefetchedBlockingOps),
		PrefetchedNonblockingOps: b.load(prefetchedNonblockingOps),
		TotalSeeks:               b.load(totalSeeks),
		TotalStreams:             b.load(totalStreams),
		OpLen:                    b.load(opLen),
		Capacity:                 b.load(capacity),
	}
}

// ProviderName implements Provider.
func (s *Statistics) ProviderName() string {
	return "IOStatistics, " + s.mode
}

// Describe implements Provider. See Snapshot.Describe for the format.
func (s *Statistics) Describe() string {
	return s.Snapshot().Describe()
}

func (s *Statistics) String() string {
	return s.ProviderName() + ", " + s.Describe()
}

// Snapshot is a point-in-time copy of a Statistics value.
type Snapshot struct {
	Mode                     string
	TotalOps                 int64
	LocalOps                 int64
	RemoteOps                int64
	LocalDirOps              int64
	RemoteDirOps             int64
	CachedOps                int64
	NonblockingOps           int64
	BlockingOps              int64
	PrefetchedOps            int64
	PrefetchedBlockingOps    int64
	PrefetchedNonblockingOps int64
	TotalSeeks               int64
	TotalStreams             int64
	OpLen                    int64
	Capacity                 int64
}

// AvgOpLen returns OpLen / TotalOps, or 0 if TotalOps is 0.
func (s Snapshot) AvgOpLen() int64 {
	return avg(s.OpLen, s.TotalOps)
}

// AvgCapacity returns Capacity / TotalStreams, or 0 if TotalStreams is 0.
func (s Snapshot) AvgCapacity() int64 {
	return avg(s.Capacity, s.TotalStreams)
}

// Describe renders the counters as a single line. The field order is fixed
// and consumed by log scrapers; do not reorder.
func (s Snapshot) Describe() string {
	return fmt.Sprintf("total %d, localOps %d, remoteOps %d, localDirOps %d, remoteDirOps %d, "+
		"cached %d, nonBlocking %d, blocking %d, "+
		"prefetched %d, prefetchedNonBlocking %d, prefetchedBlocking %d, "+
		"capacity %d, totalStreams %d, avgCapacity %d, avgOpLen %d",
		s.TotalOps, s.LocalOps, s.RemoteOps, s.LocalDirOps, s.RemoteDirOps,
		s.CachedOps, s.NonblockingOps, s.BlockingOps,
		s.PrefetchedOps, s.PrefetchedNonblockingOps, s.PrefetchedBlockingOps,
		s.Capacity, s.TotalStreams, s.AvgCapacity(), s.AvgOpLen())
}

package iostats

import "sync/atomic"

type counter int

const (
	totalOps counter = iota
	localOps
	remoteOps
	localDirOps
	remoteDirOps
	cachedOps
	nonblockingOps
	blockingOps
	prefetchedOps
	prefetchedBlockingOps
	prefetchedNonblockingOps
	totalSeeks
	totalStreams
	opLen
	capacity
	numCounters
)

// bank is one generation of counters. Reset swaps in a fresh bank, so a
// reader never sees a half-zeroed set.
type bank [numCounters]atomic.Int64

func (b *bank) add(c counter, delta int64) {
	b[c].Add(delta)
}

func (b *bank) load(c counter) int64 {
	return b[c].Load()
}

// avg divides sum by n, returning 0 when n is not positive.
func avg(sum, n int64) int64 {
	if n <= 0 {
		return 0
	}
	return sum / n
}

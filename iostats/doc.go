// Package iostats counts I/O operation classes per stream and rolls them up
// into process-wide totals.
//
// Every counter is an independent atomic, so updates never serialize on a
// lock. A stream owns one Statistics value for its lifetime and merges it
// exactly once into a shared instance when it closes:
//
//	total := iostats.New("client")
//	s := iostats.New("input")
//	s.RecordOperation(4096)
//	s.IncRemoteOps()
//	...
//	s.SetCapacity(capacity)
//	total.Merge(s)
//
// Merge is not idempotent. Merging the same stream twice counts it twice.
//
// Getters are point-in-time reads of independent atomics. Under concurrent
// writers a Snapshot may mix values from slightly different instants; the
// numbers are advisory.
package iostats

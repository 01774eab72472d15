// Package resource implements the Controller that admits metadata lookups
// and data tier reads.
//
//	┌───────────────────────────────────────────────────────────┐
//	│                        Controller                         │
//	├──────────────────┬──────────────────┬─────────────────────┤
//	│ In-flight limit  │ Lookup rate      │ Data byte rate      │
//	│ (semaphore)      │ (token bucket)   │ (token bucket)      │
//	├──────────────────┼──────────────────┼─────────────────────┤
//	│ AcquireLookup    │ (shared with     │ AcquireIO           │
//	│ TryAcquireLookup │  AcquireLookup)  │ TryAcquireIO        │
//	│ ReleaseLookup    │                  │                     │
//	└──────────────────┴──────────────────┴─────────────────────┘
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MaxInflightLookups: 32,
//	    LookupsPerSec:      5000,
//	    IOLimitBytesPerSec: 256 << 20,
//	})
//
//	if err := rc.AcquireLookup(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseLookup()
//
// All methods are safe for concurrent use and treat a nil *Controller as
// unlimited.
package resource

package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrLookupLimitExceeded is returned by TryAcquireLookup when no slot or
// token is immediately available.
var ErrLookupLimitExceeded = errors.New("lookup limit exceeded")

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MaxInflightLookups bounds concurrent metadata lookups.
	MaxInflightLookups int64

	// LookupsPerSec bounds the metadata lookup rate.
	LookupsPerSec float64

	// LookupBurst is the token bucket size for lookups. Defaults to
	// max(1, LookupsPerSec).
	LookupBurst int

	// IOLimitBytesPerSec bounds data tier read throughput.
	IOLimitBytesPerSec int64
}

// Controller enforces the limits in Config.
type Controller struct {
	cfg Config

	lookupSem     *semaphore.Weighted // nil if unlimited
	lookupLimiter *rate.Limiter       // nil if unlimited
	inflight      atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInflightLookups > 0 {
		c.lookupSem = semaphore.NewWeighted(cfg.MaxInflightLookups)
	}

	if cfg.LookupsPerSec > 0 {
		burst := cfg.LookupBurst
		if burst <= 0 {
			burst = max(1, int(cfg.LookupsPerSec))
		}
		c.lookupLimiter = rate.NewLimiter(rate.Limit(cfg.LookupsPerSec), burst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the configured limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireLookup blocks until a lookup slot and a rate token are available.
// Every successful call must be paired with ReleaseLookup.
func (c *Controller) AcquireLookup(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.lookupSem != nil {
		if err := c.lookupSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if c.lookupLimiter != nil {
		if err := c.lookupLimiter.Wait(ctx); err != nil {
			if c.lookupSem != nil {
				c.lookupSem.Release(1)
			}
			return err
		}
	}
	c.inflight.Add(1)
	return nil
}

// TryAcquireLookup is the non-blocking form of AcquireLookup.
func (c *Controller) TryAcquireLookup() error {
	if c == nil {
		return nil
	}
	if c.lookupSem != nil && !c.lookupSem.TryAcquire(1) {
		return ErrLookupLimitExceeded
	}
	if c.lookupLimiter != nil && !c.lookupLimiter.Allow() {
		if c.lookupSem != nil {
			c.lookupSem.Release(1)
		}
		return ErrLookupLimitExceeded
	}
	c.inflight.Add(1)
	return nil
}

// ReleaseLookup releases a slot taken by AcquireLookup or TryAcquireLookup.
func (c *Controller) ReleaseLookup() {
	if c == nil {
		return
	}
	if c.lookupSem != nil {
		c.lookupSem.Release(1)
	}
	c.inflight.Add(-1)
}

// InflightLookups returns the number of lookups currently admitted.
func (c *Controller) InflightLookups() int64 {
	if c == nil {
		return 0
	}
	return c.inflight.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than the bucket are admitted in bucket-sized steps.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireIO attempts to acquire IO tokens without blocking.
func (c *Controller) TryAcquireIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}

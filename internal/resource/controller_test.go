package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_InflightLimit(t *testing.T) {
	c := NewController(Config{MaxInflightLookups: 2})

	require.NoError(t, c.AcquireLookup(t.Context()))
	require.NoError(t, c.AcquireLookup(t.Context()))
	assert.Equal(t, int64(2), c.InflightLookups())

	assert.ErrorIs(t, c.TryAcquireLookup(), ErrLookupLimitExceeded)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireLookup(ctx), context.DeadlineExceeded)

	c.ReleaseLookup()
	assert.Equal(t, int64(1), c.InflightLookups())
	require.NoError(t, c.TryAcquireLookup())
}

func TestController_LookupRate(t *testing.T) {
	c := NewController(Config{LookupsPerSec: 1, LookupBurst: 1})

	require.NoError(t, c.TryAcquireLookup())
	c.ReleaseLookup()

	// Bucket is empty until a second passes.
	assert.ErrorIs(t, c.TryAcquireLookup(), ErrLookupLimitExceeded)
	assert.Zero(t, c.InflightLookups())
}

func TestController_RateFailureReleasesSlot(t *testing.T) {
	c := NewController(Config{MaxInflightLookups: 1, LookupsPerSec: 1, LookupBurst: 1})

	require.NoError(t, c.AcquireLookup(t.Context()))
	c.ReleaseLookup()

	assert.ErrorIs(t, c.TryAcquireLookup(), ErrLookupLimitExceeded)
	// The semaphore slot taken before the rate check must be returned.
	assert.True(t, c.lookupSem.TryAcquire(1))
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 100})

	assert.True(t, c.TryAcquireIO(100))
	assert.False(t, c.TryAcquireIO(50))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireIO(ctx, 50))
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.AcquireLookup(context.Background()))
			c.ReleaseLookup()
		}()
	}
	wg.Wait()

	assert.Zero(t, c.InflightLookups())
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<30))
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireLookup(context.Background()))
	assert.NoError(t, c.TryAcquireLookup())
	c.ReleaseLookup()
	assert.Zero(t, c.InflightLookups())
	assert.NoError(t, c.AcquireIO(context.Background(), 10))
	assert.True(t, c.TryAcquireIO(10))
	assert.Equal(t, Config{}, c.Config())
}

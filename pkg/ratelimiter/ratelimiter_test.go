package ratelimiter_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cc-d/open2fa/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newLimiter(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.Limiter, *clock) {
	t.Helper()
	clk := &clock{now: time.Unix(1700000000, 0)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now), ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	l, err := ratelimiter.New(store, cfg)
	require.NoError(t, err)
	return l, clk
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{name: "zero capacity", cfg: ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}},
		{name: "zero refill rate", cfg: ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}},
		{name: "zero interval", cfg: ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.New(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), tt.cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	assert.False(t, ratelimiter.Config{}.Enabled())
	assert.True(t, ratelimiter.Config{Capacity: 1}.Enabled())
}

func TestLimiter_BurstAndRefill(t *testing.T) {
	t.Parallel()
	l, clk := newLimiter(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		res, err := l.Allow(ctx, "user")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, want, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := l.Allow(ctx, "user")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Second, res.RetryAfter(clk.Now()))

	res, err = l.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, res.Allowed(), "keys are independent")

	clk.Advance(time.Second)
	res, err = l.Allow(ctx, "user")
	require.NoError(t, err)
	assert.True(t, res.Allowed(), "denials do not drain the bucket")
	assert.Equal(t, 0, res.Remaining)

	clk.Advance(time.Hour)
	res, err = l.Allow(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining, "refill is capped at capacity")
}

func TestLimiter_AllowN(t *testing.T) {
	t.Parallel()
	l, _ := newLimiter(t, ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute})
	ctx := context.Background()

	_, err := l.AllowN(ctx, "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	res, err := l.AllowN(ctx, "k", 6)
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	res, err = l.AllowN(ctx, "k", 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	require.NoError(t, l.Reset(ctx, "k"))
	res, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Remaining)
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()
	l, _ := newLimiter(t, ratelimiter.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour})

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Allow(context.Background(), "shared")
			if err == nil && res.Allowed() {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(50), allowed.Load())
}

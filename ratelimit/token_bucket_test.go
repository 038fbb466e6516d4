package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func TestTakeAllowsExactlyCapacityWithoutElapsedTime(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(60, 1.0/1000, WithClock(clk.Now))

	for i := 0; i < 60; i++ {
		require.Truef(t, b.Take(1), "take #%d should succeed", i+1)
	}
	assert.False(t, b.Take(1), "61st take should fail until time elapses")

	clk.Advance(time.Second)
	assert.True(t, b.Take(1))
	assert.False(t, b.Take(1))
}

func TestTakeFailureLeavesStateUnchanged(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(5, 1.0/1000, WithClock(clk.Now))

	require.True(t, b.Take(3))
	assert.False(t, b.Take(3))
	assert.InDelta(t, 2.0, b.Available(), 1e-9)
}

func TestRefillNeverExceedsCapacity(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(10, 1.0/1000, WithClock(clk.Now))

	require.True(t, b.Take(4))
	clk.Advance(time.Hour)
	assert.InDelta(t, 10.0, b.Available(), 1e-9)

	for i := 0; i < 100; i++ {
		b.Take(1)
		clk.Advance(300 * time.Millisecond)
		avail := b.Available()
		assert.GreaterOrEqual(t, avail, 0.0)
		assert.LessOrEqual(t, avail, 10.0)
	}
}

func TestClockGoingBackwardsDoesNotRefill(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(2, 1.0/1000, WithClock(clk.Now))

	require.True(t, b.Take(2))
	clk.Advance(-time.Minute)
	assert.False(t, b.Take(1))
}

func TestClockGoingBackwardsDoesNotCreditTwice(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(2, 1.0/1000, WithClock(clk.Now))

	require.True(t, b.Take(1))
	clk.Advance(-time.Minute)
	require.True(t, b.Take(1))

	clk.Advance(time.Minute)
	assert.False(t, b.Take(1), "returning to the original time must not refill")
	assert.InDelta(t, 0.0, b.Available(), 1e-9)

	clk.Advance(time.Second)
	assert.True(t, b.Take(1))
}

func TestWaitTime(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(2, 1.0/1000, WithClock(clk.Now))

	assert.Equal(t, time.Duration(0), b.WaitTime(1))

	require.True(t, b.Take(2))
	assert.InDelta(t, float64(time.Second), float64(b.WaitTime(1)), float64(time.Microsecond))

	clk.Advance(250 * time.Millisecond)
	assert.InDelta(t, float64(750*time.Millisecond), float64(b.WaitTime(1)), float64(time.Microsecond))
}

func TestWaitSleepsUntilTokenAvailable(t *testing.T) {
	clk := newFakeClock()
	var slept []time.Duration
	sleeper := func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		clk.Advance(d)
		return nil
	}
	b := NewTokenBucket(1, 1.0/1000, WithClock(clk.Now), WithSleeper(sleeper))

	require.NoError(t, b.Wait(context.Background(), 1))
	assert.Empty(t, slept)

	require.NoError(t, b.Wait(context.Background(), 1))
	require.NotEmpty(t, slept)
	var total time.Duration
	for _, d := range slept {
		total += d
	}
	assert.InDelta(t, float64(time.Second), float64(total), float64(time.Millisecond))
}

func TestWaitRejectsMoreThanCapacity(t *testing.T) {
	b := NewTokenBucket(3, 1.0/1000)
	assert.ErrorIs(t, b.Wait(context.Background(), 4), ErrExceedsCapacity)
}

func TestWaitReturnsOnCancel(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(1, 1.0/1000, WithClock(clk.Now))
	require.True(t, b.Take(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx, 1), context.Canceled)
}

func TestConcurrentTakeNeverOverspends(t *testing.T) {
	clk := newFakeClock()
	b := NewTokenBucket(50, 1.0/1000, WithClock(clk.Now))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Take(1) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, granted)
	assert.InDelta(t, 0.0, b.Available(), 1e-9)
}

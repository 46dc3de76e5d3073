package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow_BurstPerClient(t *testing.T) {
	tests := []struct {
		name     string
		burst    int
		attempts int
		want     int
	}{
		{"within burst", 3, 3, 3},
		{"over burst", 2, 5, 2},
		{"single token", 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(0.5, tt.burst)
			defer rl.Stop()

			allowed := 0
			for range tt.attempts {
				if rl.Allow("203.0.113.7") {
					allowed++
				}
			}
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestAllow_ClientsAreIndependent(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	require.True(t, rl.Allow("198.51.100.1"))
	assert.False(t, rl.Allow("198.51.100.1"), "first client spent its token")
	assert.True(t, rl.Allow("198.51.100.2"), "second client has its own bucket")
	assert.Equal(t, 2, rl.Len())
}

func TestAllow_Concurrent(t *testing.T) {
	rl := New(0.01, 10)
	defer rl.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("login") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestWait_PacesCalls(t *testing.T) {
	rl := New(20, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, rl.Wait(ctx, "quotes"))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx, "quotes"))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond, "second call waits for a refill")
}

func TestWait_ContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()
	rl.Allow("quotes")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, rl.Wait(ctx, "quotes"))
}

func TestEvery_RefusesAfterBudget(t *testing.T) {
	rl := Every(5, 30*time.Second)
	defer rl.Stop()

	for i := range 5 {
		require.True(t, rl.Allow("203.0.113.9"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("203.0.113.9"))

	wait := rl.RetryAfter("203.0.113.9")
	assert.Positive(t, wait)
	assert.LessOrEqual(t, wait, 6*time.Second, "one token refills every 6s")
}

func TestRetryAfter_ZeroWhenTokensRemain(t *testing.T) {
	rl := New(1, 2)
	defer rl.Stop()

	rl.Allow("203.0.113.10")
	assert.Zero(t, rl.RetryAfter("203.0.113.10"))
}

func TestEvictIdle(t *testing.T) {
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)
	rl := New(1, 1, WithIdleTTL(time.Minute))
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	rl.Allow("stale")
	now = now.Add(2 * time.Minute)
	rl.Allow("active")

	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.Len())
	assert.True(t, rl.Allow("stale"), "an evicted client starts with a full bucket")
}

func TestStop_Idempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

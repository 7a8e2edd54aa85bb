package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFixedWindow(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	l := NewMemory(2, time.Minute, clock)

	for i, want := range []bool{true, true, false} {
		d, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, want, d.Allowed, "request %d", i)
	}

	d, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "keys are independent")
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)

	clock.Advance(time.Minute)
	d, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "window reset")
}

func TestMemorySweep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := NewMemory(1, time.Second, clock)
	l.windows["old"] = &window{count: 5, resetAt: clock.Now()}
	l.windows["live"] = &window{count: 1, resetAt: clock.Now().Add(time.Second)}

	l.sweep(clock.Now())
	assert.NotContains(t, l.windows, "old")
	assert.Contains(t, l.windows, "live")
}

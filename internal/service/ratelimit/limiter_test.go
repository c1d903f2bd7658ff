package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstPerKey(t *testing.T) {
	l := New(0.001, 2)

	assert.True(t, l.Allow("fred"))
	assert.True(t, l.Allow("fred"))
	assert.False(t, l.Allow("fred"))
	assert.True(t, l.Allow("other"), "keys have separate buckets")
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := New(0.001, 1)
	require.True(t, l.Allow("k"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "k"))
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background(), "k"))
	}
}

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestTokenLimiter_Wait(t *testing.T) {
	l := NewTokenLimiter(100)

	require.NoError(t, l.Wait(context.Background(), 60))
	assert.Equal(t, 40, l.GetRemaining())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, 60)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 40, l.GetRemaining())
}

func TestTokenLimiter_OversizedRequestOnFullWindow(t *testing.T) {
	l := NewTokenLimiter(10)
	require.NoError(t, l.Wait(context.Background(), 25))
	assert.Equal(t, 0, l.GetRemaining())
}

func TestTokenLimiter_Refill(t *testing.T) {
	l := NewTokenLimiter(10)
	l.refillPeriod = 10 * time.Millisecond
	require.NoError(t, l.Wait(context.Background(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Wait(ctx, 5))
	assert.Equal(t, 5, l.GetRemaining())
}

func TestLimiterStore_GetLimiter(t *testing.T) {
	s := NewLimiterStore(rate.Limit(1), 1)
	a := s.GetLimiter("a")
	assert.Same(t, a, s.GetLimiter("a"))
	assert.NotSame(t, a, s.GetLimiter("b"))
}

func TestLimiterStore_Cleanup(t *testing.T) {
	s := NewLimiterStore(rate.Limit(1), 1)
	s.GetLimiter("old")
	time.Sleep(20 * time.Millisecond)
	s.GetLimiter("fresh")

	assert.Equal(t, 1, s.Cleanup(10*time.Millisecond))
	assert.Equal(t, 0, s.Cleanup(time.Minute))
}

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBucketAllowsBurstThenThrottles(t *testing.T) {
	b := NewBucket(1, 3)
	require.True(t, b.Consume())
	require.True(t, b.Consume())
	require.True(t, b.Consume())
	require.False(t, b.Consume(), "the burst is exhausted")
}

func TestBucketRefillsOverTime(t *testing.T) {
	b := NewBucket(100, 1)
	require.True(t, b.Consume())
	require.False(t, b.Consume())

	time.Sleep(20 * time.Millisecond)
	require.True(t, b.Consume(), "100/s refill should have restored at least one token in 20ms")
}

func TestBucketNeverExceedsBurstCapacity(t *testing.T) {
	b := NewBucket(1000, 2)
	time.Sleep(50 * time.Millisecond)
	require.True(t, b.Consume())
	require.True(t, b.Consume())
	require.False(t, b.Consume(), "refill must clamp at burst even after a long idle period")
}

// Package ratelimit implements the token-bucket rate limiter used to
// throttle per-connection message rates (spec §5), ported directly from
// original_source/backend/game/server/rate_limit.py's TokenBucket.
package ratelimit

import (
	"sync"
	"time"
)

type Bucket struct {
	mu         sync.Mutex
	rate       float64
	burst      float64
	tokens     float64
	lastRefill time.Time
}

func NewBucket(ratePerSecond float64, burst int) *Bucket {
	return &Bucket{rate: ratePerSecond, burst: float64(burst), tokens: float64(burst), lastRefill: time.Now()}
}

// Consume tries to take one token; returns false if the caller should be
// throttled.
func (b *Bucket) Consume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.burst, b.tokens+elapsed*b.rate)
	b.lastRefill = now
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

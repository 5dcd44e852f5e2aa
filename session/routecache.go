package session

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RouteCache is a local TTL cache of userID -> connector/session lookups,
// grounded on common/cache/ristretto.go's GeneralCache and
// core/infrastructure/cache/user_route_cache.go's GameRouteCache, which
// layered a string-keyed wrapper over it. Collapsed into one type since
// this module has no separate connector-routing service to wrap: a
// session's connection id is looked up directly.
type RouteCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewRouteCache(maxCostBytes int64, ttl time.Duration) (*RouteCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create route cache: %w", err)
	}
	return &RouteCache{cache: c, ttl: ttl}, nil
}

func (c *RouteCache) key(userID string) string { return "user:route:" + userID }

func (c *RouteCache) Set(userID, connID string) bool {
	return c.cache.SetWithTTL(c.key(userID), connID, 1, c.ttl)
}

func (c *RouteCache) Get(userID string) (string, bool) {
	v, ok := c.cache.Get(c.key(userID))
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (c *RouteCache) Delete(userID string) { c.cache.Del(c.key(userID)) }

func (c *RouteCache) Close() { c.cache.Close() }

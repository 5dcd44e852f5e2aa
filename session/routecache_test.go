package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRouteCacheSetGetDelete(t *testing.T) {
	rc, err := NewRouteCache(1<<20, time.Minute)
	require.NoError(t, err)
	defer rc.Close()

	rc.Set("user-1", "conn-abc")
	rc.cache.Wait()

	got, ok := rc.Get("user-1")
	require.True(t, ok)
	require.Equal(t, "conn-abc", got)

	rc.Delete("user-1")
	rc.cache.Wait()
	_, ok = rc.Get("user-1")
	require.False(t, ok)
}

func TestRouteCacheMissReturnsFalse(t *testing.T) {
	rc, err := NewRouteCache(1<<20, time.Minute)
	require.NoError(t, err)
	defer rc.Close()

	_, ok := rc.Get("never-set")
	require.False(t, ok)
}

package gitadapter

import (
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
)

// absent is stored in place of a cached "not found" result so Get can
// distinguish "never looked up" from "looked up and found nothing" without
// a second map.
var absent = struct{}{}

type resultCache struct {
	*ristretto.Cache[string, any]
}

// newResultCache builds the adapter's memoization cache. numCounters==0
// disables caching: get always misses and set/setAbsent are no-ops, so
// callers don't need a separate code path for "caching off".
func newResultCache(numCounters, maxCostMiB int64) (*resultCache, error) {
	if numCounters == 0 {
		return &resultCache{}, nil
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: numCounters,
		MaxCost:     maxCostMiB << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("gitadapter: unable to initialize result cache: %w", err)
	}
	return &resultCache{Cache: c}, nil
}

// get returns (value, true) on a cache hit, where value is nil when the
// cached result was setAbsent. (nil, false) means no cached result at all.
func (c *resultCache) get(key string) (any, bool) {
	if c == nil || c.Cache == nil {
		return nil, false
	}
	v, ok := c.Cache.Get(key)
	if !ok {
		return nil, false
	}
	if v == absent {
		return nil, true
	}
	return v, true
}

func (c *resultCache) set(key string, value any) {
	if c == nil || c.Cache == nil {
		return
	}
	c.Cache.Set(key, value, 1)
}

func (c *resultCache) setAbsent(key string) {
	if c == nil || c.Cache == nil {
		return
	}
	c.Cache.Set(key, absent, 1)
}

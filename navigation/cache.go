package navigation

import (
	"math"
	"time"

	"github.com/kkingfung/Laboratory-sub014/parameter"
	"github.com/kkingfung/Laboratory-sub014/vmath"
)

// quantize rounds a coordinate to the cache key precision
func quantize(v float64) int64 {
	return int64(math.Round(v * parameter.NavCacheKeyPrecision))
}

// pathCacheKey is the approximate fingerprint of a (start, destination) pair:
// every coordinate rounded to fixed precision, components summed.
// Distinct pairs with equal sums collide onto one key; that imprecision is an
// accepted performance trade-off, not a correctness requirement
func pathCacheKey(start, dest vmath.Vec3F) int64 {
	return quantize(start.X) + quantize(start.Y) + quantize(start.Z) +
		quantize(dest.X) + quantize(dest.Y) + quantize(dest.Z)
}

// destKey fingerprints a flow-field destination
func destKey(dest vmath.Vec3F) int64 {
	return quantize(dest.X) + quantize(dest.Y) + quantize(dest.Z)
}

// pathCache owns completed paths; entries expire after ttl and the oldest
// entry is evicted when capacity would be exceeded
type pathCache struct {
	entries  map[int64]*CachedPath
	capacity int
	ttl      time.Duration
	pool     *BufferPool
}

func newPathCache(capacity int, ttl time.Duration, pool *BufferPool) *pathCache {
	return &pathCache{
		entries:  make(map[int64]*CachedPath, capacity),
		capacity: capacity,
		ttl:      ttl,
		pool:     pool,
	}
}

// get returns a live entry, purging it instead when expired
func (c *pathCache) get(key int64, now time.Time) (*CachedPath, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(entry.CreatedAt) > c.ttl {
		c.remove(key)
		return nil, false
	}
	return entry, true
}

// put inserts a path, evicting the entry with the oldest creation time first
// when the cache is full
func (c *pathCache) put(key int64, waypoints []vmath.Vec3F, now time.Time) {
	if existing, ok := c.entries[key]; ok {
		c.pool.ReleasePath(existing.Waypoints)
	} else if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = &CachedPath{Waypoints: waypoints, CreatedAt: now}
}

func (c *pathCache) evictOldest() {
	var oldestKey int64
	var oldest time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.CreatedAt.Before(oldest) {
			first = false
			oldest = entry.CreatedAt
			oldestKey = key
		}
	}
	if !first {
		c.remove(oldestKey)
	}
}

func (c *pathCache) remove(key int64) {
	if entry, ok := c.entries[key]; ok {
		c.pool.ReleasePath(entry.Waypoints)
		delete(c.entries, key)
	}
}

// purgeExpired drops every entry past its lifetime
func (c *pathCache) purgeExpired(now time.Time) {
	for key, entry := range c.entries {
		if now.Sub(entry.CreatedAt) > c.ttl {
			c.remove(key)
		}
	}
}

func (c *pathCache) len() int {
	return len(c.entries)
}

// fieldCache holds one live flow field per destination currently in demand
type fieldCache struct {
	entries map[int64]*FlowField
	ttl     time.Duration
}

func newFieldCache(ttl time.Duration) *fieldCache {
	return &fieldCache{
		entries: make(map[int64]*FlowField),
		ttl:     ttl,
	}
}

func (c *fieldCache) get(dest vmath.Vec3F, now time.Time) (*FlowField, bool) {
	key := destKey(dest)
	field, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(field.CreatedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return field, true
}

func (c *fieldCache) put(field *FlowField) {
	c.entries[destKey(field.Destination)] = field
}

func (c *fieldCache) purgeExpired(now time.Time) {
	for key, field := range c.entries {
		if now.Sub(field.CreatedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

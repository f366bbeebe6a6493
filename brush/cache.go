package brush

import (
	"sync"

	"github.com/gogpu/pixpaint"
)

// DefaultCacheSize is the number of stamps a Cache keeps by default.
const DefaultCacheSize = 8

// Key identifies a generated stamp.
type Key struct {
	Shape    Shape
	Size     int
	SpriteID uint64
}

// KeyFor returns the cache key for a brush. The sprite only contributes to
// custom brushes.
func KeyFor(shape Shape, size int, sprite *Sprite) Key {
	k := Key{Shape: shape, Size: size}
	if shape == Custom && sprite != nil {
		k.SpriteID = sprite.ID
	}
	return k
}

// Cache holds recently generated stamps. When it grows past its limit the
// least recently used quarter is evicted.
//
// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*cacheEntry
	limit   int
	tick    int64

	generated int
}

type cacheEntry struct {
	stamp *pixpaint.Stamp
	atime int64
}

// NewCache creates a cache holding up to limit stamps.
// A limit of 0 or less uses DefaultCacheSize.
func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &Cache{
		entries: make(map[Key]*cacheEntry),
		limit:   limit,
	}
}

// Stamp returns the stamp for the brush, generating it only when no stamp
// with the same (shape, size, sprite identity) is cached.
func (c *Cache) Stamp(shape Shape, size int, sprite *Sprite) (*pixpaint.Stamp, error) {
	key := KeyFor(shape, size, sprite)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	if e, ok := c.entries[key]; ok {
		e.atime = c.tick
		return e.stamp, nil
	}

	s, err := Generate(shape, size, sprite)
	if err != nil {
		return nil, err
	}
	c.generated++
	c.entries[key] = &cacheEntry{stamp: s, atime: c.tick}
	if len(c.entries) > c.limit {
		c.evictOldest()
	}
	pixpaint.Logger().Debug("brush stamp generated",
		"shape", shape, "size", size, "width", s.Width, "height", s.Height)
	return s, nil
}

// Invalidate drops every stamp generated from the given sprite, for use
// when a sprite's pixels change without a new ID.
func (c *Cache) Invalidate(spriteID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Shape == Custom && k.SpriteID == spriteID {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of cached stamps.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Generated returns how many stamps the cache has generated since creation.
func (c *Cache) Generated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generated
}

// evictOldest removes entries until the cache is at three quarters of its
// limit. Caller must hold c.mu.
func (c *Cache) evictOldest() {
	target := max(c.limit*3/4, 1)
	for len(c.entries) > target {
		var (
			oldest Key
			atime  int64 = -1
		)
		for k, e := range c.entries {
			if atime < 0 || e.atime < atime {
				oldest, atime = k, e.atime
			}
		}
		delete(c.entries, oldest)
	}
}

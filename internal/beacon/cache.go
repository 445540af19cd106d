package beacon

import (
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v2"
)

// VisibilityCache keeps the most recent observation of every beacon and
// reports the ones seen within a trailing window, so a beacon that drops
// out of a few detection cycles does not flicker out of the list.
//
// Entries are never removed. Stale ones are filtered at query time and stay
// in memory until overwritten; the set of nearby beacons is small.
//
// The cache is safe for concurrent use.
type VisibilityCache struct {
	beacons *xsync.MapOf[string, Beacon]
	window  atomic.Int64
	now     func() time.Time
}

// CacheOption customizes a VisibilityCache.
type CacheOption func(*VisibilityCache)

// WithClock replaces time.Now as the source of observation timestamps.
func WithClock(now func() time.Time) CacheOption {
	return func(c *VisibilityCache) {
		c.now = now
	}
}

// WithWindow sets the smoothing window used by VisibleBeacons.
func WithWindow(window time.Duration) CacheOption {
	return func(c *VisibilityCache) {
		c.window.Store(int64(window))
	}
}

// NewVisibilityCache creates an empty cache with a 10 second window.
func NewVisibilityCache(opts ...CacheOption) *VisibilityCache {
	c := &VisibilityCache{
		beacons: xsync.NewMapOf[Beacon](),
		now:     time.Now,
	}
	c.window.Store(int64(10 * time.Second))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Record stamps each observation with the current time and stores it,
// replacing whatever was held for the same ID. Recording nothing leaves the
// cache untouched.
func (c *VisibilityCache) Record(observations ...Beacon) {
	if len(observations) == 0 {
		return
	}
	now := c.now()
	for _, b := range observations {
		b.LastSeen = now
		c.beacons.Store(b.ID, b)
	}
}

// Visible returns every beacon last seen less than window ago, in no
// particular order. A beacon seen exactly window ago is no longer visible.
func (c *VisibilityCache) Visible(window time.Duration) []Beacon {
	now := c.now()
	visible := make([]Beacon, 0, c.beacons.Size())
	c.beacons.Range(func(_ string, b Beacon) bool {
		if now.Sub(b.LastSeen) < window {
			visible = append(visible, b)
		}
		return true
	})
	return visible
}

// VisibleBeacons is Visible with the configured smoothing window.
func (c *VisibilityCache) VisibleBeacons() []Beacon {
	return c.Visible(c.Window())
}

// Window returns the smoothing window.
func (c *VisibilityCache) Window() time.Duration {
	return time.Duration(c.window.Load())
}

// SetWindow changes the smoothing window. Entries hidden by a shorter window
// come back if it is widened again.
func (c *VisibilityCache) SetWindow(window time.Duration) {
	c.window.Store(int64(window))
}

// Len returns the number of beacons held in memory, stale ones included.
func (c *VisibilityCache) Len() int {
	return c.beacons.Size()
}

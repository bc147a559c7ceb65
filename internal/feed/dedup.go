package feed

import (
	"sync"
	"time"
)

// Dedup suppresses repeated sightings of the same mint within a
// time-to-live window, so a mint spammed across messages or channels only
// reaches the trader once per window. Safe for concurrent use.
type Dedup struct {
	seen map[string]time.Time // mint -> last seen time
	ttl  time.Duration
	mu   sync.Mutex
}

// NewDedup creates a Dedup instance that considers a mint a duplicate if it
// has been seen within the given ttl.
func NewDedup(ttl time.Duration) *Dedup {
	return &Dedup{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// IsDuplicate returns true if the mint has been seen within the TTL window.
// If the mint has not been seen (or has expired), it is recorded and false
// is returned.
func (d *Dedup) IsDuplicate(mint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if lastSeen, ok := d.seen[mint]; ok {
		if now.Sub(lastSeen) < d.ttl {
			return true
		}
	}

	d.seen[mint] = now
	return false
}

// Cleanup removes entries that have expired beyond the TTL. This should be
// called periodically to prevent unbounded memory growth.
func (d *Dedup) Cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for mint, ts := range d.seen {
		if now.Sub(ts) >= d.ttl {
			delete(d.seen, mint)
		}
	}
}

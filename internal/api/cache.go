package api

import (
	"sync"
	"time"

	"github.com/kiritoko1029/glmcode/internal/monitor"
)

// Snapshot is one fetch of the quota/limit endpoint.
type Snapshot struct {
	Processed any                 `json:"processed"`
	Quota     *monitor.QuotaLimit `json:"-"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// Cache holds the latest snapshot until its FetchedAt is older than ttl.
type Cache struct {
	mu   sync.RWMutex
	last *Snapshot
	ttl  time.Duration
	now  func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

// Fresh returns the stored snapshot while it is within ttl.
func (c *Cache) Fresh() (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.last == nil || c.now().Sub(c.last.FetchedAt) > c.ttl {
		return nil, false
	}
	return c.last, true
}

// Store replaces the snapshot, stamping FetchedAt when it is unset.
func (c *Cache) Store(snap *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = c.now()
	}
	c.last = snap
}

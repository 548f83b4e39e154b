package report

import (
	"sync"
	"time"
)

// Cache remembers the last rendered report so the monitoring endpoint
// and a re-triggered run within the window reuse it instead of
// rebuilding. Single entry: there is only ever one current report.
type Cache struct {
	mu         sync.Mutex
	text       string
	renderedAt time.Time
	ttl        time.Duration
}

// DefaultCacheTTL keeps a rendered report current for two minutes,
// long enough to absorb a double-fired schedule.
const DefaultCacheTTL = 2 * time.Minute

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl}
}

// Put stores a rendered report.
func (c *Cache) Put(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.renderedAt = time.Now()
}

// Get returns the cached report if it is still fresh.
func (c *Cache) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.text == "" || time.Since(c.renderedAt) > c.ttl {
		return "", false
	}
	return c.text, true
}

// RenderedAt exposes the last render time for the status endpoint.
func (c *Cache) RenderedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderedAt
}

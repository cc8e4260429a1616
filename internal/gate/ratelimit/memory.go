package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounters is an in-process CounterStore for single-instance
// deployments and tests. Windows shared across replicas need Redis.
type MemoryCounters struct {
	mu       sync.Mutex
	counters map[string]*counter

	now func() time.Time
}

type counter struct {
	count     int64
	expiresAt time.Time
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

func (c *MemoryCounters) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cur, ok := c.counters[key]
	if !ok || now.After(cur.expiresAt) {
		cur = &counter{expiresAt: now.Add(ttl)}
		c.counters[key] = cur
	}

	cur.count++
	return cur.count, nil
}

func (c *MemoryCounters) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.counters[key]
	if !ok {
		return -1, nil
	}

	ttl := cur.expiresAt.Sub(c.now())
	if ttl <= 0 {
		delete(c.counters, key)
		return -1, nil
	}
	return ttl, nil
}

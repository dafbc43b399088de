package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value   T
	expires time.Time
}

// TimedCache keeps values for ttl after they were last inserted or read.
// When full, inserting evicts the entry closest to expiring.
type TimedCache[T any] struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time
	onEvict  func(key string, value T)

	mu      sync.Mutex
	entries map[string]*entry[T]

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewTimedCache[T any](ttl time.Duration, capacity int) *TimedCache[T] {
	return &TimedCache[T]{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		entries:  map[string]*entry[T]{},
	}
}

// OnEvict registers fn to be called, with the cache locked, for each live
// entry pushed out to make room. Expired entries are dropped silently.
func (c *TimedCache[T]) OnEvict(fn func(key string, value T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

func (c *TimedCache[T]) Insert(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[key]; !ok && c.capacity > 0 && len(c.entries) >= c.capacity {
		c.removeExpired(now)
		if len(c.entries) >= c.capacity {
			c.evictOldest()
		}
	}
	c.entries[key] = &entry[T]{value: value, expires: now.Add(c.ttl)}
}

// Get returns the value for key and extends its lifetime.
func (c *TimedCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	now := c.now()
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !now.Before(e.expires) {
		delete(c.entries, key)
		return zero, false
	}
	e.expires = now.Add(c.ttl)
	return e.value, true
}

func (c *TimedCache[T]) GetAndRemove(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	delete(c.entries, key)
	if !c.now().Before(e.expires) {
		return zero, false
	}
	return e.value, true
}

func (c *TimedCache[T]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *TimedCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartJanitor drops expired entries every interval until Close is called.
func (c *TimedCache[T]) StartJanitor(interval time.Duration) {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.mu.Unlock()

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				c.removeExpired(c.now())
				c.mu.Unlock()
			case <-c.stop:
				return
			}
		}
	}()
}

// Close stops the janitor, if any, and waits for it to exit.
func (c *TimedCache[T]) Close() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.mu.Unlock()
	if stop == nil {
		return
	}
	c.stopOnce.Do(func() { close(stop) })
	<-done
}

// Private

func (c *TimedCache[T]) removeExpired(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

func (c *TimedCache[T]) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	evicted := c.entries[oldestKey]
	delete(c.entries, oldestKey)
	if c.onEvict != nil && evicted != nil {
		c.onEvict(oldestKey, evicted.value)
	}
}

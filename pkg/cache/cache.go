package cache

import (
	"slices"
	"sync"
)

// Cache is a bounded in-memory collection of key/value entries ordered most
// recently used first. Keys are argument sequences compared through a
// configurable matcher, so lookups are linear scans rather than hash
// lookups; the intended regime is the small bounded sizes typical for
// memoized functions.
//
// All operations are safe for concurrent use. Registered callbacks are
// invoked after the internal lock is released, so a callback may call back
// into the cache.
type Cache[V any] struct {
	keys        []Key
	values      []V
	expirations []*expiration

	onAdd    func(key Key, value V)
	onHit    func(key Key, value V)
	onChange func()
	onEvict  func(key Key, value V)
	onExpire func(key Key) bool

	opts   *options
	mu     sync.Mutex
	closed bool
}

// New creates an empty cache.
//
// Example:
//
//	c := cache.New[int](
//	    cache.WithMaxSize(100),
//	    cache.WithMaxAge(5 * time.Minute),
//	)
//	defer c.Close()
func New[V any](opts ...Option) *Cache[V] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Cache[V]{opts: o}
}

// SetAddCallback sets a callback invoked after a new entry is inserted.
// Callbacks should be registered before the cache is used.
func (c *Cache[V]) SetAddCallback(fn func(key Key, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAdd = fn
}

// SetHitCallback sets a callback invoked after a lookup finds an entry.
func (c *Cache[V]) SetHitCallback(fn func(key Key, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHit = fn
}

// SetChangeCallback sets a callback invoked after any operation that
// changes cache membership: insertion, removal, update, clearing, and
// expiration.
func (c *Cache[V]) SetChangeCallback(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// SetEvictCallback sets a callback invoked when an entry is displaced to
// make room for a newer one after the cache reaches its maximum size.
func (c *Cache[V]) SetEvictCallback(fn func(key Key, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// SetExpireCallback sets a callback invoked when an entry's expiration
// fires. Returning false renews the entry for another full max age period
// instead of letting it go.
func (c *Cache[V]) SetExpireCallback(fn func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpire = fn
}

// Add inserts a key/value pair at the front of the cache and arms its
// expiration when a max age is configured. Adding a key that matches an
// existing entry is a no-op. At capacity, the least recently used entry is
// evicted first. Reports whether insertion occurred.
func (c *Cache[V]) Add(key Key, value V) bool {
	c.mu.Lock()
	if c.closed || c.indexOf(key) != -1 {
		c.mu.Unlock()
		return false
	}

	var (
		evictedKey   Key
		evictedValue V
		evicted      bool
	)
	if c.opts.maxSize > 0 && len(c.keys) >= c.opts.maxSize {
		evictedKey, evictedValue, evicted = c.evictOldest()
	}

	c.keys = slices.Insert(c.keys, 0, key)
	c.values = slices.Insert(c.values, 0, value)
	c.arm(key)

	onEvict, onAdd, onChange := c.onEvict, c.onAdd, c.onChange
	c.mu.Unlock()

	if evicted && onEvict != nil {
		onEvict(evictedKey, evictedValue)
	}
	if onAdd != nil {
		onAdd(key, value)
	}
	if onChange != nil {
		onChange()
	}
	return true
}

// Lookup returns the value stored for key and promotes its entry to the
// front of the ordering. With update-expire configured, the entry's timer
// is re-armed for a full max age period.
func (c *Cache[V]) Lookup(key Key) (V, bool) {
	c.mu.Lock()
	i := -1
	if !c.closed {
		i = c.indexOf(key)
	}
	if i == -1 {
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	c.promote(i)
	stored, value := c.keys[0], c.values[0]
	if c.opts.updateExpire {
		c.arm(stored)
	}
	onHit := c.onHit
	c.mu.Unlock()

	if onHit != nil {
		onHit(stored, value)
	}
	return value, true
}

// Has reports whether an entry matching key exists. It does not promote the
// entry and fires no callbacks.
func (c *Cache[V]) Has(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	return c.indexOf(key) != -1
}

// Remove deletes the entry matching key and cancels its pending expiration
// without firing it. Reports whether an entry was removed. Removing a
// non-matching key is a no-op and fires no callbacks.
func (c *Cache[V]) Remove(key Key) bool {
	c.mu.Lock()
	i := -1
	if !c.closed {
		i = c.indexOf(key)
	}
	if i == -1 {
		c.mu.Unlock()
		return false
	}

	stored := c.keys[i]
	c.keys = slices.Delete(c.keys, i, i+1)
	c.values = slices.Delete(c.values, i, i+1)
	c.disarm(stored)
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return true
}

// Update overwrites the value for an existing key and promotes the entry to
// the front. The entry's expiration, if armed, keeps its original deadline.
// Reports whether the key was found; updating a non-matching key is a
// no-op and fires no callbacks.
func (c *Cache[V]) Update(key Key, value V) bool {
	c.mu.Lock()
	i := -1
	if !c.closed {
		i = c.indexOf(key)
	}
	if i == -1 {
		c.mu.Unlock()
		return false
	}

	c.promote(i)
	c.values[0] = value
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return true
}

// Clear removes every entry and cancels all pending expirations without
// firing them. Returns the number of entries removed.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}

	n := len(c.keys)
	c.keys = nil
	c.values = nil
	c.disarmAll()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
	return n
}

// Keys returns a copy of the cached keys, most recently used first. Each
// key is itself copied, so mutating the result never corrupts the cache.
func (c *Cache[V]) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneKeys(c.keys)
}

// Values returns a copy of the cached values, most recently used first.
func (c *Cache[V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.values)
}

// Len returns the number of entries currently cached.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

// Close cancels all pending expirations and marks the cache closed. After
// Close, mutations are no-ops and lookups miss. Close is idempotent.
func (c *Cache[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.keys = nil
	c.values = nil
	c.disarmAll()
}

// indexOf returns the position of the entry matching key, or -1.
// Caller must hold the mutex.
func (c *Cache[V]) indexOf(key Key) int {
	return findIndex(c.keys, key, c.opts.equals, c.opts.matcher)
}

// promote moves the entry at index i to the front of the ordering.
// Caller must hold the mutex.
func (c *Cache[V]) promote(i int) {
	if i == 0 {
		return
	}
	key, value := c.keys[i], c.values[i]
	copy(c.keys[1:i+1], c.keys[:i])
	copy(c.values[1:i+1], c.values[:i])
	c.keys[0], c.values[0] = key, value
}

// evictOldest removes the least recently used entry and disarms its timer.
// Caller must hold the mutex.
func (c *Cache[V]) evictOldest() (Key, V, bool) {
	last := len(c.keys) - 1
	if last < 0 {
		var zero V
		return nil, zero, false
	}

	key, value := c.keys[last], c.values[last]
	c.keys = slices.Delete(c.keys, last, last+1)
	c.values = slices.Delete(c.values, last, last+1)
	c.disarm(key)
	return key, value, true
}

package cache

import (
	"log/slog"
	"slices"
	"time"
)

// expiration associates a pending one-shot timer with the stored key it
// will expire. A record is created when an entry is added (or on hit, with
// update-expire configured) and dropped when the entry is removed, evicted,
// cleared, or its timer fires. At most one record exists per key.
type expiration struct {
	timer     *time.Timer
	key       Key
	expiresAt time.Time
}

// Expiration is a read-only view of a pending expiration.
type Expiration struct {
	ExpiresAt time.Time
	Key       Key
}

// Expirations returns a copy of the pending expirations in arming order.
func (c *Cache[V]) Expirations() []Expiration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Expiration, len(c.expirations))
	for i, rec := range c.expirations {
		out[i] = Expiration{ExpiresAt: rec.expiresAt, Key: slices.Clone(rec.key)}
	}
	return out
}

// arm schedules a one-shot expiration for the stored key after the
// configured max age, first cancelling any timer already armed for that key
// so a key never has two live timers. Caller must hold the mutex.
func (c *Cache[V]) arm(key Key) {
	if c.opts.maxAge <= 0 {
		return
	}
	c.disarm(key)

	rec := &expiration{key: key, expiresAt: time.Now().Add(c.opts.maxAge)}
	rec.timer = time.AfterFunc(c.opts.maxAge, func() { c.expire(rec) })
	c.expirations = append(c.expirations, rec)
}

// disarm cancels and drops the pending expiration for key, if any, without
// firing its callback. Caller must hold the mutex.
func (c *Cache[V]) disarm(key Key) {
	for i, rec := range c.expirations {
		if matches(rec.key, key, c.opts.equals, c.opts.matcher) {
			rec.timer.Stop()
			c.expirations = slices.Delete(c.expirations, i, i+1)
			return
		}
	}
}

// disarmAll cancels every pending expiration. Caller must hold the mutex.
func (c *Cache[V]) disarmAll() {
	for _, rec := range c.expirations {
		rec.timer.Stop()
	}
	c.expirations = nil
}

// expire runs when rec's timer fires. The record must still be armed and
// its entry still present: a firing that lost either race to a concurrent
// remove, clear, eviction, or re-arm is a no-op. When the expire callback
// returns false, the entry is reinstated at the front with a fresh timer
// instead of being let go.
func (c *Cache[V]) expire(rec *expiration) {
	c.mu.Lock()
	i := slices.Index(c.expirations, rec)
	if c.closed || i == -1 {
		c.mu.Unlock()
		return
	}
	c.expirations = slices.Delete(c.expirations, i, i+1)

	idx := c.indexOf(rec.key)
	if idx == -1 {
		c.mu.Unlock()
		return
	}
	value := c.values[idx]
	c.keys = slices.Delete(c.keys, idx, idx+1)
	c.values = slices.Delete(c.values, idx, idx+1)
	onChange := c.onChange
	onExpire := c.onExpire
	logger := c.opts.logger
	c.mu.Unlock()

	logger.Debug("cache entry expired", slog.Any("key", rec.key))
	if onChange != nil {
		onChange()
	}
	if onExpire == nil || onExpire(rec.key) {
		return
	}

	// Renewable lease: reinstate the entry unless the key was re-added while
	// the callback ran.
	c.mu.Lock()
	if c.closed || c.indexOf(rec.key) != -1 {
		c.mu.Unlock()
		return
	}
	c.keys = slices.Insert(c.keys, 0, rec.key)
	c.values = slices.Insert(c.values, 0, value)
	c.arm(rec.key)
	onChange = c.onChange
	c.mu.Unlock()

	logger.Debug("cache entry renewed", slog.Any("key", rec.key))
	if onChange != nil {
		onChange()
	}
}

package cache

import "slices"

// Snapshot is a point-in-time copy of cache contents, most recently used
// first. Keys and Values always have identical length and index
// correspondence. Snapshots are independent copies: mutating one never
// affects the cache.
type Snapshot[V any] struct {
	Keys   []Key
	Values []V
}

// Size returns the number of entries in the snapshot.
func (s Snapshot[V]) Size() int {
	return len(s.Keys)
}

// Snapshot returns an independent copy of the current cache contents.
func (c *Cache[V]) Snapshot() Snapshot[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[V]{Keys: cloneKeys(c.keys), Values: slices.Clone(c.values)}
}

func cloneKeys(keys []Key) []Key {
	out := make([]Key, len(keys))
	for i, k := range keys {
		out[i] = slices.Clone(k)
	}
	return out
}

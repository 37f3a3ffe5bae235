// Package cache provides a most-recently-used-first cache keyed by argument
// sequences, with per-entry expiration timers and lifecycle callbacks.
//
// Unlike a conventional string-keyed cache, entries are identified by a
// [Key] — the ordered argument list of a call — and located through a
// configurable matcher. This is the storage engine for memoized functions:
// it decides which entries exist, in what order, for how long, and how
// their lifecycle is observed.
//
// # Key Matching
//
// A candidate key matches a stored key element-wise: lengths must agree and
// every element pair must satisfy the configured [EqualFunc] (same-value-zero
// equality by default). A wholesale [MatchFunc] replaces element-wise
// comparison entirely:
//
//	c := cache.New[string](
//	    cache.WithMatcher(func(stored, candidate cache.Key) bool {
//	        return len(stored) > 0 && len(candidate) > 0 && stored[0] == candidate[0]
//	    }),
//	)
//
// Lookups scan front to back, so the most recently used entries are checked
// first. The scan is linear by design: caches sized for memoization are
// small, and matcher-based keys cannot be hashed.
//
// # Ordering and Eviction
//
// Entries are kept most recently used first. [Cache.Add] inserts at the
// front, [Cache.Lookup] and [Cache.Update] promote their entry to the
// front. With [WithMaxSize] configured, an insertion at capacity first
// evicts the entry at the back:
//
//	c := cache.New[int](cache.WithMaxSize(2))
//	c.Add(cache.Key{"a"}, 1)
//	c.Add(cache.Key{"b"}, 2)
//	c.Add(cache.Key{"c"}, 3) // evicts ["a"]
//
// # Expiration
//
// With [WithMaxAge] configured, every insertion arms a one-shot timer for
// its entry. A fired timer re-validates membership under the cache lock
// before acting, so a firing that raced a remove, clear, or eviction is a
// no-op. Removing, clearing, or evicting an entry cancels its timer without
// firing it; a key never has more than one live timer.
//
// An expire callback may veto the eviction by returning false, which
// reinstates the entry at the front with a fresh timer — a renewable lease:
//
//	c.SetExpireCallback(func(key cache.Key) bool {
//	    return !stillNeeded(key) // false keeps the entry alive
//	})
//
// [WithUpdateExpire] re-arms the timer on every lookup hit, turning the max
// age into an idle timeout.
//
// # Callbacks
//
// Lifecycle callbacks are registered through setters before the cache is
// used: add, hit, change, evict, and expire. Callbacks run after the
// internal lock is released, so they may call back into the cache — a
// memoized recursive function must not deadlock against its own cache.
//
// # Inspection
//
// [Cache.Keys], [Cache.Values], [Cache.Snapshot], and [Cache.Expirations]
// return independent copies, never aliases, so external mutation cannot
// corrupt internal state.
package cache

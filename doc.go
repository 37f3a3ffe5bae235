// Package moize memoizes function calls with full cache-lifecycle
// management: bounded size with least-recently-used eviction, per-entry
// expiration, lifecycle callbacks, and togglable usage statistics.
//
// A memoized function caches its results keyed by the argument list of each
// call; repeated calls with matching arguments return the cached value
// instead of invoking the function again.
//
// # Quick Start
//
// Wrap a typed function with [Wrap1], [Wrap2], or [Wrap3] to keep its
// signature, or build an untyped instance with [New]:
//
//	lookup, m := moize.Wrap1(loadUser,
//	    moize.WithMaxSize(100),
//	    moize.WithMaxAge(5*time.Minute),
//	)
//	defer m.Close()
//
//	u := lookup("id-1") // computed
//	u = lookup("id-1")  // cached
//
// The [Moized] instance returned alongside the front is the management
// surface of the cache: Add, Get, Has, Remove, Update, Clear, Keys, Values,
// Expirations, GetStats.
//
// # Key Matching
//
// Arguments are compared element-wise with same-value-zero equality by
// default. [WithDeepEquals] switches to structural comparison,
// [WithEquals] installs a custom element equality, and [WithMatcher]
// replaces element-wise comparison with a wholesale key matcher.
// [WithMaxArgs] keys on only the leading arguments, [WithTransformKey]
// rewrites keys through a pipeline, and [WithSerializedKeys] collapses each
// key into one canonical string — which additionally deduplicates concurrent
// in-flight computations of the same key.
//
// # Lifecycle
//
// [WithMaxSize] bounds the cache; insertions at capacity evict the least
// recently used entry. [WithMaxAge] arms a one-shot expiration timer per
// entry; [WithUpdateExpire] re-arms it on every hit. Hooks registered with
// [WithOnCacheAdd], [WithOnCacheChange], [WithOnCacheHit], and
// [WithOnExpire] observe mutations; an expire hook returning false renews
// its entry instead of letting it go.
//
// # Statistics
//
// Enable collection with [CollectStats]; every instance records calls and
// hits under its profile name (the wrapped function's name by default, set
// explicitly with [WithProfileName]). Instances sharing a profile name pool
// their counts. [GetStats] and [Moized.GetStats] report usage percentages;
// [WithStatsCollector] injects an isolated stats.Collector instead of the
// process-wide one.
package moize

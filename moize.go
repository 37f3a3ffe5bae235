package moize

import (
	"reflect"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/chaabaj/moize/pkg/cache"
	"github.com/chaabaj/moize/pkg/stats"
)

// Func is the shape of a memoizable function: variadic arguments in, a
// single value out. Typed fronts that keep compile-time signatures are
// available through [Wrap1], [Wrap2], and [Wrap3].
type Func func(args ...any) any

// Hook observes a cache lifecycle event. It receives an independent snapshot
// of the cache contents after the event, the resolved options, and the
// instance itself, so a hook may call back into the cache.
type Hook func(snapshot cache.Snapshot[any], opts Options, m *Moized)

// ExpireHook observes an entry's expiration. Returning false renews the
// entry for another full max age period instead of letting it go.
type ExpireHook func(key cache.Key) bool

// TransformFunc rewrites a key before it is matched against the cache.
// Registered transforms form a pipeline: the most recently registered stage
// is applied first and the first-registered stage produces the final key.
type TransformFunc func(key cache.Key) cache.Key

// Moized is a memoized function together with the management surface of its
// cache: membership operations, lifecycle views, and usage statistics.
// All methods are safe for concurrent use.
type Moized struct {
	fn     Func
	cache  *cache.Cache[any]
	flight *singleflight.Group
	opts   Options
}

// New memoizes fn: repeated calls with matching arguments return the cached
// result instead of invoking fn again. Panics when fn is nil.
//
// Example:
//
//	expensive := moize.New(func(args ...any) any {
//	    return lookup(args[0].(string))
//	}, moize.WithMaxSize(100), moize.WithMaxAge(5*time.Minute))
//
//	v := expensive.Call("id-1") // computed
//	v = expensive.Call("id-1")  // cached
func New(fn Func, opts ...Option) *Moized {
	if fn == nil {
		panic("moize: cannot memoize a nil function")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newMoized(fn, o)
}

// newMoized wires a resolved option set to a fresh cache. Shared by New and
// With so merged instances go through identical construction.
func newMoized(fn Func, o Options) *Moized {
	if o.ProfileName == "" {
		o.ProfileName = functionName(fn)
	}

	m := &Moized{fn: fn, opts: o}
	m.cache = cache.New[any](
		cache.WithMaxSize(o.MaxSize),
		cache.WithMaxAge(o.MaxAge),
		cache.WithUpdateExpire(o.UpdateExpire),
		cache.WithEquals(o.Equals),
		cache.WithMatcher(o.Matcher),
		cache.WithLogger(o.logger),
	)
	if o.SerializedKeys {
		m.flight = new(singleflight.Group)
	}

	m.cache.SetAddCallback(func(cache.Key, any) { m.fireHooks(m.opts.OnCacheAdd) })
	m.cache.SetHitCallback(func(cache.Key, any) { m.fireHooks(m.opts.OnCacheHit) })
	m.cache.SetChangeCallback(func() { m.fireHooks(m.opts.OnCacheChange) })
	m.cache.SetExpireCallback(m.expire)
	return m
}

// With creates a fresh instance over the same original function with opts
// merged into this instance's options. Scalar settings override; callback
// chains of the same kind combine, most recently merged invoked first;
// key transforms compose into one pipeline, most recently merged applied
// last. The receiver keeps its own cache and stays usable.
func (m *Moized) With(opts ...Option) *Moized {
	return newMoized(m.fn, mergeOptions(m.Options(), opts))
}

// Call invokes the memoized function: a key is built from args, a matching
// cache entry returns its stored value, and a miss invokes the wrapped
// function and caches the result. The wrapped function runs without any
// internal lock held, so recursive memoized functions do not deadlock.
func (m *Moized) Call(args ...any) any {
	key := m.buildKey(args)
	m.opts.collector.RecordCall(m.opts.ProfileName)

	if value, ok := m.cache.Lookup(key); ok {
		m.opts.collector.RecordHit(m.opts.ProfileName)
		return value
	}

	if m.flight != nil {
		serial, _ := key[0].(string)
		value, _, _ := m.flight.Do(serial, func() (any, error) {
			return m.fn(args...), nil
		})
		m.cache.Add(key, value)
		return value
	}

	value := m.fn(args...)
	m.cache.Add(key, value)
	return value
}

// Add inserts a value for key without invoking the wrapped function. The key
// runs through the configured transform pipeline first, so it addresses the
// same entry a call with those arguments would. Reports whether insertion
// occurred; adding an existing key is a no-op.
func (m *Moized) Add(key cache.Key, value any) bool {
	return m.cache.Add(m.buildKey(key), value)
}

// Get returns the value cached for key. On a hit it re-invokes the memoized
// call with the stored arguments rather than reading the store directly,
// keeping this view and the call path's own caching consistent; the entry is
// promoted and hit statistics are recorded as for any other call.
func (m *Moized) Get(key cache.Key) (any, bool) {
	if !m.cache.Has(m.buildKey(key)) {
		return nil, false
	}
	return m.Call(key...), true
}

// Has reports whether an entry for key exists, without promoting it or
// firing any callbacks.
func (m *Moized) Has(key cache.Key) bool {
	return m.cache.Has(m.buildKey(key))
}

// Remove deletes the entry for key and cancels its pending expiration
// without firing it. Reports whether an entry was removed.
func (m *Moized) Remove(key cache.Key) bool {
	return m.cache.Remove(m.buildKey(key))
}

// Update overwrites the value for an existing key and promotes its entry to
// most recently used; the entry's expiration keeps its original deadline.
// Updating an absent key is a no-op. Reports whether the key was found.
func (m *Moized) Update(key cache.Key, value any) bool {
	return m.cache.Update(m.buildKey(key), value)
}

// Clear removes every cached entry and cancels all pending expirations.
// Returns the number of entries removed.
func (m *Moized) Clear() int {
	return m.cache.Clear()
}

// Keys returns an independent copy of the cached keys, most recently used
// first.
func (m *Moized) Keys() []cache.Key {
	return m.cache.Keys()
}

// Values returns an independent copy of the cached values, most recently
// used first.
func (m *Moized) Values() []any {
	return m.cache.Values()
}

// Snapshot returns an independent point-in-time copy of the cache contents.
func (m *Moized) Snapshot() cache.Snapshot[any] {
	return m.cache.Snapshot()
}

// Expirations returns a copy of the pending expirations in arming order.
func (m *Moized) Expirations() []cache.Expiration {
	return m.cache.Expirations()
}

// GetStats returns the usage statistics recorded for this instance's
// profile. Instances sharing a profile name pool their counts.
func (m *Moized) GetStats() stats.Profile {
	return m.opts.collector.ProfileStats(m.opts.ProfileName)
}

// IsCollectingStats reports whether this instance's stats collector is
// currently recording.
func (m *Moized) IsCollectingStats() bool {
	return m.opts.collector.Enabled()
}

// Options returns the resolved options. Chains and pipelines are copied, so
// the caller cannot alter the instance's configuration through the result.
func (m *Moized) Options() Options {
	o := m.opts
	o.Transforms = slices.Clone(o.Transforms)
	o.OnCacheAdd = slices.Clone(o.OnCacheAdd)
	o.OnCacheChange = slices.Clone(o.OnCacheChange)
	o.OnCacheHit = slices.Clone(o.OnCacheHit)
	o.OnExpire = slices.Clone(o.OnExpire)
	return o
}

// OriginalFunction returns the wrapped function, unmemoized.
func (m *Moized) OriginalFunction() Func {
	return m.fn
}

// Close cancels all pending expirations and marks the cache closed. After
// Close, calls still invoke the wrapped function but nothing is cached.
// Close is idempotent.
func (m *Moized) Close() {
	m.cache.Close()
}

// buildKey turns a call's argument list into the cache key: trim to max
// args, run the transform pipeline back to front, then collapse to a single
// serialized element when serialized keys are configured. The argument slice
// is cloned first so stored keys never alias caller memory.
func (m *Moized) buildKey(args []any) cache.Key {
	if n := m.opts.MaxArgs; n > 0 && len(args) > n {
		args = args[:n]
	}
	key := cache.Key(slices.Clone(args))
	for i := len(m.opts.Transforms) - 1; i >= 0; i-- {
		key = m.opts.Transforms[i](key)
	}
	if m.opts.SerializedKeys {
		key = cache.Key{m.opts.serializer(key)}
	}
	return key
}

// fireHooks runs a callback chain against a snapshot taken after the event.
func (m *Moized) fireHooks(hooks []Hook) {
	if len(hooks) == 0 {
		return
	}
	snapshot := m.cache.Snapshot()
	opts := m.Options()
	for _, hook := range hooks {
		hook(snapshot, opts, m)
	}
}

// expire runs the expire hook chain for a fired entry. Every hook runs; the
// entry is renewed when any of them asks for it.
func (m *Moized) expire(key cache.Key) bool {
	evict := true
	for _, hook := range m.opts.OnExpire {
		if !hook(key) {
			evict = false
		}
	}
	return evict
}

// functionName derives the default stats profile name from the wrapped
// function: the bare function name, or "anonymous" for closures.
func functionName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "anonymous"
	}

	name := f.Name()
	name = name[strings.LastIndexByte(name, '/')+1:]
	name = strings.TrimSuffix(name, "-fm")
	if name == "" || strings.Contains(name, ".func") {
		return "anonymous"
	}
	if i := strings.LastIndexByte(name, '.'); i != -1 {
		name = name[i+1:]
	}
	return name
}

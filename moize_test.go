package moize_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chaabaj/moize"
	"github.com/chaabaj/moize/pkg/cache"
	"github.com/chaabaj/moize/pkg/stats"
)

// double is a named function so default profile naming has something to read.
func double(args ...any) any {
	return args[0].(int) * 2
}

// --- Call ---

func TestMoized_Call(t *testing.T) {
	t.Parallel()

	t.Run("computes once per distinct argument list", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return args[0].(int) + args[1].(int)
		})
		defer m.Close()

		require.Equal(t, 5, m.Call(2, 3))
		require.Equal(t, 5, m.Call(2, 3))
		require.Equal(t, 7, m.Call(3, 4))

		require.Equal(t, int64(2), calls.Load())
		require.Equal(t, 2, len(m.Keys()))
	})

	t.Run("promotes the hit entry to most recently used", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		m.Call(1)
		m.Call(2)
		m.Call(1)

		require.Equal(t, []cache.Key{{1}, {2}}, m.Keys())
	})

	t.Run("evicts the least recently used entry at capacity", func(t *testing.T) {
		t.Parallel()

		m := moize.New(func(args ...any) any {
			return args[0]
		}, moize.WithMaxSize(2))
		defer m.Close()

		m.Call("a")
		m.Call("b")
		m.Call("c")

		require.Equal(t, []cache.Key{{"c"}, {"b"}}, m.Keys())
		require.False(t, m.Has(cache.Key{"a"}), "a should have been evicted")
	})

	t.Run("recursive memoized function caches subresults", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		var fib *moize.Moized
		fib = moize.New(func(args ...any) any {
			calls.Add(1)
			n := args[0].(int)
			if n < 2 {
				return n
			}
			return fib.Call(n-1).(int) + fib.Call(n-2).(int)
		})
		defer fib.Close()

		require.Equal(t, 55, fib.Call(10))
		// One computation per distinct n; without memoization fib(10) takes 177.
		require.Equal(t, int64(11), calls.Load())
	})

	t.Run("nil function panics", func(t *testing.T) {
		t.Parallel()

		require.Panics(t, func() { moize.New(nil) })
	})
}

// --- Facade operations ---

func TestMoized_CacheOperations(t *testing.T) {
	t.Parallel()

	t.Run("add seeds an entry without invoking the function", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return "computed"
		})
		defer m.Close()

		require.True(t, m.Add(cache.Key{"a"}, "seeded"))
		require.False(t, m.Add(cache.Key{"a"}, "again"), "existing key must be a no-op")

		require.Equal(t, "seeded", m.Call("a"))
		require.Zero(t, calls.Load())
	})

	t.Run("get re-invokes the memoized call for a present key", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return args[0].(string) + "!"
		})
		defer m.Close()

		m.Call("hi")
		v, ok := m.Get(cache.Key{"hi"})
		require.True(t, ok)
		require.Equal(t, "hi!", v)
		require.Equal(t, int64(1), calls.Load(), "get must hit the cache, not recompute")

		_, ok = m.Get(cache.Key{"missing"})
		require.False(t, ok)
	})

	t.Run("has reports membership without promotion", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		m.Call(1)
		m.Call(2)

		require.True(t, m.Has(cache.Key{1}))
		require.Equal(t, []cache.Key{{2}, {1}}, m.Keys(), "has must not reorder")
	})

	t.Run("remove deletes the entry", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		m.Call(1)
		require.True(t, m.Remove(cache.Key{1}))
		require.False(t, m.Has(cache.Key{1}))
		require.False(t, m.Remove(cache.Key{1}), "second remove is a no-op")
	})

	t.Run("update overwrites and promotes", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		m.Call(1)
		m.Call(2)

		require.True(t, m.Update(cache.Key{1}, 42))
		require.Equal(t, []cache.Key{{1}, {2}}, m.Keys())
		require.Equal(t, []any{42, 4}, m.Values())
		require.False(t, m.Update(cache.Key{9}, 0), "absent key is a no-op")
	})

	t.Run("updated entry is not the next eviction victim", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double, moize.WithMaxSize(2))
		defer m.Close()

		m.Call(1)
		m.Call(2)
		m.Update(cache.Key{1}, 0)
		m.Call(3)

		require.True(t, m.Has(cache.Key{1}), "promoted entry must outlive older ones")
		require.False(t, m.Has(cache.Key{2}))
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		m.Call(1)
		m.Call(2)

		require.Equal(t, 2, m.Clear())
		require.Empty(t, m.Keys())
		require.Empty(t, m.Values())
	})

	t.Run("views are independent copies", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		m.Call(1)

		keys := m.Keys()
		keys[0][0] = "corrupted"
		require.True(t, m.Has(cache.Key{1}), "mutating a view must not affect the cache")

		snap := m.Snapshot()
		require.Equal(t, 1, snap.Size())
		snap.Values[0] = "corrupted"
		require.Equal(t, []any{2}, m.Values())
	})

	t.Run("original function stays reachable", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		require.Equal(t, 6, m.OriginalFunction()(3))
	})
}

// --- Key construction ---

func TestMoized_KeyConstruction(t *testing.T) {
	t.Parallel()

	t.Run("max args keys on leading arguments only", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return args[0]
		}, moize.WithMaxArgs(1))
		defer m.Close()

		m.Call("a", 1)
		m.Call("a", 2)

		require.Equal(t, int64(1), calls.Load(), "trailing args must not split entries")
		require.Equal(t, []cache.Key{{"a"}}, m.Keys())
	})

	t.Run("transform pipeline applies most recent stage first", func(t *testing.T) {
		t.Parallel()

		first := func(key cache.Key) cache.Key { return append(key, "first") }
		second := func(key cache.Key) cache.Key { return append(key, "second") }

		m := moize.New(double,
			moize.WithTransformKey(first),
			moize.WithTransformKey(second),
		)
		defer m.Close()

		m.Call(1)

		// second runs first, first produces the final key.
		require.Equal(t, []cache.Key{{1, "second", "first"}}, m.Keys())
	})

	t.Run("deep equality matches structurally", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return len(args[0].([]int))
		}, moize.WithDeepEquals())
		defer m.Close()

		require.Equal(t, 2, m.Call([]int{1, 2}))
		require.Equal(t, 2, m.Call([]int{1, 2}))
		require.Equal(t, int64(1), calls.Load())
	})

	t.Run("custom matcher replaces element comparison", func(t *testing.T) {
		t.Parallel()

		m := moize.New(func(args ...any) any {
			return args[0]
		}, moize.WithMatcher(func(stored, candidate cache.Key) bool {
			return len(stored) > 0 && len(candidate) > 0 && stored[0] == candidate[0]
		}))
		defer m.Close()

		m.Call("a", 1)
		require.True(t, m.Has(cache.Key{"a", 999}), "matcher only inspects the first element")
	})
}

// --- Serialized keys ---

func TestMoized_SerializedKeys(t *testing.T) {
	t.Parallel()

	t.Run("serialization unifies equivalent keys", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return args[0]
		}, moize.WithSerializedKeys(true))
		defer m.Close()

		m.Call([]string{"x", "y"})
		m.Call([]string{"x", "y"})

		require.Equal(t, int64(1), calls.Load())
		require.Equal(t, []cache.Key{{`["x","y"]`}}, m.Keys())
	})

	t.Run("custom serializer controls the canonical form", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double,
			moize.WithSerializedKeys(true),
			moize.WithSerializer(func(key cache.Key) string { return "constant" }),
		)
		defer m.Close()

		require.Equal(t, 2, m.Call(1))
		require.Equal(t, 2, m.Call(999), "all keys collapse to one entry")
	})

	t.Run("concurrent callers share one in-flight computation", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			time.Sleep(50 * time.Millisecond)
			return "done"
		}, moize.WithSerializedKeys(true))
		defer m.Close()

		var wg sync.WaitGroup
		results := make([]any, 16)
		for i := range results {
			wg.Go(func() {
				results[i] = m.Call("key")
			})
		}
		wg.Wait()

		for _, r := range results {
			require.Equal(t, "done", r)
		}

		// The miss check and the flight join are not one atomic step, so a
		// straggler may start a second computation; never more.
		require.LessOrEqual(t, calls.Load(), int64(2))
	})
}

// --- Lifecycle hooks ---

func TestMoized_Hooks(t *testing.T) {
	t.Parallel()

	t.Run("add fires add and change exactly once", func(t *testing.T) {
		t.Parallel()

		var adds, changes, hits atomic.Int64
		m := moize.New(double,
			moize.WithOnCacheAdd(func(cache.Snapshot[any], moize.Options, *moize.Moized) { adds.Add(1) }),
			moize.WithOnCacheChange(func(cache.Snapshot[any], moize.Options, *moize.Moized) { changes.Add(1) }),
			moize.WithOnCacheHit(func(cache.Snapshot[any], moize.Options, *moize.Moized) { hits.Add(1) }),
		)
		defer m.Close()

		m.Call(1)
		require.Equal(t, int64(1), adds.Load())
		require.Equal(t, int64(1), changes.Load())
		require.Zero(t, hits.Load())

		m.Call(1)
		require.Equal(t, int64(1), adds.Load(), "a hit must not re-fire add")
		require.Equal(t, int64(1), changes.Load(), "a hit is not a membership change")
		require.Equal(t, int64(1), hits.Load())
	})

	t.Run("adding an existing key fires nothing", func(t *testing.T) {
		t.Parallel()

		var adds, changes atomic.Int64
		m := moize.New(double,
			moize.WithOnCacheAdd(func(cache.Snapshot[any], moize.Options, *moize.Moized) { adds.Add(1) }),
			moize.WithOnCacheChange(func(cache.Snapshot[any], moize.Options, *moize.Moized) { changes.Add(1) }),
		)
		defer m.Close()

		m.Add(cache.Key{1}, 2)
		m.Add(cache.Key{1}, 99)

		require.Equal(t, int64(1), adds.Load())
		require.Equal(t, int64(1), changes.Load())
	})

	t.Run("remove of a non-matching key fires nothing", func(t *testing.T) {
		t.Parallel()

		var changes atomic.Int64
		m := moize.New(double,
			moize.WithOnCacheChange(func(cache.Snapshot[any], moize.Options, *moize.Moized) { changes.Add(1) }),
		)
		defer m.Close()

		require.False(t, m.Remove(cache.Key{"missing"}))
		require.Zero(t, changes.Load())
	})

	t.Run("hooks receive the post-event snapshot", func(t *testing.T) {
		t.Parallel()

		var seen cache.Snapshot[any]
		m := moize.New(double,
			moize.WithOnCacheAdd(func(s cache.Snapshot[any], _ moize.Options, _ *moize.Moized) { seen = s }),
		)
		defer m.Close()

		m.Call(3)
		require.Equal(t, []cache.Key{{3}}, seen.Keys)
		require.Equal(t, []any{6}, seen.Values)
	})

	t.Run("hooks may call back into the instance", func(t *testing.T) {
		t.Parallel()

		var inside atomic.Int64
		m := moize.New(double,
			moize.WithOnCacheAdd(func(_ cache.Snapshot[any], _ moize.Options, m *moize.Moized) {
				inside.Store(int64(len(m.Keys())))
			}),
		)
		defer m.Close()

		m.Call(1)
		require.Equal(t, int64(1), inside.Load())
	})
}

// --- Expiration through the facade ---

func TestMoized_Expiration(t *testing.T) {
	t.Parallel()

	t.Run("entry expires and the hook fires exactly once", func(t *testing.T) {
		t.Parallel()

		expired := make(chan cache.Key, 8)
		m := moize.New(double,
			moize.WithMaxAge(40*time.Millisecond),
			moize.WithOnExpire(func(key cache.Key) bool {
				expired <- key
				return true
			}),
		)
		defer m.Close()

		m.Call(1)

		select {
		case key := <-expired:
			require.Equal(t, cache.Key{1}, key)
		case <-time.After(2 * time.Second):
			t.Fatal("expiration did not fire")
		}
		require.False(t, m.Has(cache.Key{1}))

		time.Sleep(100 * time.Millisecond)
		require.Empty(t, expired, "expiration must fire at most once")
	})

	t.Run("returning false renews the entry", func(t *testing.T) {
		t.Parallel()

		var fires atomic.Int64
		m := moize.New(double,
			moize.WithMaxAge(30*time.Millisecond),
			moize.WithOnExpire(func(cache.Key) bool {
				fires.Add(1)
				return false // always renew
			}),
		)
		defer m.Close()

		m.Call(1)

		// The entry survives several full max age periods, each renewal
		// firing the hook again with a fresh timer.
		require.Eventually(t, func() bool {
			return fires.Load() >= 3 && m.Has(cache.Key{1})
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("remove cancels the pending expiration", func(t *testing.T) {
		t.Parallel()

		var fires atomic.Int64
		m := moize.New(double,
			moize.WithMaxAge(50*time.Millisecond),
			moize.WithOnExpire(func(cache.Key) bool {
				fires.Add(1)
				return true
			}),
		)
		defer m.Close()

		m.Call(1)
		require.True(t, m.Remove(cache.Key{1}))

		time.Sleep(150 * time.Millisecond)
		require.Zero(t, fires.Load(), "cancelled timer must never fire")
	})

	t.Run("update expire refreshes the deadline on hits", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double,
			moize.WithMaxAge(150*time.Millisecond),
			moize.WithUpdateExpire(true),
		)
		defer m.Close()

		m.Call(1)
		for range 5 {
			time.Sleep(50 * time.Millisecond)
			m.Call(1) // each hit re-arms; total elapsed exceeds one max age
		}
		require.True(t, m.Has(cache.Key{1}))
	})

	t.Run("expirations view reports pending deadlines", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double, moize.WithMaxAge(time.Hour))
		defer m.Close()

		m.Call(1)

		exps := m.Expirations()
		require.Len(t, exps, 1)
		require.Equal(t, cache.Key{1}, exps[0].Key)
		require.WithinDuration(t, time.Now().Add(time.Hour), exps[0].ExpiresAt, time.Minute)
	})
}

// --- Stats ---

func TestMoized_Stats(t *testing.T) {
	t.Parallel()

	t.Run("records calls and hits under the profile", func(t *testing.T) {
		t.Parallel()

		c := stats.NewCollector()
		c.Enable()
		m := moize.New(double,
			moize.WithStatsCollector(c),
			moize.WithProfileName("doubler"),
		)
		defer m.Close()

		m.Call(1) // miss
		m.Call(1) // hit
		m.Call(2) // miss
		m.Call(1) // hit

		p := m.GetStats()
		require.Equal(t, int64(4), p.Calls)
		require.Equal(t, int64(2), p.Hits)
		require.Equal(t, 50.0, p.Usage())
		require.Equal(t, p, c.ProfileStats("doubler"))
		require.True(t, m.IsCollectingStats())
	})

	t.Run("disabled collector records nothing", func(t *testing.T) {
		t.Parallel()

		c := stats.NewCollector()
		m := moize.New(double, moize.WithStatsCollector(c))
		defer m.Close()

		m.Call(1)
		m.Call(1)

		require.Zero(t, m.GetStats().Calls)
		require.False(t, m.IsCollectingStats())
	})

	t.Run("default profile name is the function name", func(t *testing.T) {
		t.Parallel()

		m := moize.New(double)
		defer m.Close()

		require.Equal(t, "double", m.Options().ProfileName)
	})

	t.Run("closures default to anonymous", func(t *testing.T) {
		t.Parallel()

		m := moize.New(func(args ...any) any { return nil })
		defer m.Close()

		require.Equal(t, "anonymous", m.Options().ProfileName)
	})
}

// --- Close ---

func TestMoized_Close(t *testing.T) {
	t.Parallel()

	t.Run("close is idempotent and stops caching", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		m := moize.New(func(args ...any) any {
			calls.Add(1)
			return args[0]
		}, moize.WithMaxAge(time.Hour))

		m.Call(1)
		m.Close()
		m.Close()

		require.Empty(t, m.Keys())
		require.Equal(t, 1, m.Call(1), "calls still compute after close")
		require.Equal(t, int64(2), calls.Load())
		require.Empty(t, m.Keys(), "nothing is cached after close")
	})
}

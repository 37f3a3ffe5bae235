package moize

import (
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/chaabaj/moize/pkg/cache"
	"github.com/chaabaj/moize/pkg/stats"
)

// Option configures a memoized instance.
type Option func(*Options)

// Options is the resolved configuration of a memoized instance. Callback
// chains and the transform pipeline are kept as ordered lists so they stay
// inspectable; hooks receive this view on every lifecycle event. Options are
// immutable after construction except through [Moized.With].
type Options struct {
	// Equals is the element equality used for key comparison.
	Equals cache.EqualFunc
	// Matcher, when set, replaces element-wise comparison entirely.
	Matcher cache.MatchFunc
	// Transforms is the key transform pipeline, in registration order. The
	// last stage is applied first; the first stage produces the final key.
	Transforms []TransformFunc
	// OnCacheAdd, OnCacheChange, and OnCacheHit are callback chains invoked
	// front to back on their lifecycle event.
	OnCacheAdd    []Hook
	OnCacheChange []Hook
	OnCacheHit    []Hook
	// OnExpire is the expiration hook chain; any hook returning false
	// renews the entry instead of letting it go.
	OnExpire []ExpireHook
	// ProfileName names the stats bucket this instance records into.
	ProfileName string
	// MaxAge is how long an entry lives after insertion; non-positive means
	// entries never expire.
	MaxAge time.Duration
	// MaxSize bounds the number of cached entries; non-positive means
	// unbounded.
	MaxSize int
	// MaxArgs limits how many leading arguments form the key; non-positive
	// means all of them.
	MaxArgs int
	// SerializedKeys collapses each key into a single serialized string
	// element before matching.
	SerializedKeys bool
	// UpdateExpire re-arms an entry's expiration on every cache hit.
	UpdateExpire bool

	serializer Serializer
	collector  *stats.Collector
	logger     *slog.Logger
}

func defaultOptions() Options {
	return Options{
		Equals:     cache.Equal,
		serializer: DefaultSerializer,
		collector:  stats.Default(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// mergeOptions layers opts over base: scalar settings carry over unless an
// option overrides them, while chains and the transform pipeline registered
// by opts are prepended to base's.
func mergeOptions(base Options, opts []Option) Options {
	merged := base
	merged.Transforms = nil
	merged.OnCacheAdd = nil
	merged.OnCacheChange = nil
	merged.OnCacheHit = nil
	merged.OnExpire = nil
	for _, opt := range opts {
		opt(&merged)
	}

	merged.Transforms = append(merged.Transforms, base.Transforms...)
	merged.OnCacheAdd = append(merged.OnCacheAdd, base.OnCacheAdd...)
	merged.OnCacheChange = append(merged.OnCacheChange, base.OnCacheChange...)
	merged.OnCacheHit = append(merged.OnCacheHit, base.OnCacheHit...)
	merged.OnExpire = append(merged.OnExpire, base.OnExpire...)
	return merged
}

// WithMaxSize bounds the cache to n entries; at capacity, the least recently
// used entry is evicted to make room. Non-positive means unbounded.
// Default: 0 (unbounded).
func WithMaxSize(n int) Option {
	return func(o *Options) {
		o.MaxSize = n
	}
}

// WithMaxAge sets how long an entry lives after it is cached before it
// expires. Non-positive means entries never expire.
// Default: 0 (never).
func WithMaxAge(d time.Duration) Option {
	return func(o *Options) {
		o.MaxAge = d
	}
}

// WithUpdateExpire re-arms an entry's expiration for a full max age period
// on every cache hit, turning the max age into an idle timeout.
// Default: false.
func WithUpdateExpire(update bool) Option {
	return func(o *Options) {
		o.UpdateExpire = update
	}
}

// WithEquals sets the element equality used for key comparison.
// Default: same-value-zero equality ([cache.Equal]).
func WithEquals(equals cache.EqualFunc) Option {
	return func(o *Options) {
		if equals != nil {
			o.Equals = equals
		}
	}
}

// WithDeepEquals compares key elements with [reflect.DeepEqual], so slices,
// maps, and structs match structurally rather than by identity.
// Default: same-value-zero equality.
func WithDeepEquals() Option {
	return func(o *Options) {
		o.Equals = reflect.DeepEqual
	}
}

// WithMatcher sets a wholesale key matcher that replaces element-wise
// comparison entirely.
// Default: none (element-wise comparison).
func WithMatcher(matcher cache.MatchFunc) Option {
	return func(o *Options) {
		o.Matcher = matcher
	}
}

// WithMaxArgs keys entries on only the first n arguments of a call.
// Non-positive is ignored.
// Default: 0 (all arguments).
func WithMaxArgs(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxArgs = n
		}
	}
}

// WithTransformKey appends a stage to the key transform pipeline. The option
// is repeatable: the most recently registered stage is applied first and the
// first-registered stage produces the final key.
// Default: no transforms.
func WithTransformKey(transform TransformFunc) Option {
	return func(o *Options) {
		if transform != nil {
			o.Transforms = append(o.Transforms, transform)
		}
	}
}

// WithSerializedKeys collapses each key into a single canonical string
// element before matching, and deduplicates concurrent in-flight
// computations of the same key.
// Default: false.
func WithSerializedKeys(serialized bool) Option {
	return func(o *Options) {
		o.SerializedKeys = serialized
	}
}

// WithSerializer sets the serializer used with serialized keys.
// Default: [DefaultSerializer].
func WithSerializer(serializer Serializer) Option {
	return func(o *Options) {
		if serializer != nil {
			o.serializer = serializer
		}
	}
}

// WithOnCacheAdd appends a hook invoked after a new entry is cached.
// Repeatable; hooks of one chain fire in registration order.
// Default: none.
func WithOnCacheAdd(hook Hook) Option {
	return func(o *Options) {
		if hook != nil {
			o.OnCacheAdd = append(o.OnCacheAdd, hook)
		}
	}
}

// WithOnCacheChange appends a hook invoked after any operation that changes
// cache membership: insertion, removal, update, clearing, and expiration.
// Repeatable.
// Default: none.
func WithOnCacheChange(hook Hook) Option {
	return func(o *Options) {
		if hook != nil {
			o.OnCacheChange = append(o.OnCacheChange, hook)
		}
	}
}

// WithOnCacheHit appends a hook invoked after a call finds its cache entry.
// Repeatable.
// Default: none.
func WithOnCacheHit(hook Hook) Option {
	return func(o *Options) {
		if hook != nil {
			o.OnCacheHit = append(o.OnCacheHit, hook)
		}
	}
}

// WithOnExpire appends a hook invoked when an entry's expiration fires.
// Returning false renews the entry for another full max age period.
// Repeatable; the entry is renewed when any hook asks for it.
// Default: none (expired entries are evicted).
func WithOnExpire(hook ExpireHook) Option {
	return func(o *Options) {
		if hook != nil {
			o.OnExpire = append(o.OnExpire, hook)
		}
	}
}

// WithProfileName names the stats bucket this instance records into.
// Instances sharing a name pool their counts.
// Default: the wrapped function's name, or "anonymous" for closures.
func WithProfileName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.ProfileName = name
		}
	}
}

// WithStatsCollector records usage statistics into collector instead of the
// process-wide default.
// Default: [stats.Default].
func WithStatsCollector(collector *stats.Collector) Option {
	return func(o *Options) {
		if collector != nil {
			o.collector = collector
		}
	}
}

// WithLogger sets the logger for cache lifecycle events.
// Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

package cache

import (
	"io"
	"log/slog"
	"time"
)

// Option configures the cache.
type Option func(*options)

type options struct {
	equals       EqualFunc
	matcher      MatchFunc
	logger       *slog.Logger
	maxAge       time.Duration
	maxSize      int
	updateExpire bool
}

func defaultOptions() *options {
	return &options{
		equals:  Equal,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxAge:  0, // 0 = entries never expire
		maxSize: 0, // 0 = unbounded
	}
}

// WithMaxSize sets the maximum number of entries. When the limit is
// reached, the least recently used entry is evicted to make room.
// Non-positive means unbounded.
// Default: 0 (unbounded).
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// WithMaxAge sets how long an entry lives after it is added before its
// expiration fires. Non-positive means entries never expire.
// Default: 0 (never).
func WithMaxAge(d time.Duration) Option {
	return func(o *options) {
		o.maxAge = d
	}
}

// WithUpdateExpire re-arms an entry's expiration for a full max age period
// on every lookup hit, turning the expiration into an idle timeout.
// Default: false.
func WithUpdateExpire(update bool) Option {
	return func(o *options) {
		o.updateExpire = update
	}
}

// WithEquals sets the element equality used for key comparison.
// Default: same-value-zero equality ([Equal]).
func WithEquals(equals EqualFunc) Option {
	return func(o *options) {
		if equals != nil {
			o.equals = equals
		}
	}
}

// WithMatcher sets a wholesale key matcher. When set, it replaces
// element-wise comparison entirely.
// Default: none (element-wise comparison).
func WithMatcher(matcher MatchFunc) Option {
	return func(o *options) {
		o.matcher = matcher
	}
}

// WithLogger sets the logger for expiration events.
// Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

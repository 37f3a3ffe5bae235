package stats

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Profile is a point-in-time view of one profile's counters.
type Profile struct {
	Calls int64
	Hits  int64
}

// Usage returns the hit percentage for the profile: hits divided by calls,
// times 100. It is 0 when no calls were recorded.
func (p Profile) Usage() float64 {
	if p.Calls == 0 {
		return 0
	}
	return float64(p.Hits) / float64(p.Calls) * 100
}

// String renders the usage percentage, e.g. "33.3333%".
func (p Profile) String() string {
	return fmt.Sprintf("%.4f%%", p.Usage())
}

// Stats is an aggregate view across all profiles: summed counts plus a
// per-profile breakdown.
type Stats struct {
	Profiles map[string]Profile
	Calls    int64
	Hits     int64
}

// Usage returns the hit percentage computed over the summed counts.
func (s Stats) Usage() float64 {
	return Profile{Calls: s.Calls, Hits: s.Hits}.Usage()
}

// String renders the aggregate usage percentage.
func (s Stats) String() string {
	return fmt.Sprintf("%.4f%%", s.Usage())
}

// counters holds one profile's live counters.
type counters struct {
	calls atomic.Int64
	hits  atomic.Int64
}

// Collector aggregates call and hit counts per named profile. One collector
// may be shared by any number of memoized instances; profiles with the same
// name pool their counts. Collection starts disabled, and while disabled
// every recording call is a no-op costing a single atomic load.
//
// The zero value is not usable; construct with [NewCollector] or share
// [Default].
type Collector struct {
	profiles map[string]*counters
	logger   *slog.Logger
	metrics  bridge
	mu       sync.RWMutex
	enabled  atomic.Bool
	warnOnce sync.Once
}

// NewCollector creates a collector with collection disabled.
func NewCollector(opts ...Option) *Collector {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Collector{
		profiles: make(map[string]*counters),
		logger:   o.logger,
	}
	if o.meterProvider != nil {
		c.metrics = newBridge(o.meterProvider, o.logger)
	}
	return c
}

// defaultCollector is the process-wide collector used by instances that do
// not inject their own.
var defaultCollector = NewCollector()

// Default returns the process-wide collector.
func Default() *Collector {
	return defaultCollector
}

// Enable turns recording on.
func (c *Collector) Enable() {
	c.enabled.Store(true)
}

// Disable turns recording off. Recorded counts are kept.
func (c *Collector) Disable() {
	c.enabled.Store(false)
}

// Enabled reports whether the collector is recording.
func (c *Collector) Enabled() bool {
	return c.enabled.Load()
}

// RecordCall increments the call count for profile, creating the profile
// lazily. No-op while the collector is disabled.
func (c *Collector) RecordCall(profile string) {
	if !c.enabled.Load() {
		return
	}
	c.counters(profile).calls.Add(1)
	c.metrics.recordCall(profile)
}

// RecordHit increments the hit count for profile. A hit is only meaningful
// alongside a call record; callers record both on a cache hit. No-op while
// the collector is disabled.
func (c *Collector) RecordHit(profile string) {
	if !c.enabled.Load() {
		return
	}
	c.counters(profile).hits.Add(1)
	c.metrics.recordHit(profile)
}

// ProfileStats returns a point-in-time view of one profile's counters. A
// profile that never recorded reads as all-zero.
func (c *Collector) ProfileStats(name string) Profile {
	c.mu.RLock()
	p, ok := c.profiles[name]
	c.mu.RUnlock()
	if !ok {
		return Profile{}
	}
	return Profile{Calls: p.calls.Load(), Hits: p.hits.Load()}
}

// Stats returns an aggregate view across all profiles. Requesting stats
// while the collector is disabled logs a one-time warning, since the
// reported counts cannot be current.
func (c *Collector) Stats() Stats {
	if !c.enabled.Load() {
		c.warnOnce.Do(func() {
			c.logger.Warn("stats requested while collection is disabled, reported counts may be stale")
		})
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := Stats{Profiles: make(map[string]Profile, len(c.profiles))}
	for name, p := range c.profiles {
		prof := Profile{Calls: p.calls.Load(), Hits: p.hits.Load()}
		out.Calls += prof.Calls
		out.Hits += prof.Hits
		out.Profiles[name] = prof
	}
	return out
}

// Reset clears all recorded profiles. The enabled flag is left unchanged;
// exported OpenTelemetry counters are cumulative and are not reset.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.profiles)
}

// counters returns the live counters for profile, creating them on first use.
func (c *Collector) counters(profile string) *counters {
	c.mu.RLock()
	p, ok := c.profiles[profile]
	c.mu.RUnlock()
	if ok {
		return p
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.profiles[profile]; ok {
		return p
	}
	p = &counters{}
	c.profiles[profile] = p
	return p
}

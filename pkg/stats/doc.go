// Package stats aggregates call and hit counts for memoized functions,
// grouped by named profile.
//
// A [Collector] is explicitly constructed and injected into each memoized
// instance; [Default] provides the process-wide collector shared by
// instances that do not inject their own. Instances with the same profile
// name pool their counts. Collection is disabled until [Collector.Enable]
// is called, and a disabled collector costs a single atomic load per
// recording call.
//
//	c := stats.NewCollector()
//	c.Enable()
//
//	c.RecordCall("fib")
//	c.RecordCall("fib")
//	c.RecordHit("fib")
//
//	p := c.ProfileStats("fib")
//	fmt.Println(p.Usage()) // 50
//
// With [WithMeterProvider], recorded counts are additionally exported as
// OpenTelemetry counters ("moize.cache.calls", "moize.cache.hits") labeled
// by profile.
package stats

package stats

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/chaabaj/moize/pkg/stats"

	metricCalls = "moize.cache.calls"
	metricHits  = "moize.cache.hits"
)

// bridge exports recorded counts as OpenTelemetry counters. The zero value
// exports nothing.
type bridge struct {
	calls metric.Int64Counter
	hits  metric.Int64Counter
}

// newBridge creates the counter instruments. A provider that rejects
// instrument creation leaves the bridge inactive rather than failing the
// collector.
func newBridge(provider metric.MeterProvider, logger *slog.Logger) bridge {
	meter := provider.Meter(meterName)

	calls, err := meter.Int64Counter(
		metricCalls,
		metric.WithDescription("memoized calls recorded per profile"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		logger.Warn("create calls counter failed", slog.Any("error", err))
		return bridge{}
	}

	hits, err := meter.Int64Counter(
		metricHits,
		metric.WithDescription("cache hits recorded per profile"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		logger.Warn("create hits counter failed", slog.Any("error", err))
		return bridge{}
	}

	return bridge{calls: calls, hits: hits}
}

func (b bridge) recordCall(profile string) {
	if b.calls == nil {
		return
	}
	b.calls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("profile", profile)))
}

func (b bridge) recordHit(profile string) {
	if b.hits == nil {
		return
	}
	b.hits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("profile", profile)))
}

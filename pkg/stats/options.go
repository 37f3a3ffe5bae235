package stats

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
)

// Option configures the collector.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	meterProvider metric.MeterProvider
}

func defaultOptions() *options {
	return &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger for collector diagnostics.
// Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeterProvider additionally exports recorded counts as OpenTelemetry
// counters labeled by profile. Counts are exported only while the collector
// is enabled.
// Default: no export.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *options) {
		if provider != nil {
			o.meterProvider = provider
		}
	}
}

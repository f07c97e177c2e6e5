package reconcile

import (
	"context"

	obsmetrics "github.com/smallbiznis/billdesk/internal/observability/metrics"
)

// Observer is told about every resolution and every malformed record.
type Observer interface {
	ObserveResolution(ctx context.Context, entity string, source Source)
	ObserveMalformed(ctx context.Context, entity, reason string)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(context.Context, string, Source) {}
func (nopObserver) ObserveMalformed(context.Context, string, string)  {}

type metricsObserver struct {
	metrics *obsmetrics.Metrics
}

// NewMetricsObserver records resolutions on the otel counters. A nil
// Metrics yields an observer that does nothing.
func NewMetricsObserver(metrics *obsmetrics.Metrics) Observer {
	if metrics == nil {
		return nopObserver{}
	}
	return metricsObserver{metrics: metrics}
}

func (o metricsObserver) ObserveResolution(ctx context.Context, entity string, source Source) {
	o.metrics.RecordReferenceResolution(ctx, entity, string(source))
}

func (o metricsObserver) ObserveMalformed(ctx context.Context, entity, reason string) {
	o.metrics.RecordMalformedRecord(ctx, entity, reason)
}

package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	upstreamRequests    metric.Int64Counter
	upstreamDuration    metric.Float64Histogram
	referenceResolution metric.Int64Counter
	malformedRecords    metric.Int64Counter
	paymentAttempts     metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "billdesk"
	}
	meter := provider.Meter(name)

	upstreamRequests, err := meter.Int64Counter("billdesk_upstream_requests_total")
	if err != nil {
		return nil, err
	}
	upstreamDuration, err := meter.Float64Histogram("billdesk_upstream_request_duration_seconds",
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	referenceResolution, err := meter.Int64Counter("billdesk_reference_resolutions_total")
	if err != nil {
		return nil, err
	}
	malformedRecords, err := meter.Int64Counter("billdesk_malformed_records_total")
	if err != nil {
		return nil, err
	}
	paymentAttempts, err := meter.Int64Counter("billdesk_payment_attempts_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		upstreamRequests:    upstreamRequests,
		upstreamDuration:    upstreamDuration,
		referenceResolution: referenceResolution,
		malformedRecords:    malformedRecords,
		paymentAttempts:     paymentAttempts,
	}, nil
}

// RecordUpstreamRequest counts a billing API call and its latency.
func (m *Metrics) RecordUpstreamRequest(ctx context.Context, endpoint string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.Int("status_code", statusCode),
	)
	m.upstreamRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.upstreamDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordReferenceResolution counts how a nested reference was satisfied.
// sourceType is one of local, fetched or placeholder.
func (m *Metrics) RecordReferenceResolution(ctx context.Context, entity, sourceType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("source_type", strings.TrimSpace(sourceType)),
	)
	m.referenceResolution.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordMalformedRecord counts upstream records that failed validation.
func (m *Metrics) RecordMalformedRecord(ctx context.Context, entity, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("entity", strings.TrimSpace(entity)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.malformedRecords.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentAttempt counts pay-invoice requests by outcome.
func (m *Metrics) RecordPaymentAttempt(ctx context.Context, method, eventType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("method", strings.TrimSpace(method)),
		attribute.String("event_type", strings.TrimSpace(eventType)),
	)
	m.paymentAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"entity":      {},
	"method":      {},
	"event_type":  {},
	"source_type": {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

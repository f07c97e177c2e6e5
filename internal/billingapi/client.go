package billingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/smallbiznis/billdesk/internal/auth/session"
	"github.com/smallbiznis/billdesk/internal/config"
	obscontext "github.com/smallbiznis/billdesk/internal/observability/context"
	obsmetrics "github.com/smallbiznis/billdesk/internal/observability/metrics"
	"github.com/smallbiznis/billdesk/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Client talks JSON to the billing REST API on behalf of the session in the context.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	metrics *obsmetrics.Metrics
	tracer  trace.Tracer
}

func New(p Params) *Client {
	return NewClient(p.Config.BillingAPIURL, p.Config.BillingAPITimeout, p.Log, p.Metrics)
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger, metrics *obsmetrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("billingapi"),
		metrics: metrics,
		tracer:  otel.Tracer("billdesk/billingapi"),
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	route := routeOf(path)
	ctx, span := c.tracer.Start(ctx, "billingapi "+method+" "+route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
	)...)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, route, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess, ok := session.FromContext(ctx); ok && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}
	tracing.InjectContext(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(ctx, route, 0, time.Since(start))
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "transport error")
		c.log.Warn("billing api unreachable",
			zap.String("method", method),
			zap.String("route", route),
			zap.Error(err),
		)
		return fmt.Errorf("billing api %s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.RecordUpstreamRequest(ctx, route, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err != nil {
		span.SetStatus(codes.Error, "read body")
		return fmt.Errorf("read %s %s: %w", method, route, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{
			Method:     method,
			Path:       route,
			StatusCode: resp.StatusCode,
			Message:    parseMessage(raw),
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		span.SetStatus(codes.Error, "decode body")
		return fmt.Errorf("decode %s %s: %w", method, route, err)
	}
	return nil
}

func parseMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.text()
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// routeOf collapses numeric path segments so metrics stay low-cardinality.
func routeOf(path string) string {
	route := path
	for idSegment.MatchString(route) {
		route = idSegment.ReplaceAllString(route, "/:id$1")
	}
	return route
}

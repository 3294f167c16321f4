package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/fx"
)

// Config controls the metric exporter.
type Config struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // grpc or http
	Insecure    bool
	Interval    time.Duration
}

// NewProvider installs a global meter provider that exports over OTLP.
func NewProvider(lc fx.Lifecycle, cfg Config) (otelmetric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := metric.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	ctx := context.Background()

	var exporter metric.Exporter
	var err error
	switch strings.ToLower(cfg.Protocol) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	default:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: create exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("metrics: build resource: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	provider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exporter, metric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})

	return provider, nil
}

// Metrics holds the domain counters.
type Metrics struct {
	DonationsVerified    otelmetric.Int64Counter
	DonationsRejected    otelmetric.Int64Counter
	DonationsDuplicate   otelmetric.Int64Counter
	CertificatesIssued   otelmetric.Int64Counter
	CertificatesFailed   otelmetric.Int64Counter
	RateLimitRejections  otelmetric.Int64Counter
	NotificationsFailure otelmetric.Int64Counter
}

// New registers the domain instruments on the installed provider.
func New(provider otelmetric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter("sahayog")

	m := &Metrics{}
	var err error

	if m.DonationsVerified, err = meter.Int64Counter("donations_verified_total",
		otelmetric.WithDescription("Donations whose gateway signature verified")); err != nil {
		return nil, err
	}
	if m.DonationsRejected, err = meter.Int64Counter("donations_rejected_total",
		otelmetric.WithDescription("Donations rejected for an invalid signature")); err != nil {
		return nil, err
	}
	if m.DonationsDuplicate, err = meter.Int64Counter("donations_duplicate_total",
		otelmetric.WithDescription("Donations dropped as duplicate transaction references")); err != nil {
		return nil, err
	}
	if m.CertificatesIssued, err = meter.Int64Counter("certificates_issued_total",
		otelmetric.WithDescription("Donation certificates rendered")); err != nil {
		return nil, err
	}
	if m.CertificatesFailed, err = meter.Int64Counter("certificates_failed_total",
		otelmetric.WithDescription("Donation certificate rendering failures")); err != nil {
		return nil, err
	}
	if m.RateLimitRejections, err = meter.Int64Counter("rate_limit_rejections_total",
		otelmetric.WithDescription("Requests rejected by the public rate limiter")); err != nil {
		return nil, err
	}
	if m.NotificationsFailure, err = meter.Int64Counter("notifications_failed_total",
		otelmetric.WithDescription("Email notifications that could not be sent")); err != nil {
		return nil, err
	}

	return m, nil
}

// Add increments a counter with allowlisted attributes.
func Add(ctx context.Context, counter otelmetric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
}

// HTTPMetrics records request counts and latency on a prometheus
// registry scraped at /metrics.
type HTTPMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sahayog",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sahayog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(requests, duration)

	return &HTTPMetrics{
		registry: registry,
		requests: requests,
		duration: duration,
	}
}

// Handler serves the scrape endpoint.
func (h *HTTPMetrics) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// GinMiddleware observes every request.
func (h *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		h.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

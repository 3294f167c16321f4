package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
	"github.com/sahayog-foundation/sahayog/internal/observability/metrics"
	"github.com/sahayog-foundation/sahayog/internal/observability/tracing"
)

// Config aggregates the telemetry settings read from the environment.
type Config struct {
	ServiceName string
	Logger      logger.Config
	Tracing     tracing.Config
	Metrics     metrics.Config
}

func LoadConfig() Config {
	serviceName := getenv("APP_SERVICE", "sahayog")
	endpoint := getenv("OTLP_ENDPOINT", "localhost:4317")
	protocol := getenv("OTLP_PROTOCOL", "grpc")
	insecure := getenvBool("OTLP_INSECURE", true)

	return Config{
		ServiceName: serviceName,
		Logger: logger.Config{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
		Tracing: tracing.Config{
			Enabled:     getenvBool("TRACING_ENABLED", false),
			ServiceName: serviceName,
			Endpoint:    endpoint,
			Protocol:    protocol,
			Insecure:    insecure,
			SampleRatio: getenvFloat("TRACING_SAMPLE_RATIO", 1),
		},
		Metrics: metrics.Config{
			Enabled:     getenvBool("METRICS_OTLP_ENABLED", false),
			ServiceName: serviceName,
			Endpoint:    endpoint,
			Protocol:    protocol,
			Insecure:    insecure,
			Interval:    time.Duration(getenvInt("METRICS_INTERVAL_SECONDS", 30)) * time.Second,
		},
	}
}

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

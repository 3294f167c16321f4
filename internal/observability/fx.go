package observability

import (
	"go.uber.org/fx"

	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
	"github.com/sahayog-foundation/sahayog/internal/observability/metrics"
	"github.com/sahayog-foundation/sahayog/internal/observability/tracing"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		func(cfg Config) logger.Config { return cfg.Logger },
		func(cfg Config) tracing.Config { return cfg.Tracing },
		func(cfg Config) metrics.Config { return cfg.Metrics },
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
)

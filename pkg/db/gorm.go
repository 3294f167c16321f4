package db

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/observability/logger"
)

var Module = fx.Module("db",
	fx.Provide(
		func(cfg config.Config) Config {
			return Config{
				Type:            cfg.DBType,
				Host:            cfg.DBHost,
				Port:            cfg.DBPort,
				Name:            cfg.DBName,
				User:            cfg.DBUser,
				Password:        cfg.DBPassword,
				SSLMode:         cfg.DBSSLMode,
				MaxIdleConn:     cfg.DBMaxIdleConn,
				MaxOpenConn:     cfg.DBMaxOpenConn,
				ConnMaxLifetime: cfg.DBConnMaxLifetime,
			}
		},
		New,
	),
)

// New opens the primary gorm connection with tracing and a zap-backed
// query logger, and manages pool lifecycle through fx.
func New(lc fx.Lifecycle, cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialect, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialect, &gorm.Config{
		Logger:         logger.NewGormLogger(log),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.Use(otelgorm.NewPlugin()); err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		},
		OnStop: func(context.Context) error {
			return sqlDB.Close()
		},
	})

	return gdb, nil
}

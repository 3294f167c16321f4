package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(AllModels()...); err != nil {
				return err
			}
		}

		if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword != "" {
			return seed.EnsureAdmin(conn, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
		}
		return nil
	}),
)

// Package db opens the gorm database handle for the application.
package db

import (
	"context"

	"github.com/compfund/cfportal/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func New(cfg config.Config) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
	})
}

func registerHooks(lc fx.Lifecycle, conn *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
}

// Module wires the database connection.
var Module = fx.Module("db",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)

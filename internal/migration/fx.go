package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/compfund/cfportal/internal/config"
	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
	roedomain "github.com/compfund/cfportal/internal/roe/domain"
	"github.com/compfund/cfportal/internal/seed"
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
			// Embedded local databases use the model definitions
			// directly instead of the postgres migration set.
			if err := conn.AutoMigrate(
				&identitydomain.User{},
				&identitydomain.AdminUser{},
				&orgdomain.Organisation{},
				&orgdomain.Document{},
				&orgdomain.LinkedUser{},
				&roedomain.ROE{},
				&roedomain.Document{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDefaultAdmin {
			if err := seed.EnsureDefaultAdmin(conn); err != nil {
				return err
			}
		}
		if cfg.SeedDrafts {
			if err := seed.EnsureDraftOrganisations(conn); err != nil {
				return err
			}
		}
		return nil
	}),
)

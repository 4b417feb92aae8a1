package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/compfund/cfportal/internal/config"
	"github.com/compfund/cfportal/internal/docgen"
	"github.com/compfund/cfportal/internal/identity"
	"github.com/compfund/cfportal/internal/logger"
	"github.com/compfund/cfportal/internal/migration"
	"github.com/compfund/cfportal/internal/notify"
	"github.com/compfund/cfportal/internal/organisation"
	"github.com/compfund/cfportal/internal/roe"
	"github.com/compfund/cfportal/internal/server"
	"github.com/compfund/cfportal/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		notify.Module,
		docgen.Module,
		identity.Module,
		organisation.Module,
		roe.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

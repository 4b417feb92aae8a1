package roe

import (
	"go.uber.org/fx"

	"github.com/compfund/cfportal/internal/roe/repository"
	"github.com/compfund/cfportal/internal/roe/service"
)

var Module = fx.Module("roe",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)

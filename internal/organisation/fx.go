package organisation

import (
	"go.uber.org/fx"

	"github.com/compfund/cfportal/internal/organisation/repository"
	"github.com/compfund/cfportal/internal/organisation/service"
)

var Module = fx.Module("organisation",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)

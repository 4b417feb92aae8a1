package identity

import (
	"go.uber.org/fx"

	"github.com/compfund/cfportal/internal/config"
	"github.com/compfund/cfportal/internal/identity/repository"
	"github.com/compfund/cfportal/internal/identity/service"
	"github.com/compfund/cfportal/internal/identity/token"
)

var Module = fx.Module("identity",
	fx.Provide(newTokenIssuer),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)

func newTokenIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, cfg.AuthTokenTTL)
}

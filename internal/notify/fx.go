package notify

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/config"
)

var Module = fx.Module("notify",
	fx.Provide(NewFromConfig),
	fx.Provide(NewNotifier),
)

func NewFromConfig(cfg config.Config, logger *zap.Logger) Provider {
	if cfg.SMTP.Host == "" {
		logger.Warn("smtp host not configured, outgoing email disabled")
		return &NoOpProvider{}
	}
	return NewSMTP(Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

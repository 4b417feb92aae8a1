package docgen

import "go.uber.org/fx"

var Module = fx.Module("docgen",
	fx.Provide(New),
)

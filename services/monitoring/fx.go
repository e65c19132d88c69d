package monitoring

import "go.uber.org/fx"

var Module = fx.Module("monitoring.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

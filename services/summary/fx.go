package summary

import "go.uber.org/fx"

var Module = fx.Module("summary.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

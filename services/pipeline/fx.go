package pipeline

import "go.uber.org/fx"

var Module = fx.Module("pipeline.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

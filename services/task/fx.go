package task

import "go.uber.org/fx"

var Module = fx.Module("task.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

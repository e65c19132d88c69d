package shiftrecord

import "go.uber.org/fx"

var Module = fx.Module("shiftrecord.module",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

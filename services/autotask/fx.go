package autotask

import (
	"retailops-dashboard/pkg/minio"

	"go.uber.org/fx"
)

var Module = fx.Module("autotask.module",
	fx.Provide(
		func(b *minio.Bucket) ObjectStore { return b },
		NewService,
		NewHandler,
	),
	fx.Invoke(
		RegisterRoutes,
		RegisterWorker,
	),
)

package main

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"retailops-dashboard/internal/server"
	"retailops-dashboard/internal/session"
	pkgasynq "retailops-dashboard/pkg/asynq"
	"retailops-dashboard/pkg/config"
	"retailops-dashboard/pkg/db"
	"retailops-dashboard/pkg/gen"
	"retailops-dashboard/pkg/health"
	"retailops-dashboard/pkg/logger"
	"retailops-dashboard/pkg/minio"
	"retailops-dashboard/pkg/redis"
	"retailops-dashboard/services/auth"
	"retailops-dashboard/services/autotask"
	"retailops-dashboard/services/monitoring"
	"retailops-dashboard/services/pipeline"
	"retailops-dashboard/services/shiftrecord"
	"retailops-dashboard/services/summary"
	"retailops-dashboard/services/sweeper"
	"retailops-dashboard/services/task"
)

func autoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&auth.User{},
		&task.Task{},
		&task.TaskFile{},
		&pipeline.Pipeline{},
		&monitoring.PipelineMonitoring{},
		&shiftrecord.PipelineMonitoringRecord{},
		&autotask.AutomatedTask{},
	)
}

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		gen.Module,
		db.Module,
		redis.Module,
		minio.Module,
		pkgasynq.Client,
		pkgasynq.Server,
		session.Module,
		health.Module,
		server.Module,

		auth.Module,
		task.Module,
		pipeline.Module,
		monitoring.Module,
		shiftrecord.Module,
		autotask.Module,
		summary.Module,
		sweeper.Module,

		fx.Invoke(autoMigrate),
	)

	app.Run()
}

package server

import (
	"context"
	"net/http"
	"time"

	"retailops-dashboard/pkg/config"
	"retailops-dashboard/pkg/health"
	"retailops-dashboard/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(
		ProvideEngine,
		NewHTTPServer,
	),
	fx.Invoke(
		registerHealthRoutes,
		Run,
	),
)

// ProvideEngine builds the gin engine shared by all feature services. Routes
// are registered by each service's fx.Invoke hook.
func ProvideEngine(cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())
	engine.Use(middleware.Error())
	return engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Info("http.request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

type Params struct {
	fx.In
	Config *config.Config
	Engine *gin.Engine
}

func NewHTTPServer(p Params) *http.Server {
	return &http.Server{
		Addr:         p.Config.Server.Addr,
		Handler:      p.Engine,
		ReadTimeout:  p.Config.Server.ReadTimeout,
		WriteTimeout: p.Config.Server.WriteTimeout,
		IdleTimeout:  p.Config.Server.IdleTimeout,
	}
}

func registerHealthRoutes(engine *gin.Engine, h health.Service) {
	engine.GET("/healthz", h.Liveness)
	engine.GET("/readyz", h.Readiness)
}

func Run(lc fx.Lifecycle, srv *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			zap.L().Info("Starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					zap.L().Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			zap.L().Info("Shutting down HTTP server gracefully...")
			return srv.Shutdown(ctx)
		},
	})
}

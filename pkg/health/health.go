package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("health", fx.Provide(ProvideHealth))

type Dependency struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Health struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Deps    []Dependency `json:"deps,omitempty"`
}

type Service interface {
	Liveness(c *gin.Context)
	Readiness(c *gin.Context)
}

type health struct {
	db    *gorm.DB
	redis *redis.Client
}

type Params struct {
	fx.In
	DB    *gorm.DB      `optional:"true"`
	Redis *redis.Client `optional:"true"`
}

func ProvideHealth(p Params) Service {
	return &health{db: p.DB, redis: p.Redis}
}

func (h *health) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Health{Status: "healthy", Message: "OK"})
}

func (h *health) Readiness(c *gin.Context) {
	out := &Health{Status: "healthy", Message: "OK"}
	code := http.StatusOK

	if h.db != nil {
		dep := Dependency{Name: "database", Status: "healthy", Message: "OK"}
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			dep.Status = "unhealthy"
			dep.Message = err.Error()
			out.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		out.Deps = append(out.Deps, dep)
	}

	if h.redis != nil {
		dep := Dependency{Name: "redis", Status: "healthy", Message: "OK"}
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			dep.Status = "unhealthy"
			dep.Message = err.Error()
			out.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		out.Deps = append(out.Deps, dep)
	}

	c.JSON(code, out)
}

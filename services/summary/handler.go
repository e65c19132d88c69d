package summary

import (
	"net/http"
	"time"

	"retailops-dashboard/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(engine *gin.Engine, h *Handler, store *session.Store) {
	engine.GET("/api/summary", session.Required(store), h.Get)
}

func (h *Handler) Get(c *gin.Context) {
	s, err := h.svc.Build(c.Request.Context(), time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s)
}

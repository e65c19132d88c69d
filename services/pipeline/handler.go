package pipeline

import (
	"net/http"

	"retailops-dashboard/internal/session"
	"retailops-dashboard/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func RegisterRoutes(engine *gin.Engine, h *Handler, store *session.Store) {
	grp := engine.Group("/api/pipelines", session.Required(store))
	grp.GET("", h.List)
	grp.POST("", h.Create)
}

func (h *Handler) List(c *gin.Context) {
	sess := session.FromContext(c)
	pipelines, err := h.svc.List(c.Request.Context(), sess.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pipelines)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	p, err := h.svc.Create(c.Request.Context(), sess.UserID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

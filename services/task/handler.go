package task

import (
	"net/http"
	"time"

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
	grp := engine.Group("/api/tasks", session.Required(store))
	grp.GET("", h.List)
	grp.POST("", h.Create)
	grp.PUT("/:id", h.Update)
	grp.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Search: c.Query("search"),
		Day:    c.Query("day"),
	}
	if raw := c.Query("dueOn"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			_ = c.Error(errutil.ValidationFailed("dueOn must be YYYY-MM-DD", "dueOn"))
			return
		}
		q.DueOn = &d
	}

	tasks, err := h.svc.List(c.Request.Context(), q, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	t, err := h.svc.Create(c.Request.Context(), sess.UserID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": t})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

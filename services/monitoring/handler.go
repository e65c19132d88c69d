package monitoring

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
	grp := engine.Group("/api/pipeline-monitoring", session.Required(store))
	grp.GET("", h.List)
	grp.POST("", h.Create)
	grp.PUT("/:id", h.Update)
}

func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errutil.ValidationFailed(name+" must be YYYY-MM-DD", name)
	}
	return &d, nil
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Shift:       c.Query("shift"),
		TriggerType: c.Query("triggerType"),
	}
	var err error
	if q.DateFrom, err = parseDateQuery(c, "dateFrom"); err != nil {
		_ = c.Error(err)
		return
	}
	if q.DateTo, err = parseDateQuery(c, "dateTo"); err != nil {
		_ = c.Error(err)
		return
	}

	records, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	m, err := h.svc.Create(c.Request.Context(), sess.UserID, req, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), sess.UserID, req, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

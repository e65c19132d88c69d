package shiftrecord

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
	grp := engine.Group("/api/pipeline-monitoring-records", session.Required(store))
	grp.GET("", h.List)
	grp.POST("", h.Create)
	grp.POST("/create-shift", h.CreateShift)
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
	q := ListQuery{Shift: c.Query("shift")}
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

	record, err := h.svc.Create(c.Request.Context(), req, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

type createShiftRequest struct {
	Shift          string     `json:"shift"`
	MonitoringDate *time.Time `json:"monitoringDate"`
}

func (h *Handler) CreateShift(c *gin.Context) {
	var req createShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	result, err := h.svc.CreateShiftRecords(c.Request.Context(), req.Shift, req.MonitoringDate, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      result.Message,
		"recordsCount": len(result.Created),
		"skipped":      len(result.Skipped),
	})
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	record, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

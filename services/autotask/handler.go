package autotask

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"retailops-dashboard/internal/session"
	"retailops-dashboard/pkg/errutil"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

type Handler struct {
	svc    *Service
	client *asynq.Client
}

func NewHandler(svc *Service, client *asynq.Client) *Handler {
	return &Handler{svc: svc, client: client}
}

func RegisterRoutes(engine *gin.Engine, h *Handler, store *session.Store) {
	grp := engine.Group("/api/automated-tasks", session.Required(store))
	grp.GET("", h.List)
	grp.POST("", h.Create)
	grp.PUT("/:id", h.Update)
	grp.DELETE("/:id", h.Delete)
	grp.POST("/:id/upload", h.Upload)
	grp.POST("/:id/trigger", h.Trigger)
	grp.POST("/:id/process", h.Process)
}

func (h *Handler) List(c *gin.Context) {
	sess := session.FromContext(c)
	tasks, err := h.svc.List(c.Request.Context(), sess.UserID)
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

	sess := session.FromContext(c)
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), sess.UserID, req, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) Delete(c *gin.Context) {
	sess := session.FromContext(c)
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), sess.UserID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(errutil.ValidationFailed("No file provided", "file"))
		return
	}

	src, err := file.Open()
	if err != nil {
		_ = c.Error(errutil.Internal("failed to read uploaded file", errutil.WithErr(err)))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		_ = c.Error(errutil.Internal("failed to read uploaded file", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	t, err := h.svc.Upload(c.Request.Context(), c.Param("id"), sess.UserID, file.Filename, data, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "XLSX file uploaded successfully",
		"fileName": file.Filename,
		"fileSize": file.Size,
		"task":     t,
	})
}

type triggerRequest struct {
	TaskType string `json:"taskType"`
}

func (h *Handler) Trigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	data, filename, err := h.svc.Trigger(c.Request.Context(), c.Param("id"), sess.UserID, req.TaskType, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) Process(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", errutil.WithErr(err)))
		return
	}

	sess := session.FromContext(c)
	task, err := NewProcessTask(c.Param("id"), sess.UserID, req.TaskType)
	if err != nil {
		_ = c.Error(errutil.Internal("failed to enqueue task", errutil.WithErr(err)))
		return
	}
	info, err := h.client.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		_ = c.Error(errutil.Internal("failed to enqueue task", errutil.WithErr(err)))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "jobId": info.ID})
}

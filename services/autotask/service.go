package autotask

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/services/transform"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStore is the slice of the bucket API the service needs; satisfied
// by pkg/minio.Bucket and by an in-memory store in tests.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	store ObjectStore
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Store ObjectStore
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB, node: p.Node, store: p.Store}
}

func (s *Service) List(ctx context.Context, userID string) ([]*AutomatedTask, error) {
	var tasks []*AutomatedTask
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		zap.L().Error("failed to list automated tasks", zap.Error(err))
		return nil, errutil.Internal("failed to fetch automated tasks", errutil.WithErr(err))
	}
	return tasks, nil
}

type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	TaskType    string  `json:"taskType"`
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*AutomatedTask, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errutil.ValidationFailed("Task name is required", "name")
	}
	if req.TaskType == "" {
		return nil, errutil.ValidationFailed("Task type is required", "taskType")
	}
	if !transform.Known(req.TaskType) {
		return nil, errutil.ValidationFailed("Unknown task type", "taskType")
	}

	t := &AutomatedTask{
		ID:       s.node.Generate().String(),
		Name:     name,
		TaskType: req.TaskType,
		IsActive: true,
		UserID:   userID,
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			t.Description = &desc
		}
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		zap.L().Error("failed to create automated task", zap.String("name", name), zap.Error(err))
		return nil, errutil.Internal("failed to create automated task", errutil.WithErr(err))
	}
	return t, nil
}

// find loads a task scoped to its owner.
func (s *Service) find(ctx context.Context, id, userID string) (*AutomatedTask, error) {
	var t AutomatedTask
	err := s.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("Automated task not found")
		}
		return nil, errutil.Internal("failed to load automated task", errutil.WithErr(err))
	}
	return &t, nil
}

type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (s *Service) Update(ctx context.Context, id, userID string, req UpdateRequest, now time.Time) (*AutomatedTask, error) {
	if _, err := s.find(ctx, id, userID); err != nil {
		return nil, err
	}

	values := map[string]any{"updated_at": now}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			values["name"] = name
		}
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			values["description"] = desc
		} else {
			values["description"] = nil
		}
	}
	if req.IsActive != nil {
		values["is_active"] = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Model(&AutomatedTask{}).
		Where("id = ?", id).Updates(values).Error; err != nil {
		zap.L().Error("failed to update automated task", zap.String("task_id", id), zap.Error(err))
		return nil, errutil.Internal("failed to update automated task", errutil.WithErr(err))
	}

	var updated AutomatedTask
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", id).Error; err != nil {
		return nil, errutil.Internal("failed to reload automated task", errutil.WithErr(err))
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.find(ctx, id, userID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&AutomatedTask{}, "id = ?", id).Error; err != nil {
		zap.L().Error("failed to delete automated task", zap.String("task_id", id), zap.Error(err))
		return errutil.Internal("failed to delete automated task", errutil.WithErr(err))
	}
	return nil
}

// Upload stores an xlsx source file for the task and remembers its object
// key. Only the latest upload is tracked; older objects stay in the bucket.
func (s *Service) Upload(ctx context.Context, id, userID, filename string, data []byte, now time.Time) (*AutomatedTask, error) {
	if len(data) == 0 {
		return nil, errutil.ValidationFailed("No file provided", "file")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return nil, errutil.UnsupportedMediaType("Only XLSX files are allowed")
	}

	t, err := s.find(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	key := fmt.Sprintf("automated-tasks/%s/%d_%s.xlsx", t.ID, now.UnixMilli(), slug.Make(base))
	if err := s.store.Put(ctx, key, data, xlsxContentType); err != nil {
		zap.L().Error("failed to store uploaded file",
			zap.String("task_id", id), zap.String("key", key), zap.Error(err))
		return nil, errutil.Internal("failed to upload file", errutil.WithErr(err))
	}

	values := map[string]any{
		"uploaded_file": key,
		"last_run":      now,
		"updated_at":    now,
	}
	if err := s.db.WithContext(ctx).Model(&AutomatedTask{}).
		Where("id = ?", id).Updates(values).Error; err != nil {
		return nil, errutil.Internal("failed to record upload", errutil.WithErr(err))
	}

	zap.L().Info("xlsx file uploaded for automated task",
		zap.String("task_id", id), zap.String("file_name", filename), zap.String("key", key))

	var updated AutomatedTask
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", id).Error; err != nil {
		return nil, errutil.Internal("failed to reload automated task", errutil.WithErr(err))
	}
	return &updated, nil
}

// run loads the task's uploaded workbook, applies the named transform and
// returns the processed workbook bytes.
func (s *Service) run(ctx context.Context, t *AutomatedTask, taskType string, now time.Time) ([]byte, error) {
	if !t.IsActive {
		return nil, errutil.ValidationFailed("Automated task is not active", "isActive")
	}
	if t.UploadedFile == nil {
		return nil, errutil.ValidationFailed("No file uploaded for this task", "uploadedFile")
	}
	if !transform.Known(taskType) {
		return nil, errutil.ValidationFailed("Unknown task type", "taskType")
	}

	data, err := s.store.Get(ctx, *t.UploadedFile)
	if err != nil {
		zap.L().Error("failed to fetch uploaded file",
			zap.String("task_id", t.ID), zap.String("key", *t.UploadedFile), zap.Error(err))
		return nil, errutil.Internal("failed to process task", errutil.WithErr(err))
	}

	table, err := transform.ReadWorkbook(data)
	if err != nil {
		return nil, errutil.Internal("failed to process task", errutil.WithErr(err))
	}
	table, sheet, err := transform.Apply(taskType, table, now)
	if err != nil {
		return nil, err
	}
	out, err := transform.WriteWorkbook(table, sheet)
	if err != nil {
		return nil, errutil.Internal("failed to process task", errutil.WithErr(err))
	}
	return out, nil
}

func (s *Service) touchLastRun(ctx context.Context, id string, now time.Time) error {
	return s.db.WithContext(ctx).Model(&AutomatedTask{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_run": now, "updated_at": now}).Error
}

// Trigger runs the transform synchronously and returns the workbook as a
// download along with its suggested file name.
func (s *Service) Trigger(ctx context.Context, id, userID, taskType string, now time.Time) ([]byte, string, error) {
	t, err := s.find(ctx, id, userID)
	if err != nil {
		return nil, "", err
	}

	out, err := s.run(ctx, t, taskType, now)
	if err != nil {
		return nil, "", err
	}

	if err := s.touchLastRun(ctx, id, now); err != nil {
		return nil, "", errutil.Internal("failed to record run", errutil.WithErr(err))
	}

	zap.L().Info("automated task processed",
		zap.String("task_id", id), zap.String("task_type", taskType), zap.String("name", t.Name))

	filename := fmt.Sprintf("processed_%s_%s.xlsx", taskType, now.UTC().Format("2006-01-02"))
	return out, filename, nil
}

// Process runs the transform in the background and writes the result back
// to the bucket under processed/.
func (s *Service) Process(ctx context.Context, id, userID, taskType string, now time.Time) (string, error) {
	t, err := s.find(ctx, id, userID)
	if err != nil {
		return "", err
	}

	out, err := s.run(ctx, t, taskType, now)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("processed/%s/%d_%s.xlsx", t.ID, now.UnixMilli(), taskType)
	if err := s.store.Put(ctx, key, out, xlsxContentType); err != nil {
		zap.L().Error("failed to store processed file",
			zap.String("task_id", id), zap.String("key", key), zap.Error(err))
		return "", errutil.Internal("failed to store processed file", errutil.WithErr(err))
	}

	if err := s.touchLastRun(ctx, id, now); err != nil {
		return "", errutil.Internal("failed to record run", errutil.WithErr(err))
	}
	return key, nil
}

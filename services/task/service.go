package task

import (
	"context"
	"strings"
	"time"

	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/services/schedule"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB, node: p.Node}
}

type ListQuery struct {
	Search string
	Day    string
	DueOn  *time.Time
}

// List returns the catalog, newest first. Stale completions are swept in bulk
// first so every read observes reconciled state; staleness is bounded by read
// frequency, not a background timer.
func (s *Service) List(ctx context.Context, q ListQuery, now time.Time) ([]*Task, error) {
	if err := s.SweepStaleCompletions(ctx, now); err != nil {
		zap.L().Error("failed to sweep stale completions", zap.Error(err))
		return nil, errutil.Internal("failed to fetch tasks", errutil.WithErr(err))
	}

	tx := s.db.WithContext(ctx).Preload("Files").Order("created_at DESC")
	if q.Search != "" {
		tx = tx.Where("LOWER(retailer) LIKE ?", "%"+strings.ToLower(q.Search)+"%")
	}
	if q.Day != "" && !strings.EqualFold(q.Day, "all") {
		tx = tx.Where("LOWER(day) LIKE ?", "%"+strings.ToLower(q.Day)+"%")
	}

	var tasks []*Task
	if err := tx.Find(&tasks).Error; err != nil {
		zap.L().Error("failed to list tasks", zap.Error(err))
		return nil, errutil.Internal("failed to fetch tasks", errutil.WithErr(err))
	}

	// The sweep and the select are separate statements; reconcile in memory
	// so a completion that went stale in between still reads as cleared.
	for _, t := range tasks {
		state, changed := schedule.Reconcile(schedule.CompletionState{
			Completed:   t.Completed,
			CompletedBy: t.CompletedBy,
			CompletedAt: t.CompletedAt,
			UpdatedAt:   t.UpdatedAt,
		}, now)
		if changed {
			t.Completed = state.Completed
			t.CompletedBy = state.CompletedBy
			t.CompletedAt = state.CompletedAt
			t.UpdatedAt = state.UpdatedAt
		}
	}

	if q.DueOn == nil {
		return tasks, nil
	}

	due := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		rule := schedule.Normalize(t.Schedule)
		if schedule.IsDue(rule, schedule.ParseDays(t.ScheduleDays), *q.DueOn) {
			due = append(due, t)
		}
	}
	return due, nil
}

// SweepStaleCompletions clears every completion older than the reset window
// in one bulk update. Re-running it when nothing is stale is a no-op.
func (s *Service) SweepStaleCompletions(ctx context.Context, now time.Time) error {
	cutoff := now.Add(-schedule.ResetAfter)
	return s.db.WithContext(ctx).Model(&Task{}).
		Where("completed = ? AND updated_at < ?", true, cutoff).
		Updates(map[string]any{
			"completed":    false,
			"completed_by": nil,
			"completed_at": nil,
			"updated_at":   now,
		}).Error
}

type CreateRequest struct {
	Retailer     string    `json:"retailer"`
	Day          string    `json:"day"`
	Schedule     string    `json:"schedule"`
	ScheduleDays string    `json:"scheduleDays"`
	FileCount    int       `json:"fileCount"`
	Formats      Formats   `json:"formats"`
	LoadType     string    `json:"loadType"`

	ISTTime  *string `json:"istTime"`
	ESTTime  *string `json:"estTime"`
	SQLQuery *string `json:"sqlQuery"`

	IndirectLoadSource *string `json:"indirectLoadSource"`
	WebsiteLink        *string `json:"websiteLink"`
	PortalUsername     *string `json:"portalUsername"`
	PortalPassword     *string `json:"portalPassword"`
	MailFolder         *string `json:"mailFolder"`
	MailID             *string `json:"mailId"`

	Link     string `json:"link"`
	Username string `json:"username"`
	Password string `json:"password"`

	KTRecordingLink   *string `json:"ktRecordingLink"`
	DocumentationLink *string `json:"documentationLink"`
	Instructions      *string `json:"instructions"`

	Files []FileEntry `json:"files"`
}

type FileEntry struct {
	DownloadName string `json:"downloadName"`
	RequiredName string `json:"requiredName"`
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Task, error) {
	if strings.TrimSpace(req.Retailer) == "" {
		return nil, errutil.ValidationFailed("retailer is required", "retailer")
	}
	if schedule.Normalize(req.Schedule) == schedule.RuleCustom && len(schedule.ParseDays(req.ScheduleDays)) == 0 {
		return nil, errutil.ValidationFailed("custom schedule requires at least one day", "scheduleDays")
	}

	t := &Task{
		ID:                 s.node.Generate().String(),
		Retailer:           strings.TrimSpace(req.Retailer),
		Day:                req.Day,
		Schedule:           req.Schedule,
		ScheduleDays:       req.ScheduleDays,
		FileCount:          req.FileCount,
		Formats:            datatypes.NewJSONType(req.Formats),
		LoadType:           req.LoadType,
		ISTTime:            req.ISTTime,
		ESTTime:            req.ESTTime,
		SQLQuery:           req.SQLQuery,
		IndirectLoadSource: req.IndirectLoadSource,
		WebsiteLink:        req.WebsiteLink,
		PortalUsername:     req.PortalUsername,
		PortalPassword:     req.PortalPassword,
		MailFolder:         req.MailFolder,
		MailID:             req.MailID,
		Link:               req.Link,
		Username:           req.Username,
		Password:           req.Password,
		KTRecordingLink:    req.KTRecordingLink,
		DocumentationLink:  req.DocumentationLink,
		Instructions:       req.Instructions,
		UserID:             userID,
	}
	for _, f := range req.Files {
		t.Files = append(t.Files, TaskFile{
			ID:           s.node.Generate().String(),
			TaskID:       t.ID,
			DownloadName: f.DownloadName,
			RequiredName: f.RequiredName,
		})
	}

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		zap.L().Error("failed to create task", zap.String("retailer", t.Retailer), zap.Error(err))
		return nil, errutil.Internal("failed to create task", errutil.WithErr(err))
	}
	return t, nil
}

// UpdateRequest carries partial edits; nil fields are left untouched.
type UpdateRequest struct {
	Retailer     *string  `json:"retailer"`
	Day          *string  `json:"day"`
	Schedule     *string  `json:"schedule"`
	ScheduleDays *string  `json:"scheduleDays"`
	FileCount    *int     `json:"fileCount"`
	Formats      *Formats `json:"formats"`
	LoadType     *string  `json:"loadType"`

	ISTTime  *string `json:"istTime"`
	ESTTime  *string `json:"estTime"`
	SQLQuery *string `json:"sqlQuery"`

	IndirectLoadSource *string `json:"indirectLoadSource"`
	WebsiteLink        *string `json:"websiteLink"`
	PortalUsername     *string `json:"portalUsername"`
	PortalPassword     *string `json:"portalPassword"`
	MailFolder         *string `json:"mailFolder"`
	MailID             *string `json:"mailId"`

	Link     *string `json:"link"`
	Username *string `json:"username"`
	Password *string `json:"password"`

	KTRecordingLink   *string `json:"ktRecordingLink"`
	DocumentationLink *string `json:"documentationLink"`
	Instructions      *string `json:"instructions"`

	Completed   *bool   `json:"completed"`
	CompletedBy *string `json:"completedBy"`

	// Files, when present, replaces the whole owned set.
	Files *[]FileEntry `json:"files"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, now time.Time) (*Task, error) {
	var existing Task
	if err := s.db.WithContext(ctx).Preload("Files").First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("task not found")
		}
		return nil, errutil.Internal("failed to load task", errutil.WithErr(err))
	}

	values := map[string]any{"updated_at": now}

	setString := func(col string, v *string) {
		if v != nil {
			values[col] = *v
		}
	}
	setString("retailer", req.Retailer)
	setString("day", req.Day)
	setString("schedule", req.Schedule)
	setString("schedule_days", req.ScheduleDays)
	setString("load_type", req.LoadType)
	setString("ist_time", req.ISTTime)
	setString("est_time", req.ESTTime)
	setString("sql_query", req.SQLQuery)
	setString("indirect_load_source", req.IndirectLoadSource)
	setString("website_link", req.WebsiteLink)
	setString("portal_username", req.PortalUsername)
	setString("portal_password", req.PortalPassword)
	setString("mail_folder", req.MailFolder)
	setString("mail_id", req.MailID)
	setString("link", req.Link)
	setString("username", req.Username)
	setString("password", req.Password)
	setString("kt_recording_link", req.KTRecordingLink)
	setString("documentation_link", req.DocumentationLink)
	setString("instructions", req.Instructions)
	if req.FileCount != nil {
		values["file_count"] = *req.FileCount
	}
	if req.Formats != nil {
		values["formats"] = datatypes.NewJSONType(*req.Formats)
	}

	// completedAt is non-null iff completed: set it on the completing toggle,
	// clear it together with completedBy on the clearing one.
	if req.Completed != nil {
		values["completed"] = *req.Completed
		if *req.Completed {
			values["completed_at"] = now
			if req.CompletedBy != nil {
				values["completed_by"] = *req.CompletedBy
			}
		} else {
			values["completed_at"] = nil
			values["completed_by"] = nil
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Files != nil {
			if err := tx.Where("task_id = ?", id).Delete(&TaskFile{}).Error; err != nil {
				return err
			}
			for _, f := range *req.Files {
				entry := TaskFile{
					ID:           s.node.Generate().String(),
					TaskID:       id,
					DownloadName: f.DownloadName,
					RequiredName: f.RequiredName,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
		}
		return tx.Model(&Task{}).Where("id = ?", id).Updates(values).Error
	})
	if err != nil {
		zap.L().Error("failed to update task", zap.String("task_id", id), zap.Error(err))
		return nil, errutil.Internal("failed to update task", errutil.WithErr(err))
	}

	var updated Task
	if err := s.db.WithContext(ctx).Preload("Files").First(&updated, "id = ?", id).Error; err != nil {
		return nil, errutil.Internal("failed to reload task", errutil.WithErr(err))
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if res.Error != nil {
		zap.L().Error("failed to delete task", zap.String("task_id", id), zap.Error(res.Error))
		return errutil.Internal("failed to delete task", errutil.WithErr(res.Error))
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound("task not found")
	}
	return nil
}

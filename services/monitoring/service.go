package monitoring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retailops-dashboard/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
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

type CreateRequest struct {
	TriggerType  string  `json:"triggerType"`
	HandledShift *string `json:"handledShift"`
	FailureShift *string `json:"failureShift"`
	TriggerName  string  `json:"triggerName"`
	RunID        string  `json:"runId"`
	Status       string  `json:"status"`
	MonitoredBy  string  `json:"monitoredBy"`

	ReRunID        *string `json:"reRunId"`
	IncNumber      *string `json:"incNumber"`
	CurrentStatus  *string `json:"currentStatus"`
	ResolvedBy     *string `json:"resolvedBy"`
	ResolvedByUser *string `json:"resolvedByUser"`
	WorkingTeam    *string `json:"workingTeam"`
	Comments       *string `json:"comments"`

	ADFName      *string `json:"adfName"`
	ADFUrl       *string `json:"adfUrl"`
	FailedADFUrl *string `json:"failedAdfUrl"`
	ReRunADFUrl  *string `json:"reRunAdfUrl"`
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// nullableTrim is trimmedOrNil shaped for a map update: an empty or blank
// string writes NULL instead of a typed nil pointer.
func nullableTrim(v *string) any {
	if s := trimmedOrNil(v); s != nil {
		return *s
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest, now time.Time) (*PipelineMonitoring, error) {
	triggerType := req.TriggerType
	if triggerType == "" {
		triggerType = TriggerFailed
	}
	if triggerType != TriggerFailed && triggerType != TriggerFresh {
		return nil, errutil.ValidationFailed("Trigger type must be failed or fresh", "triggerType")
	}
	if req.HandledShift != nil && !validShifts[*req.HandledShift] {
		return nil, errutil.ValidationFailed("Handled shift must be A, B, or C if provided", "handledShift")
	}
	if strings.TrimSpace(req.TriggerName) == "" {
		return nil, errutil.ValidationFailed("Trigger name is required", "triggerName")
	}
	if strings.TrimSpace(req.RunID) == "" {
		return nil, errutil.ValidationFailed("Run ID is required", "runId")
	}
	if !validStatuses[req.Status] {
		return nil, errutil.ValidationFailed("Valid status is required", "status")
	}
	if strings.TrimSpace(req.MonitoredBy) == "" {
		return nil, errutil.ValidationFailed("Monitored by name is required", "monitoredBy")
	}
	if triggerType == TriggerFailed && (req.FailureShift == nil || !validShifts[*req.FailureShift]) {
		return nil, errutil.ValidationFailed("Failure shift (A, B, or C) is required for failed triggers", "failureShift")
	}

	m := &PipelineMonitoring{
		ID:             s.node.Generate().String(),
		Date:           now,
		TriggerType:    triggerType,
		HandledShift:   req.HandledShift,
		FailureShift:   req.FailureShift,
		TriggerName:    strings.TrimSpace(req.TriggerName),
		RunID:          strings.TrimSpace(req.RunID),
		Status:         req.Status,
		MonitoredBy:    strings.TrimSpace(req.MonitoredBy),
		ReRunID:        trimmedOrNil(req.ReRunID),
		IncNumber:      trimmedOrNil(req.IncNumber),
		CurrentStatus:  req.CurrentStatus,
		ResolvedBy:     req.ResolvedBy,
		ResolvedByUser: trimmedOrNil(req.ResolvedByUser),
		WorkingTeam:    req.WorkingTeam,
		Comments:       trimmedOrNil(req.Comments),
		ADFName:        trimmedOrNil(req.ADFName),
		ADFUrl:         trimmedOrNil(req.ADFUrl),
		FailedADFUrl:   trimmedOrNil(req.FailedADFUrl),
		ReRunADFUrl:    trimmedOrNil(req.ReRunADFUrl),
		UserID:         userID,
		CreatedBy:      userID,
		UpdatedBy:      userID,
	}

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		zap.L().Error("failed to create monitoring record",
			zap.String("trigger_name", m.TriggerName), zap.Error(err))
		return nil, errutil.Internal("failed to create monitoring record", errutil.WithErr(err))
	}
	return m, nil
}

type ListQuery struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	Shift       string
	TriggerType string
}

// List returns monitoring records newest first. The trigger type defaults to
// failed so the dashboard's main view shows the failure log.
func (s *Service) List(ctx context.Context, q ListQuery) ([]*PipelineMonitoring, error) {
	tx := s.db.WithContext(ctx).Order("date DESC")
	if q.DateFrom != nil {
		tx = tx.Where("date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		tx = tx.Where("date <= ?", *q.DateTo)
	}
	if validShifts[q.Shift] {
		tx = tx.Where("failure_shift = ?", q.Shift)
	}
	triggerType := q.TriggerType
	if triggerType == "" {
		triggerType = TriggerFailed
	}
	if triggerType == TriggerFailed || triggerType == TriggerFresh {
		tx = tx.Where("trigger_type = ?", triggerType)
	}

	var records []*PipelineMonitoring
	if err := tx.Find(&records).Error; err != nil {
		zap.L().Error("failed to list monitoring records", zap.Error(err))
		return nil, errutil.Internal("failed to fetch monitoring data", errutil.WithErr(err))
	}
	return records, nil
}

// Update actions. A request without an action may only touch plain editable
// fields; the resolution and incident paths each carry their own required
// fields and are never inferred from field presence.
const (
	ActionResolve  = "resolve"
	ActionIncident = "incident"
)

type UpdateRequest struct {
	Action string `json:"action"`

	HandledShift *string `json:"handledShift"`
	Status       *string `json:"status"`
	ReRunID      *string `json:"reRunId"`
	Comments     *string `json:"comments"`
	ADFName      *string `json:"adfName"`
	ADFUrl       *string `json:"adfUrl"`
	FailedADFUrl *string `json:"failedAdfUrl"`
	ReRunADFUrl  *string `json:"reRunAdfUrl"`

	// action=resolve
	ResolvedBy     *string `json:"resolvedBy"`
	ResolvedByUser *string `json:"resolvedByUser"`

	// action=incident
	IncNumber     *string `json:"incNumber"`
	CurrentStatus *string `json:"currentStatus"`
	WorkingTeam   *string `json:"workingTeam"`
}

func (s *Service) Update(ctx context.Context, id, userID string, req UpdateRequest, now time.Time) (*PipelineMonitoring, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errutil.ValidationFailed("Record ID is required", "id")
	}

	var existing PipelineMonitoring
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("Record not found")
		}
		return nil, errutil.Internal("failed to load monitoring record", errutil.WithErr(err))
	}

	if req.HandledShift != nil && !validShifts[*req.HandledShift] {
		return nil, errutil.ValidationFailed("Handled shift must be A, B, or C if provided", "handledShift")
	}
	if req.Status != nil && !validStatuses[*req.Status] {
		return nil, errutil.ValidationFailed("Valid status is required", "status")
	}

	values := map[string]any{
		"updated_at": now,
		"updated_by": userID,
	}
	if req.HandledShift != nil {
		values["handled_shift"] = *req.HandledShift
	}
	if req.Status != nil {
		values["status"] = *req.Status
	}
	if req.ReRunID != nil {
		values["re_run_id"] = nullableTrim(req.ReRunID)
	}
	if req.Comments != nil {
		values["comments"] = nullableTrim(req.Comments)
	}
	if req.ADFName != nil {
		values["adf_name"] = nullableTrim(req.ADFName)
	}
	if req.ADFUrl != nil {
		values["adf_url"] = nullableTrim(req.ADFUrl)
	}
	if req.FailedADFUrl != nil {
		values["failed_adf_url"] = nullableTrim(req.FailedADFUrl)
	}
	if req.ReRunADFUrl != nil {
		values["re_run_adf_url"] = nullableTrim(req.ReRunADFUrl)
	}

	switch req.Action {
	case ActionResolve:
		if req.ResolvedBy == nil || !validResolvers[*req.ResolvedBy] {
			return nil, errutil.ValidationFailed("Resolved by team must be L1, L2, or OPS", "resolvedBy")
		}
		values["current_status"] = StatusResolved
		values["resolved_by"] = *req.ResolvedBy
		if u := trimmedOrNil(req.ResolvedByUser); u != nil {
			values["resolved_by_user"] = *u
		}
	case ActionIncident:
		inc := trimmedOrNil(req.IncNumber)
		if inc == nil {
			return nil, errutil.ValidationFailed("Incident number is required", "incNumber")
		}
		if req.CurrentStatus == nil ||
			(*req.CurrentStatus != StatusUnresolved && *req.CurrentStatus != StatusInProgress) {
			return nil, errutil.ValidationFailed("Valid status (UNRESOLVED, IN-PROGRESS) is required", "currentStatus")
		}
		if req.WorkingTeam == nil || !validWorkingTeams[*req.WorkingTeam] {
			return nil, errutil.ValidationFailed("Valid working team (L1_TEAM, L2_TEAM, OPS_TEAM, PLATFORM_TEAM) is required", "workingTeam")
		}
		values["inc_number"] = *inc
		values["current_status"] = *req.CurrentStatus
		values["working_team"] = *req.WorkingTeam
	case "":
		if req.ResolvedBy != nil || req.ResolvedByUser != nil ||
			req.IncNumber != nil || req.CurrentStatus != nil || req.WorkingTeam != nil {
			return nil, errutil.ValidationFailed("resolution and incident fields require an action of resolve or incident", "action")
		}
	default:
		return nil, errutil.ValidationFailed(fmt.Sprintf("unknown action %q", req.Action), "action")
	}

	if err := s.db.WithContext(ctx).Model(&PipelineMonitoring{}).
		Where("id = ?", existing.ID).Updates(values).Error; err != nil {
		zap.L().Error("failed to update monitoring record",
			zap.String("record_id", existing.ID), zap.Error(err))
		return nil, errutil.Internal("failed to update monitoring record", errutil.WithErr(err))
	}

	var updated PipelineMonitoring
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", existing.ID).Error; err != nil {
		return nil, errutil.Internal("failed to reload monitoring record", errutil.WithErr(err))
	}
	return &updated, nil
}

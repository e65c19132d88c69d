package shiftrecord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"retailops-dashboard/pkg/db"
	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/services/pipeline"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validShifts = map[string]bool{"A": true, "B": true, "C": true}

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

// normalizeDate truncates to midnight UTC so the uniqueness key compares
// dates, not instants.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ShiftResult reports one bulk roster creation.
type ShiftResult struct {
	Created []*PipelineMonitoringRecord `json:"-"`
	Skipped []string                    `json:"-"`
	Message string                      `json:"message"`
}

// CreateShiftRecords seeds the roster for one shift on one date: one record
// per unique catalog pipeline. Rows that already exist are skipped, any
// other storage error aborts the batch.
func (s *Service) CreateShiftRecords(ctx context.Context, shift string, monitoringDate *time.Time, now time.Time) (*ShiftResult, error) {
	if !validShifts[shift] {
		return nil, errutil.ValidationFailed("Valid shift (A, B, or C) is required", "shift")
	}

	var pipelines []*pipeline.Pipeline
	if err := s.db.WithContext(ctx).Find(&pipelines).Error; err != nil {
		zap.L().Error("failed to load pipeline catalog", zap.Error(err))
		return nil, errutil.Internal("failed to create shift records", errutil.WithErr(err))
	}

	// Dedupe by pipeline name, first occurrence wins.
	seen := map[string]bool{}
	unique := pipelines[:0]
	for _, p := range pipelines {
		if !seen[p.Name] {
			seen[p.Name] = true
			unique = append(unique, p)
		}
	}

	if len(unique) == 0 {
		return nil, errutil.ValidationFailed("No pipelines found. Please add pipelines first.", "pipelines")
	}

	date := now
	if monitoringDate != nil {
		date = *monitoringDate
	}
	date = normalizeDate(date)

	result := &ShiftResult{}
	for _, p := range unique {
		trigger := p.TriggerName
		record := &PipelineMonitoringRecord{
			ID:              s.node.Generate().String(),
			MonitoringDate:  date,
			ShiftIST:        shift,
			ADFPipelineName: p.Name,
			ADFTriggerName:  &trigger,
		}
		if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
			if db.IsDuplicateKey(err) {
				result.Skipped = append(result.Skipped, p.Name)
				continue
			}
			zap.L().Error("failed to create shift record",
				zap.String("pipeline", p.Name), zap.String("shift", shift), zap.Error(err))
			return nil, errutil.Internal("failed to create shift records", errutil.WithErr(err))
		}
		result.Created = append(result.Created, record)
	}

	result.Message = fmt.Sprintf("Created %d monitoring records for %s shift", len(result.Created), shift)
	if len(result.Skipped) > 0 {
		result.Message += fmt.Sprintf(" (%d already exist)", len(result.Skipped))
	}
	return result, nil
}

type CreateRequest struct {
	MonitoringDate  *time.Time `json:"monitoringDate"`
	ShiftIST        string     `json:"shiftIST"`
	ADFPipelineName string     `json:"adfPipelineName"`
	ADFTriggerName  *string    `json:"adfTriggerName"`

	ADFPipelineRunID         *string `json:"adfPipelineRunId"`
	OverallDurationHoursMins *string `json:"overallDurationHoursMins"`
	OverallExecutionStatus   *string `json:"overallExecutionStatus"`
	MonitoredBy              *string `json:"monitoredBy"`
	IfFailedADFRerunID       *string `json:"ifFailedAdfRerunId"`
	SnowIncidentNumber       *string `json:"snowIncidentNumber"`
	FailureHandled           *string `json:"failureHandled"`
	PostResolveChecked       *string `json:"postResolveDataLoadChecked"`
	AdditionalComments       *string `json:"additionalComments"`
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

func (s *Service) Create(ctx context.Context, req CreateRequest, now time.Time) (*PipelineMonitoringRecord, error) {
	if !validShifts[req.ShiftIST] {
		return nil, errutil.ValidationFailed("Valid shift (A, B, or C) is required", "shiftIST")
	}
	if strings.TrimSpace(req.ADFPipelineName) == "" {
		return nil, errutil.ValidationFailed("ADF Pipeline Name is required", "adfPipelineName")
	}

	date := now
	if req.MonitoringDate != nil {
		date = *req.MonitoringDate
	}

	record := &PipelineMonitoringRecord{
		ID:                       s.node.Generate().String(),
		MonitoringDate:           normalizeDate(date),
		ShiftIST:                 req.ShiftIST,
		ADFPipelineName:          strings.TrimSpace(req.ADFPipelineName),
		ADFTriggerName:           trimmedOrNil(req.ADFTriggerName),
		ADFPipelineRunID:         trimmedOrNil(req.ADFPipelineRunID),
		OverallDurationHoursMins: trimmedOrNil(req.OverallDurationHoursMins),
		OverallExecutionStatus:   req.OverallExecutionStatus,
		MonitoredBy:              trimmedOrNil(req.MonitoredBy),
		IfFailedADFRerunID:       trimmedOrNil(req.IfFailedADFRerunID),
		SnowIncidentNumber:       trimmedOrNil(req.SnowIncidentNumber),
		FailureHandled:           req.FailureHandled,
		PostResolveChecked:       req.PostResolveChecked,
		AdditionalComments:       trimmedOrNil(req.AdditionalComments),
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict("Record already exists for this date, shift, and pipeline")
		}
		zap.L().Error("failed to create monitoring record",
			zap.String("pipeline", record.ADFPipelineName), zap.Error(err))
		return nil, errutil.Internal("failed to create record", errutil.WithErr(err))
	}
	return record, nil
}

type ListQuery struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Shift    string
}

func (s *Service) List(ctx context.Context, q ListQuery) ([]*PipelineMonitoringRecord, error) {
	tx := s.db.WithContext(ctx).Order("monitoring_date DESC")
	if q.DateFrom != nil {
		tx = tx.Where("monitoring_date >= ?", normalizeDate(*q.DateFrom))
	}
	if q.DateTo != nil {
		tx = tx.Where("monitoring_date <= ?", normalizeDate(*q.DateTo))
	}
	if validShifts[q.Shift] {
		tx = tx.Where("shift_ist = ?", q.Shift)
	}

	var records []*PipelineMonitoringRecord
	if err := tx.Find(&records).Error; err != nil {
		zap.L().Error("failed to list shift records", zap.Error(err))
		return nil, errutil.Internal("failed to fetch records", errutil.WithErr(err))
	}
	return records, nil
}

// UpdateRequest carries partial edits. The uniqueness key fields (date,
// shift, pipeline name) are frozen after creation.
type UpdateRequest struct {
	ADFTriggerName           *string `json:"adfTriggerName"`
	ADFPipelineRunID         *string `json:"adfPipelineRunId"`
	OverallDurationHoursMins *string `json:"overallDurationHoursMins"`
	OverallExecutionStatus   *string `json:"overallExecutionStatus"`
	MonitoredBy              *string `json:"monitoredBy"`
	IfFailedADFRerunID       *string `json:"ifFailedAdfRerunId"`
	SnowIncidentNumber       *string `json:"snowIncidentNumber"`
	FailureHandled           *string `json:"failureHandled"`
	PostResolveChecked       *string `json:"postResolveDataLoadChecked"`
	AdditionalComments       *string `json:"additionalComments"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, now time.Time) (*PipelineMonitoringRecord, error) {
	var existing PipelineMonitoringRecord
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("Record not found")
		}
		return nil, errutil.Internal("failed to load record", errutil.WithErr(err))
	}

	values := map[string]any{"updated_at": now}
	set := func(col string, v *string) {
		if v == nil {
			return
		}
		if trimmed := strings.TrimSpace(*v); trimmed != "" {
			values[col] = trimmed
		} else {
			values[col] = nil
		}
	}
	set("adf_trigger_name", req.ADFTriggerName)
	set("adf_pipeline_run_id", req.ADFPipelineRunID)
	set("overall_duration_hours_mins", req.OverallDurationHoursMins)
	set("overall_execution_status", req.OverallExecutionStatus)
	set("monitored_by", req.MonitoredBy)
	set("if_failed_adf_rerun_id", req.IfFailedADFRerunID)
	set("snow_incident_number", req.SnowIncidentNumber)
	set("failure_handled", req.FailureHandled)
	set("post_resolve_data_load_checked", req.PostResolveChecked)
	set("additional_comments", req.AdditionalComments)

	if err := s.db.WithContext(ctx).Model(&PipelineMonitoringRecord{}).
		Where("id = ?", id).Updates(values).Error; err != nil {
		zap.L().Error("failed to update shift record", zap.String("record_id", id), zap.Error(err))
		return nil, errutil.Internal("failed to update record", errutil.WithErr(err))
	}

	var updated PipelineMonitoringRecord
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", id).Error; err != nil {
		return nil, errutil.Internal("failed to reload record", errutil.WithErr(err))
	}
	return &updated, nil
}

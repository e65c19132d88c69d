package shiftrecord

import "time"

// PipelineMonitoringRecord is one expected roster row: a pipeline that the
// given IST shift is supposed to check on the given date. The unique index
// is what makes bulk creation idempotent.
type PipelineMonitoringRecord struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	MonitoringDate  time.Time `gorm:"column:monitoring_date;not null;uniqueIndex:idx_record_date_shift_pipeline" json:"monitoringDate"`
	ShiftIST        string    `gorm:"column:shift_ist;not null;uniqueIndex:idx_record_date_shift_pipeline" json:"shiftIST"`
	ADFPipelineName string    `gorm:"column:adf_pipeline_name;not null;uniqueIndex:idx_record_date_shift_pipeline" json:"adfPipelineName"`
	ADFTriggerName  *string   `gorm:"column:adf_trigger_name" json:"adfTriggerName,omitempty"`

	ADFPipelineRunID         *string `gorm:"column:adf_pipeline_run_id" json:"adfPipelineRunId,omitempty"`
	OverallDurationHoursMins *string `gorm:"column:overall_duration_hours_mins" json:"overallDurationHoursMins,omitempty"`
	OverallExecutionStatus   *string `gorm:"column:overall_execution_status" json:"overallExecutionStatus,omitempty"`
	MonitoredBy              *string `gorm:"column:monitored_by" json:"monitoredBy,omitempty"`
	IfFailedADFRerunID       *string `gorm:"column:if_failed_adf_rerun_id" json:"ifFailedAdfRerunId,omitempty"`
	SnowIncidentNumber       *string `gorm:"column:snow_incident_number" json:"snowIncidentNumber,omitempty"`
	FailureHandled           *string `gorm:"column:failure_handled" json:"failureHandled,omitempty"`
	PostResolveChecked       *string `gorm:"column:post_resolve_data_load_checked" json:"postResolveDataLoadChecked,omitempty"`
	AdditionalComments       *string `gorm:"column:additional_comments" json:"additionalComments,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

package monitoring

import "time"

// Trigger types.
const (
	TriggerFailed = "failed"
	TriggerFresh  = "fresh"
)

// Run statuses reported from ADF.
var validStatuses = map[string]bool{
	"SUCCESS": true,
	"FAILED":  true,
	"RUNNING": true,
	"SKIPPED": true,
}

// Resolution states. A record starts with no current status and moves to
// UNRESOLVED or IN-PROGRESS when an incident is raised, RESOLVED when closed.
const (
	StatusResolved   = "RESOLVED"
	StatusUnresolved = "UNRESOLVED"
	StatusInProgress = "IN-PROGRESS"
)

var validShifts = map[string]bool{"A": true, "B": true, "C": true}

var validResolvers = map[string]bool{"L1": true, "L2": true, "OPS": true}

var validWorkingTeams = map[string]bool{
	"L1_TEAM":       true,
	"L2_TEAM":       true,
	"OPS_TEAM":      true,
	"PLATFORM_TEAM": true,
}

// PipelineMonitoring is one logged pipeline run, either a failure under
// investigation or a fresh trigger. Records are never auto-deleted.
type PipelineMonitoring struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Date        time.Time `gorm:"column:date;index" json:"date"`
	TriggerType string    `gorm:"column:trigger_type;not null;index" json:"triggerType"`

	FailureShift *string `gorm:"column:failure_shift;index" json:"failureShift,omitempty"`
	HandledShift *string `gorm:"column:handled_shift" json:"handledShift,omitempty"`

	TriggerName string `gorm:"column:trigger_name;not null" json:"triggerName"`
	RunID       string `gorm:"column:run_id;not null" json:"runId"`
	Status      string `gorm:"column:status;not null" json:"status"`
	MonitoredBy string `gorm:"column:monitored_by;not null" json:"monitoredBy"`

	ReRunID        *string `gorm:"column:re_run_id" json:"reRunId,omitempty"`
	IncNumber      *string `gorm:"column:inc_number" json:"incNumber,omitempty"`
	CurrentStatus  *string `gorm:"column:current_status" json:"currentStatus,omitempty"`
	ResolvedBy     *string `gorm:"column:resolved_by" json:"resolvedBy,omitempty"`
	ResolvedByUser *string `gorm:"column:resolved_by_user" json:"resolvedByUser,omitempty"`
	WorkingTeam    *string `gorm:"column:working_team" json:"workingTeam,omitempty"`
	Comments       *string `gorm:"column:comments" json:"comments,omitempty"`

	ADFName      *string `gorm:"column:adf_name" json:"adfName,omitempty"`
	ADFUrl       *string `gorm:"column:adf_url" json:"adfUrl,omitempty"`
	FailedADFUrl *string `gorm:"column:failed_adf_url" json:"failedAdfUrl,omitempty"`
	ReRunADFUrl  *string `gorm:"column:re_run_adf_url" json:"reRunAdfUrl,omitempty"`

	UserID    string    `gorm:"column:user_id;index" json:"userId"`
	CreatedBy string    `gorm:"column:created_by" json:"createdBy"`
	UpdatedBy string    `gorm:"column:updated_by" json:"updatedBy"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (PipelineMonitoring) TableName() string {
	return "pipeline_monitoring"
}

package autotask

import "time"

// AutomatedTask is a named spreadsheet-processing job. The task type picks
// the transform applied when the task is triggered.
type AutomatedTask struct {
	ID           string     `gorm:"column:id;primaryKey" json:"id"`
	Name         string     `gorm:"column:name;not null" json:"name"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	TaskType     string     `gorm:"column:task_type;not null" json:"taskType"`
	IsActive     bool       `gorm:"column:is_active;default:true" json:"isActive"`
	UploadedFile *string    `gorm:"column:uploaded_file" json:"uploadedFile,omitempty"`
	LastRun      *time.Time `gorm:"column:last_run" json:"lastRun,omitempty"`
	UserID       string     `gorm:"column:user_id;index;not null" json:"userId"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

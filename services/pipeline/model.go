package pipeline

import "time"

// Pipeline is one ADF pipeline registered by an operator. The (user, name)
// pair is unique so the same pipeline cannot be registered twice.
type Pipeline struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_pipeline_owner_name" json:"name"`
	TriggerName string    `gorm:"column:trigger_name;not null" json:"triggerName"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	UserID      string    `gorm:"column:user_id;not null;uniqueIndex:idx_pipeline_owner_name" json:"userId"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

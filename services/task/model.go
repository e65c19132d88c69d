package task

import (
	"time"

	"gorm.io/datatypes"
)

// Formats counts the expected source files per format for one data load.
type Formats struct {
	Xlsx int `json:"xlsx"`
	Csv  int `json:"csv"`
	Txt  int `json:"txt"`
	Mail int `json:"mail"`
}

// Task is one recurring retail data-load entry in the catalog.
type Task struct {
	ID           string                      `gorm:"column:id;primaryKey" json:"id"`
	Retailer     string                      `gorm:"column:retailer;not null;index" json:"retailer"`
	Day          string                      `gorm:"column:day" json:"day"`
	Schedule     string                      `gorm:"column:schedule" json:"schedule"`
	ScheduleDays string                      `gorm:"column:schedule_days" json:"scheduleDays,omitempty"`
	FileCount    int                         `gorm:"column:file_count" json:"fileCount"`
	Formats      datatypes.JSONType[Formats] `gorm:"column:formats" json:"formats"`
	LoadType     string                      `gorm:"column:load_type" json:"loadType"`

	ISTTime  *string `gorm:"column:ist_time" json:"istTime,omitempty"`
	ESTTime  *string `gorm:"column:est_time" json:"estTime,omitempty"`
	SQLQuery *string `gorm:"column:sql_query" json:"sqlQuery,omitempty"`

	IndirectLoadSource *string `gorm:"column:indirect_load_source" json:"indirectLoadSource,omitempty"`
	WebsiteLink        *string `gorm:"column:website_link" json:"websiteLink,omitempty"`
	PortalUsername     *string `gorm:"column:portal_username" json:"portalUsername,omitempty"`
	PortalPassword     *string `gorm:"column:portal_password" json:"portalPassword,omitempty"`
	MailFolder         *string `gorm:"column:mail_folder" json:"mailFolder,omitempty"`
	MailID             *string `gorm:"column:mail_id" json:"mailId,omitempty"`

	Link     string `gorm:"column:link" json:"link"`
	Username string `gorm:"column:username" json:"username"`
	Password string `gorm:"column:password" json:"password"`

	KTRecordingLink   *string `gorm:"column:kt_recording_link" json:"ktRecordingLink,omitempty"`
	DocumentationLink *string `gorm:"column:documentation_link" json:"documentationLink,omitempty"`
	Instructions      *string `gorm:"column:instructions" json:"instructions,omitempty"`

	Completed   bool       `gorm:"column:completed;default:false" json:"completed"`
	CompletedBy *string    `gorm:"column:completed_by" json:"completedBy,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	UserID    string    `gorm:"column:user_id;index" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Files []TaskFile `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"files"`
}

// TaskFile maps a downloaded file name to the name the loader requires.
// Rows are owned by their task and recreated wholesale on update.
type TaskFile struct {
	ID           string `gorm:"column:id;primaryKey" json:"id"`
	TaskID       string `gorm:"column:task_id;index;not null" json:"-"`
	DownloadName string `gorm:"column:download_name" json:"downloadName"`
	RequiredName string `gorm:"column:required_name" json:"requiredName"`
}

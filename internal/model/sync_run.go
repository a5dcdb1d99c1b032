package model

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun is the audit row of one sync pass
type SyncRun struct {
	BaseModel
	PassID        string         `gorm:"column:pass_id;type:varchar(36);uniqueIndex;not null" json:"pass_id"`
	DryRun        bool           `gorm:"column:dry_run;not null" json:"dry_run"`
	State         string         `gorm:"column:state;type:varchar(32);index;not null" json:"state"`
	FailedAt      string         `gorm:"column:failed_at;type:varchar(32)" json:"failed_at,omitempty"`
	ErrorKind     string         `gorm:"column:error_kind;type:varchar(32)" json:"error_kind,omitempty"`
	Error         *string        `gorm:"column:error;type:varchar(1024)" json:"error,omitempty"`
	StartedAt     time.Time      `gorm:"column:started_at;index;not null" json:"started_at"`
	FinishedAt    time.Time      `gorm:"column:finished_at;not null" json:"finished_at"`
	LeasesFetched int            `gorm:"column:leases_fetched" json:"leases_fetched"`
	Desired       int            `gorm:"column:desired" json:"desired"`
	Unchanged     int            `gorm:"column:unchanged" json:"unchanged"`
	Created       int            `gorm:"column:created" json:"created"`
	Updated       int            `gorm:"column:updated" json:"updated"`
	Failed        int            `gorm:"column:failed" json:"failed"`
	ReportJSON    datatypes.JSON `gorm:"column:report_json;type:json" json:"report"`
}

// TableName specifies the table name for SyncRun model
func (SyncRun) TableName() string {
	return "sync_runs"
}

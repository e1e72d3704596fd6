package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun records the outcome of one full synchronization pass.
type SyncRun struct {
	ID         uint      `gorm:"primaryKey"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt *time.Time
	Status     string `gorm:"size:20;not null"` // running, succeeded, failed
	Error      string `gorm:"size:1024"`
	Counts     datatypes.JSON // records fetched per resource type
}

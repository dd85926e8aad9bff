package model

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotDocument holds one dataset's whole shared document. Writes replace
// the row; there is no history.
type SnapshotDocument struct {
	Dataset   string         `gorm:"primaryKey;size:64"`
	Document  datatypes.JSON `gorm:"not null"`
	LastSync  int64          `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (SnapshotDocument) TableName() string { return "snapshot_documents" }

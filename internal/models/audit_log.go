package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	UserID       int64          `gorm:"index" json:"userId"` // nullable (system actions possible)
	Action       string         `gorm:"size:200;not null" json:"action"`
	ResourceType string         `gorm:"size:100" json:"resourceType"`
	ResourceID   int64          `gorm:"index" json:"resourceId"`
	Metadata     datatypes.JSON `gorm:"type:json" json:"metadata"`
	CreatedAt    time.Time      `json:"createdAt"`
}

package models

import "time"

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// AccessRequest is a pending/approved/rejected ask for access. It is
// created pending and decided exactly once; approval materializes the
// items into policies.
type AccessRequest struct {
	ID        int64         `gorm:"primaryKey" json:"id"`
	UserID    int64         `gorm:"index;not null" json:"userId"`
	SchemaID  int64         `gorm:"index;not null" json:"schemaId"`
	Reason    *string       `gorm:"size:1000" json:"reason"`
	Status    RequestStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	Items []AccessRequestItem `gorm:"foreignKey:RequestID" json:"items,omitempty"`
}

// AccessRequestItem is one table-scoped line of a request. Items are
// created with their request and never mutated independently.
type AccessRequestItem struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	RequestID int64     `gorm:"index;not null" json:"requestId"`
	TableID   int64     `gorm:"not null" json:"tableId"`
	Effect    Effect    `gorm:"size:16;not null" json:"effect"`
	Fields    FieldList `gorm:"type:json" json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
}

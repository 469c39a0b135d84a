package models

import "time"

type NotificationType string

const (
	NotifyNewRequest      NotificationType = "new_request"
	NotifyRequestApproved NotificationType = "request_approved"
	NotifyRequestRejected NotificationType = "request_rejected"
)

type Notification struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	UserID    int64            `gorm:"index;not null" json:"userId"`
	Type      NotificationType `gorm:"size:32;not null" json:"type"`
	Message   string           `gorm:"size:500;not null" json:"message"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

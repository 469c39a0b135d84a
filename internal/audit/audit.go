package audit

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	"datagate/internal/models"
)

// Record writes one audit trail entry. Audit failures are logged and
// swallowed: the trail must never fail the operation it describes.
func Record(db *gorm.DB, userID int64, action, resourceType string, resourceID int64, meta map[string]interface{}) {
	var raw []byte
	if meta != nil {
		raw, _ = json.Marshal(meta)
	}
	entry := models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     raw,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

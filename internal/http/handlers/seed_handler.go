package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"datagate/internal/seed"
)

// InitSampleData loads the demo dataset on demand. Admin only.
func InitSampleData(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := seed.SampleData(db); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Failed to initialize sample data",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sample data initialized successfully"})
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"datagate/internal/audit"
	"datagate/internal/auth"
	"datagate/internal/models"
	"datagate/internal/policy"
)

// ListAccessPolicies returns the caller's policies. Admins may pass
// ?userId= to inspect another user, or omit it for the global view.
func ListAccessPolicies(policies *policy.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var (
			result []models.AccessPolicy
			err    error
		)
		if user.IsAdmin() {
			if q := c.Query("userId"); q != "" {
				userID, parseErr := strconv.ParseInt(q, 10, 64)
				if parseErr != nil {
					c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid userId"})
					return
				}
				result, err = policies.PoliciesForUser(userID)
			} else {
				result, err = policies.AllPolicies()
			}
		} else {
			result, err = policies.PoliciesForUser(user.ID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch access policies"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// CopyAccessPolicies bulk-duplicates one user's policy set onto
// another. The copy bypasses conflict checking; the response carries a
// post-copy conflict count so the admin can see what the merge did.
func CopyAccessPolicies(db *gorm.DB, policies *policy.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			SourceUserID    int64 `json:"sourceUserId" binding:"required"`
			TargetUserID    int64 `json:"targetUserId" binding:"required"`
			ReplaceExisting bool  `json:"replaceExisting"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Source and target user IDs are required"})
			return
		}

		var count int64
		if err := db.Model(&models.User{}).
			Where("id IN ?", []int64{input.SourceUserID, input.TargetUserID}).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to copy access policies"})
			return
		}
		required := int64(2)
		if input.SourceUserID == input.TargetUserID {
			required = 1
		}
		if count < required {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}

		copied, err := policies.CopyPolicies(input.SourceUserID, input.TargetUserID, input.ReplaceExisting)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to copy access policies"})
			return
		}

		conflictCount, err := policies.CountConflicts(input.TargetUserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to copy access policies"})
			return
		}

		admin := auth.CurrentUser(c)
		audit.Record(db, admin.ID, "access_policies.copy", "user", input.TargetUserID,
			map[string]interface{}{
				"sourceUserId":    input.SourceUserID,
				"replaceExisting": input.ReplaceExisting,
				"copied":          copied,
			})

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Access policies copied successfully",
			"copied":    copied,
			"conflicts": conflictCount,
		})
	}
}

// DeleteAccessPolicy removes one policy by id.
func DeleteAccessPolicy(policies *policy.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid policy id"})
			return
		}
		if err := policies.DeletePolicy(id); err != nil {
			if errors.Is(err, policy.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Policy not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete policy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

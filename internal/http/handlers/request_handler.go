package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"datagate/internal/auth"
	"datagate/internal/models"
	"datagate/internal/workflow"
)

// CreateAccessRequest files a new pending request for the caller.
func CreateAccessRequest(svc *workflow.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			SchemaID int64                `json:"schemaId" binding:"required"`
			Reason   *string              `json:"reason"`
			Items    []workflow.ItemInput `json:"items" binding:"required,min=1,dive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for _, item := range input.Items {
			if !item.Effect.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effect: " + string(item.Effect)})
				return
			}
		}

		user := auth.CurrentUser(c)
		req, err := svc.CreateRequest(user, input.SchemaID, input.Reason, input.Items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create access request"})
			return
		}
		c.JSON(http.StatusCreated, req)
	}
}

// ListAccessRequests returns all requests for admins, or the caller's
// own requests otherwise.
func ListAccessRequests(svc *workflow.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var (
			reqs []models.AccessRequest
			err  error
		)
		if user.IsAdmin() {
			reqs, err = svc.AllRequests()
		} else {
			reqs, err = svc.RequestsForUser(user.ID)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch access requests"})
			return
		}
		c.JSON(http.StatusOK, reqs)
	}
}

// GetAccessRequest returns one request with its items. Admins can see
// any request; users only their own.
func GetAccessRequest(svc *workflow.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request id"})
			return
		}

		req, err := svc.RequestWithItems(id)
		if errors.Is(err, workflow.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch access request"})
			return
		}

		user := auth.CurrentUser(c)
		if !user.IsAdmin() && req.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

// DecideAccessRequest approves or rejects a pending request. On
// approval the non-conflicting items become policies; conflicting ones
// are skipped and reported, while the request itself still reads
// approved.
func DecideAccessRequest(svc *workflow.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request id"})
			return
		}

		var input struct {
			Status models.RequestStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
			return
		}

		var (
			req     *models.AccessRequest
			skipped []models.AccessRequestItem
		)
		switch input.Status {
		case models.StatusApproved:
			req, skipped, err = svc.Approve(id)
		case models.StatusRejected:
			req, err = svc.Reject(id)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
			return
		}

		if errors.Is(err, workflow.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
			return
		}
		if errors.Is(err, workflow.ErrAlreadyDecided) {
			c.JSON(http.StatusConflict, gin.H{"message": "Request already decided"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update access request"})
			return
		}

		resp := gin.H{
			"id":        req.ID,
			"userId":    req.UserID,
			"schemaId":  req.SchemaID,
			"reason":    req.Reason,
			"status":    req.Status,
			"createdAt": req.CreatedAt,
			"updatedAt": req.UpdatedAt,
		}
		if input.Status == models.StatusApproved {
			if skipped == nil {
				skipped = []models.AccessRequestItem{}
			}
			resp["skippedItems"] = skipped
		}
		c.JSON(http.StatusOK, resp)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"datagate/internal/auth"
	"datagate/internal/notify"
)

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(notes *notify.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		result, err := notes.ForUser(user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch notifications"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// MarkNotificationRead marks one of the caller's own notifications as
// read.
func MarkNotificationRead(notes *notify.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid notification id"})
			return
		}

		n, err := notes.Get(id)
		if errors.Is(err, notify.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to mark notification as read"})
			return
		}

		user := auth.CurrentUser(c)
		if n.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}

		if err := notes.MarkRead(n.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to mark notification as read"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

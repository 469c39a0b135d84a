package httpserver

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"datagate/internal/auth"
	"datagate/internal/http/handlers"
	"datagate/internal/metadata"
	"datagate/internal/notify"
	"datagate/internal/policy"
	"datagate/internal/workflow"
)

// NewRouter wires the stores and the request workflow into the REST
// surface. Everything below /api except register/login requires a
// valid token; admin-only routes additionally require the admin role.
func NewRouter(db *gorm.DB, jwtSecret string) *gin.Engine {
	policies := policy.NewStore(db)
	meta := metadata.NewStore(db)
	notes := notify.NewStore(db)
	requests := workflow.NewService(db, policies, notes)

	r := gin.Default()

	// Public routes
	r.POST("/api/register", handlers.Register(db, jwtSecret))
	r.POST("/api/login", handlers.Login(db, jwtSecret))
	r.POST("/api/logout", handlers.Logout())

	authMW := auth.JWT(db, jwtSecret)
	adminMW := auth.RequireAdmin()

	api := r.Group("/api", authMW)
	{
		api.GET("/user", handlers.Me())

		// Schema dictionary
		api.GET("/schemas", handlers.ListSchemas(meta))
		api.POST("/schemas", adminMW, handlers.CreateSchema(meta))
		api.GET("/schemas/:id", handlers.GetSchema(meta))

		// Access requests
		api.POST("/access-requests", handlers.CreateAccessRequest(requests))
		api.GET("/access-requests", handlers.ListAccessRequests(requests))
		api.GET("/access-requests/:id", handlers.GetAccessRequest(requests))
		api.PATCH("/access-requests/:id", adminMW, handlers.DecideAccessRequest(requests))

		// Access policies
		api.GET("/access-policies", handlers.ListAccessPolicies(policies))
		api.POST("/access-policies/copy", adminMW, handlers.CopyAccessPolicies(db, policies))
		api.DELETE("/access-policies/:id", adminMW, handlers.DeleteAccessPolicy(policies))

		// Users
		api.GET("/users", adminMW, handlers.ListUsers(db))

		// Notifications
		api.GET("/notifications", handlers.ListNotifications(notes))
		api.PATCH("/notifications/:id/read", handlers.MarkNotificationRead(notes))

		// Demo data
		api.POST("/init-sample-data", adminMW, handlers.InitSampleData(db))
	}

	return r
}

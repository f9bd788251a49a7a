package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/handlers"
	"training_tracker/internal/middlewares"
)

// Handlers bundles every handler the API exposes.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Positions  *handlers.PositionHandler
	Courses    *handlers.CourseHandler
	Employees  *handlers.EmployeeHandler
	Training   *handlers.TrainingHandler
	Compliance *handlers.ComplianceHandler
	Imports    *handlers.ImportHandler
	Comments   *handlers.CommentHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, sessions middlewares.SessionParser) {
	api := router.Group("/api/v1")

	NewAuthRoutes(h.Auth, h.Compliance, sessions).RegisterRoutes(api)

	// Everything below is the admin view.
	admin := api.Group("")
	admin.Use(middlewares.Authenticate(sessions), middlewares.RequireAdmin())

	NewPositionRoutes(h.Positions).RegisterRoutes(admin)
	NewCourseRoutes(h.Courses).RegisterRoutes(admin)
	NewEmployeeRoutes(h.Employees, h.Compliance).RegisterRoutes(admin)
	NewTrainingRoutes(h.Training).RegisterRoutes(admin)
	NewComplianceRoutes(h.Compliance).RegisterRoutes(admin)
	NewImportRoutes(h.Imports).RegisterRoutes(admin)
	NewCommentRoutes(h.Comments).RegisterRoutes(admin)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}

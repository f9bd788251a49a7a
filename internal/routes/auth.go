package routes

import (
	"github.com/gin-gonic/gin"

	"training_tracker/internal/handlers"
	"training_tracker/internal/middlewares"
	"training_tracker/internal/utils"
)

type AuthRoutes struct {
	handler    *handlers.AuthHandler
	compliance *handlers.ComplianceHandler
	sessions   middlewares.SessionParser
}

func NewAuthRoutes(handler *handlers.AuthHandler, compliance *handlers.ComplianceHandler, sessions middlewares.SessionParser) *AuthRoutes {
	return &AuthRoutes{handler: handler, compliance: compliance, sessions: sessions}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		// Public routes
		auth.POST("/admin/login", r.handler.AdminLogin)
		auth.POST("/employee/login", r.handler.EmployeeLogin)
		auth.POST("/logout", r.handler.Logout)

		// Protected routes
		protected := auth.Group("")
		protected.Use(middlewares.Authenticate(r.sessions))
		protected.GET("/me", r.handler.Me)
	}

	me := router.Group("/me")
	me.Use(middlewares.Authenticate(r.sessions), middlewares.RequireRole(utils.RoleEmployee))
	{
		me.GET("/training", r.compliance.MyTraining)
	}
}

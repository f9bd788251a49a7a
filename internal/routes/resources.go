package routes

import (
	"github.com/gin-gonic/gin"

	"training_tracker/internal/handlers"
)

type PositionRoutes struct {
	handler *handlers.PositionHandler
}

func NewPositionRoutes(handler *handlers.PositionHandler) *PositionRoutes {
	return &PositionRoutes{handler: handler}
}

func (r *PositionRoutes) RegisterRoutes(router *gin.RouterGroup) {
	positions := router.Group("/positions")
	{
		positions.POST("", r.handler.CreatePosition)
		positions.GET("", r.handler.ListPositions)
		positions.GET("/:id", r.handler.GetPosition)
		positions.PATCH("/:id", r.handler.UpdatePosition)
		positions.DELETE("/:id", r.handler.DeletePosition)
		positions.PUT("/:id/courses/:course_id", r.handler.RequireCourse)
		positions.DELETE("/:id/courses/:course_id", r.handler.UnrequireCourse)
	}
}

type CourseRoutes struct {
	handler *handlers.CourseHandler
}

func NewCourseRoutes(handler *handlers.CourseHandler) *CourseRoutes {
	return &CourseRoutes{handler: handler}
}

func (r *CourseRoutes) RegisterRoutes(router *gin.RouterGroup) {
	courses := router.Group("/courses")
	{
		courses.POST("", r.handler.CreateCourse)
		courses.GET("", r.handler.ListCourses)
		courses.GET("/duplicates", r.handler.FindDuplicates)
		courses.GET("/:id", r.handler.GetCourse)
		courses.PATCH("/:id", r.handler.UpdateCourse)
		courses.DELETE("/:id", r.handler.DeleteCourse)
		courses.GET("/:id/aliases", r.handler.ListAliases)
		courses.POST("/:id/aliases", r.handler.AddAlias)
		courses.POST("/:id/merge", r.handler.MergeCourses)
	}
	router.DELETE("/aliases/:id", r.handler.DeleteAlias)
}

type EmployeeRoutes struct {
	handler    *handlers.EmployeeHandler
	compliance *handlers.ComplianceHandler
}

func NewEmployeeRoutes(handler *handlers.EmployeeHandler, compliance *handlers.ComplianceHandler) *EmployeeRoutes {
	return &EmployeeRoutes{handler: handler, compliance: compliance}
}

func (r *EmployeeRoutes) RegisterRoutes(router *gin.RouterGroup) {
	employees := router.Group("/employees")
	{
		employees.POST("", r.handler.CreateEmployee)
		employees.GET("", r.handler.ListEmployees)
		employees.GET("/:id", r.handler.GetEmployee)
		employees.PATCH("/:id", r.handler.UpdateEmployee)
		employees.DELETE("/:id", r.handler.DeleteEmployee)
		employees.GET("/:id/training", r.handler.ListTraining)
		employees.GET("/:id/compliance", r.compliance.EmployeeCompliance)
	}
}

type TrainingRoutes struct {
	handler *handlers.TrainingHandler
}

func NewTrainingRoutes(handler *handlers.TrainingHandler) *TrainingRoutes {
	return &TrainingRoutes{handler: handler}
}

func (r *TrainingRoutes) RegisterRoutes(router *gin.RouterGroup) {
	records := router.Group("/training-records")
	{
		records.POST("", r.handler.CreateRecord)
		records.GET("/:id", r.handler.GetRecord)
		records.PATCH("/:id", r.handler.UpdateRecord)
		records.DELETE("/:id", r.handler.DeleteRecord)
	}
}

type ComplianceRoutes struct {
	handler *handlers.ComplianceHandler
}

func NewComplianceRoutes(handler *handlers.ComplianceHandler) *ComplianceRoutes {
	return &ComplianceRoutes{handler: handler}
}

func (r *ComplianceRoutes) RegisterRoutes(router *gin.RouterGroup) {
	report := router.Group("/compliance")
	{
		report.GET("/report", r.handler.Report)
		report.GET("/summary", r.handler.Summary)
	}
}

type ImportRoutes struct {
	handler *handlers.ImportHandler
}

func NewImportRoutes(handler *handlers.ImportHandler) *ImportRoutes {
	return &ImportRoutes{handler: handler}
}

func (r *ImportRoutes) RegisterRoutes(router *gin.RouterGroup) {
	imports := router.Group("/imports")
	{
		imports.POST("", r.handler.CreateImport)
		imports.GET("", r.handler.ListImports)
		imports.GET("/:id", r.handler.GetImport)
		imports.DELETE("/:id", r.handler.DeleteImport)
		imports.POST("/:id/reconcile", r.handler.Reconcile)
		imports.GET("/:id/rows", r.handler.ListRows)
		imports.PATCH("/:id/rows/:row_id", r.handler.ResolveRow)
		imports.POST("/:id/apply", r.handler.Apply)
	}
}

type CommentRoutes struct {
	handler *handlers.CommentHandler
}

func NewCommentRoutes(handler *handlers.CommentHandler) *CommentRoutes {
	return &CommentRoutes{handler: handler}
}

func (r *CommentRoutes) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/comments")
	{
		comments.GET("", r.handler.ListComments)
		comments.POST("", r.handler.CreateComment)
		comments.PATCH("/:id", r.handler.UpdateComment)
		comments.DELETE("/:id", r.handler.DeleteComment)
	}
}

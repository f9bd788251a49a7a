package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/responses"
	"training_tracker/internal/services"
	"training_tracker/internal/utils"
)

const defaultDuplicateThreshold = 0.85

type CourseHandler struct {
	courseService *services.CourseService
}

func NewCourseHandler(courseService *services.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if !bind(c, &req) {
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to create course")
		return
	}
	responses.Success(c, http.StatusCreated, course, "Course created successfully")
}

// ListCourses handles GET /api/v1/courses?active=true
func (h *CourseHandler) ListCourses(c *gin.Context) {
	active, err := utils.OptionalBool(c.Query("active"))
	if err != nil {
		badQuery(c, err)
		return
	}
	courses, err := h.courseService.List(c.Request.Context(), active != nil && *active)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve courses")
		return
	}
	responses.Success(c, http.StatusOK, courses, "Courses retrieved successfully")
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve course")
		return
	}
	responses.Success(c, http.StatusOK, course, "Course retrieved successfully")
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCourseRequest
	if !bind(c, &req) {
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update course")
		return
	}
	responses.Success(c, http.StatusOK, course, "Course updated successfully")
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete course")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Course deleted successfully")
}

func (h *CourseHandler) ListAliases(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	aliases, err := h.courseService.Aliases(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve aliases")
		return
	}
	responses.Success(c, http.StatusOK, aliases, "Aliases retrieved successfully")
}

// AddAlias handles POST /api/v1/courses/:id/aliases
func (h *CourseHandler) AddAlias(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Alias string `json:"alias" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	alias, err := h.courseService.AddAlias(c.Request.Context(), id, req.Alias)
	if err != nil {
		responses.Error(c, err, "Failed to add alias")
		return
	}
	responses.Success(c, http.StatusCreated, alias, "Alias added successfully")
}

func (h *CourseHandler) DeleteAlias(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.DeleteAlias(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete alias")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Alias deleted successfully")
}

// FindDuplicates handles GET /api/v1/courses/duplicates?threshold=0.85
func (h *CourseHandler) FindDuplicates(c *gin.Context) {
	threshold, err := utils.OptionalFloat(c.Query("threshold"), defaultDuplicateThreshold)
	if err != nil {
		badQuery(c, err)
		return
	}
	groups, err := h.courseService.FindDuplicates(c.Request.Context(), threshold)
	if err != nil {
		responses.Error(c, err, "Failed to find duplicate courses")
		return
	}
	responses.Success(c, http.StatusOK, groups, "Duplicate candidates retrieved successfully")
}

// MergeCourses handles POST /api/v1/courses/:id/merge. The path course is
// the one that survives.
func (h *CourseHandler) MergeCourses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.MergeCoursesRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.courseService.Merge(c.Request.Context(), id, req.SourceIDs)
	if err != nil {
		responses.Error(c, err, "Failed to merge courses")
		return
	}
	responses.Success(c, http.StatusOK, res, "Courses merged successfully")
}

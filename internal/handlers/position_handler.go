package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/responses"
	"training_tracker/internal/services"
)

type PositionHandler struct {
	positionService *services.PositionService
}

func NewPositionHandler(positionService *services.PositionService) *PositionHandler {
	return &PositionHandler{positionService: positionService}
}

// CreatePosition handles POST /api/v1/positions
func (h *PositionHandler) CreatePosition(c *gin.Context) {
	var req services.CreatePositionRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.positionService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to create position")
		return
	}
	responses.Success(c, http.StatusCreated, p, "Position created successfully")
}

func (h *PositionHandler) ListPositions(c *gin.Context) {
	positions, err := h.positionService.List(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to retrieve positions")
		return
	}
	responses.Success(c, http.StatusOK, positions, "Positions retrieved successfully")
}

// GetPosition handles GET /api/v1/positions/:id and includes the required
// courses.
func (h *PositionHandler) GetPosition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.positionService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve position")
		return
	}
	responses.Success(c, http.StatusOK, p, "Position retrieved successfully")
}

func (h *PositionHandler) UpdatePosition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdatePositionRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.positionService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update position")
		return
	}
	responses.Success(c, http.StatusOK, p, "Position updated successfully")
}

func (h *PositionHandler) DeletePosition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.positionService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete position")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Position deleted successfully")
}

// RequireCourse handles PUT /api/v1/positions/:id/courses/:course_id
func (h *PositionHandler) RequireCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	if err := h.positionService.RequireCourse(c.Request.Context(), id, courseID); err != nil {
		responses.Error(c, err, "Failed to add required course")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Course is now required")
}

func (h *PositionHandler) UnrequireCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	if err := h.positionService.UnrequireCourse(c.Request.Context(), id, courseID); err != nil {
		responses.Error(c, err, "Failed to remove required course")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Course is no longer required")
}

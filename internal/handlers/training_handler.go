package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/responses"
	"training_tracker/internal/services"
)

type TrainingHandler struct {
	trainingService *services.TrainingService
}

func NewTrainingHandler(trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{trainingService: trainingService}
}

// CreateRecord handles POST /api/v1/training-records. expires_on defaults to
// the course's recertification period.
func (h *TrainingHandler) CreateRecord(c *gin.Context) {
	var req services.CreateTrainingRequest
	if !bind(c, &req) {
		return
	}
	rec, err := h.trainingService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to record training")
		return
	}
	responses.Success(c, http.StatusCreated, rec, "Training recorded successfully")
}

func (h *TrainingHandler) GetRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.trainingService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve training record")
		return
	}
	responses.Success(c, http.StatusOK, rec, "Training record retrieved successfully")
}

func (h *TrainingHandler) UpdateRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateTrainingRequest
	if !bind(c, &req) {
		return
	}
	rec, err := h.trainingService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update training record")
		return
	}
	responses.Success(c, http.StatusOK, rec, "Training record updated successfully")
}

func (h *TrainingHandler) DeleteRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.trainingService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete training record")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Training record deleted successfully")
}

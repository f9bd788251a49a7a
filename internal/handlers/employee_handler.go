package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/models"
	"training_tracker/internal/responses"
	"training_tracker/internal/services"
	"training_tracker/internal/utils"
)

type EmployeeHandler struct {
	employeeService *services.EmployeeService
	trainingService *services.TrainingService
}

func NewEmployeeHandler(employeeService *services.EmployeeService, trainingService *services.TrainingService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService, trainingService: trainingService}
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.employeeService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to create employee")
		return
	}
	responses.Success(c, http.StatusCreated, e, "Employee created successfully")
}

// ListEmployees handles GET /api/v1/employees?position_id=&active=&search=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	positionID, err := utils.OptionalUUID(c.Query("position_id"))
	if err != nil {
		badQuery(c, err)
		return
	}
	active, err := utils.OptionalBool(c.Query("active"))
	if err != nil {
		badQuery(c, err)
		return
	}
	filter := models.EmployeeFilter{PositionID: positionID, Active: active, Search: c.Query("search")}
	employees, err := h.employeeService.List(c.Request.Context(), filter)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve employees")
		return
	}
	responses.Success(c, http.StatusOK, employees, "Employees retrieved successfully")
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.employeeService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve employee")
		return
	}
	responses.Success(c, http.StatusOK, e, "Employee retrieved successfully")
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateEmployeeRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.employeeService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update employee")
		return
	}
	responses.Success(c, http.StatusOK, e, "Employee updated successfully")
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.employeeService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete employee")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Employee deleted successfully")
}

// ListTraining handles GET /api/v1/employees/:id/training
func (h *EmployeeHandler) ListTraining(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	records, err := h.trainingService.ListByEmployee(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve training records")
		return
	}
	responses.Success(c, http.StatusOK, records, "Training records retrieved successfully")
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/compliance"
	"training_tracker/internal/middlewares"
	"training_tracker/internal/responses"
	"training_tracker/internal/services"
	"training_tracker/internal/utils"
)

type ComplianceHandler struct {
	complianceService *services.ComplianceService
}

func NewComplianceHandler(complianceService *services.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{complianceService: complianceService}
}

// EmployeeCompliance handles GET /api/v1/employees/:id/compliance?window=30
func (h *ComplianceHandler) EmployeeCompliance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	window, err := utils.OptionalInt(c.Query("window"))
	if err != nil {
		badQuery(c, err)
		return
	}
	res, err := h.complianceService.ForEmployee(c.Request.Context(), id, window)
	if err != nil {
		responses.Error(c, err, "Failed to evaluate compliance")
		return
	}
	responses.Success(c, http.StatusOK, res, "Compliance evaluated successfully")
}

// Report handles GET /api/v1/compliance/report?status=&window=&position_id=
func (h *ComplianceHandler) Report(c *gin.Context) {
	window, err := utils.OptionalInt(c.Query("window"))
	if err != nil {
		badQuery(c, err)
		return
	}
	positionID, err := utils.OptionalUUID(c.Query("position_id"))
	if err != nil {
		badQuery(c, err)
		return
	}
	rows, err := h.complianceService.Report(c.Request.Context(), services.ReportFilter{
		Status:     compliance.Status(c.Query("status")),
		PositionID: positionID,
		Window:     window,
	})
	if err != nil {
		responses.Error(c, err, "Failed to build compliance report")
		return
	}
	responses.Success(c, http.StatusOK, rows, "Compliance report generated successfully")
}

func (h *ComplianceHandler) Summary(c *gin.Context) {
	window, err := utils.OptionalInt(c.Query("window"))
	if err != nil {
		badQuery(c, err)
		return
	}
	summary, err := h.complianceService.Summary(c.Request.Context(), window)
	if err != nil {
		responses.Error(c, err, "Failed to summarize compliance")
		return
	}
	responses.Success(c, http.StatusOK, summary, "Compliance summary generated successfully")
}

// MyTraining handles GET /api/v1/me/training for the signed-in employee.
func (h *ComplianceHandler) MyTraining(c *gin.Context) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok || sess.EmployeeID == nil {
		responses.Fail(c, http.StatusForbidden, nil, "Only employees have a training view")
		return
	}
	res, err := h.complianceService.ForEmployee(c.Request.Context(), *sess.EmployeeID, nil)
	if err != nil {
		responses.Error(c, err, "Failed to evaluate compliance")
		return
	}
	responses.Success(c, http.StatusOK, res, "Training retrieved successfully")
}

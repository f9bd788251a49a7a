package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/responses"
	"training_tracker/internal/services"
)

type ImportHandler struct {
	importService *services.ImportService
}

func NewImportHandler(importService *services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// CreateImport handles POST /api/v1/imports. Rows are stored as pending; run
// reconcile to match them.
func (h *ImportHandler) CreateImport(c *gin.Context) {
	var req services.CreateImportRequest
	if !bind(c, &req) {
		return
	}
	imp, err := h.importService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to store import")
		return
	}
	responses.Success(c, http.StatusCreated, imp, "Import stored successfully")
}

func (h *ImportHandler) ListImports(c *gin.Context) {
	imports, err := h.importService.List(c.Request.Context())
	if err != nil {
		responses.Error(c, err, "Failed to retrieve imports")
		return
	}
	responses.Success(c, http.StatusOK, imports, "Imports retrieved successfully")
}

func (h *ImportHandler) GetImport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imp, err := h.importService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve import")
		return
	}
	responses.Success(c, http.StatusOK, imp, "Import retrieved successfully")
}

func (h *ImportHandler) DeleteImport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.importService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete import")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Import deleted successfully")
}

// ListRows handles GET /api/v1/imports/:id/rows?status=
func (h *ImportHandler) ListRows(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.importService.Rows(c.Request.Context(), id, c.Query("status"))
	if err != nil {
		responses.Error(c, err, "Failed to retrieve import rows")
		return
	}
	responses.Success(c, http.StatusOK, rows, "Import rows retrieved successfully")
}

func (h *ImportHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.importService.Reconcile(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to reconcile import")
		return
	}
	responses.Success(c, http.StatusOK, res, "Import reconciled successfully")
}

// ResolveRow handles PATCH /api/v1/imports/:id/rows/:row_id
func (h *ImportHandler) ResolveRow(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rowID, ok := pathID(c, "row_id")
	if !ok {
		return
	}
	var req services.ResolveRowRequest
	if !bind(c, &req) {
		return
	}
	row, err := h.importService.ResolveRow(c.Request.Context(), id, rowID, req)
	if err != nil {
		responses.Error(c, err, "Failed to resolve row")
		return
	}
	responses.Success(c, http.StatusOK, row, "Row resolved successfully")
}

func (h *ImportHandler) Apply(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.importService.Apply(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to apply import")
		return
	}
	responses.Success(c, http.StatusOK, res, "Import applied successfully")
}

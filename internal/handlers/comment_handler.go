package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/models"
	"training_tracker/internal/responses"
	"training_tracker/internal/services"
	"training_tracker/internal/utils"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// ListComments handles GET /api/v1/comments?resolved=&employee_id=&course_id=&row_id=
func (h *CommentHandler) ListComments(c *gin.Context) {
	var f models.CommentFilter
	var err error
	if f.Resolved, err = utils.OptionalBool(c.Query("resolved")); err != nil {
		badQuery(c, err)
		return
	}
	if f.EmployeeID, err = utils.OptionalUUID(c.Query("employee_id")); err != nil {
		badQuery(c, err)
		return
	}
	if f.CourseID, err = utils.OptionalUUID(c.Query("course_id")); err != nil {
		badQuery(c, err)
		return
	}
	if f.RowID, err = utils.OptionalUUID(c.Query("row_id")); err != nil {
		badQuery(c, err)
		return
	}
	comments, err := h.commentService.List(c.Request.Context(), f)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve comments")
		return
	}
	responses.Success(c, http.StatusOK, comments, "Comments retrieved successfully")
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req services.CreateCommentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to create comment")
		return
	}
	responses.Success(c, http.StatusCreated, comment, "Comment created successfully")
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCommentRequest
	if !bind(c, &req) {
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update comment")
		return
	}
	responses.Success(c, http.StatusOK, comment, "Comment updated successfully")
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete comment")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Comment deleted successfully")
}

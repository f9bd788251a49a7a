package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"training_tracker/internal/models"
)

type CommentService struct {
	comments CommentStore
}

func NewCommentService(comments CommentStore) *CommentService {
	return &CommentService{comments: comments}
}

type CreateCommentRequest struct {
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	CourseID   *uuid.UUID `json:"course_id,omitempty"`
	RowID      *uuid.UUID `json:"row_id,omitempty"`
	Author     string     `json:"author"`
	Body       string     `json:"body" binding:"required"`
}

type UpdateCommentRequest struct {
	Body     *string `json:"body,omitempty"`
	Resolved *bool   `json:"resolved,omitempty"`
}

// Create stores a comment. It must point at an employee, a course or an
// import row; missing targets surface as invalid input from the store.
func (s *CommentService) Create(ctx context.Context, req CreateCommentRequest) (*models.Comment, error) {
	if req.EmployeeID == nil && req.CourseID == nil && req.RowID == nil {
		return nil, invalid("a comment needs an employee, course or row")
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, invalid("body is required")
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = "admin"
	}
	c := &models.Comment{
		EmployeeID: req.EmployeeID,
		CourseID:   req.CourseID,
		RowID:      req.RowID,
		Author:     author,
		Body:       body,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return c, nil
}

func (s *CommentService) List(ctx context.Context, f models.CommentFilter) ([]models.Comment, error) {
	return s.comments.List(ctx, f)
}

func (s *CommentService) Update(ctx context.Context, id uuid.UUID, req UpdateCommentRequest) (*models.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "comment")
	}
	if req.Body != nil {
		body := strings.TrimSpace(*req.Body)
		if body == "" {
			return nil, invalid("body cannot be empty")
		}
		c.Body = body
	}
	if req.Resolved != nil {
		c.Resolved = *req.Resolved
	}
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, named(err, "comment")
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id uuid.UUID) error {
	return named(s.comments.Delete(ctx, id), "comment")
}

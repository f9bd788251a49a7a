package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"training_tracker/internal/models"
)

type PositionService struct {
	positions PositionStore
	courses   CourseStore
}

func NewPositionService(positions PositionStore, courses CourseStore) *PositionService {
	return &PositionService{positions: positions, courses: courses}
}

type CreatePositionRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type UpdatePositionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *PositionService) Create(ctx context.Context, req CreatePositionRequest) (*models.Position, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, invalid("name is required")
	}
	p := &models.Position{Name: req.Name, Description: req.Description}
	if err := s.positions.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create position: %w", err)
	}
	return p, nil
}

func (s *PositionService) Get(ctx context.Context, id uuid.UUID) (*models.PositionDetail, error) {
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "position")
	}
	courses, err := s.positions.RequiredCourses(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load required courses: %w", err)
	}
	return &models.PositionDetail{Position: *p, RequiredCourses: courses}, nil
}

func (s *PositionService) List(ctx context.Context) ([]models.Position, error) {
	return s.positions.List(ctx)
}

func (s *PositionService) Update(ctx context.Context, id uuid.UUID, req UpdatePositionRequest) (*models.Position, error) {
	p, err := s.positions.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "position")
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, invalid("name cannot be empty")
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if err := s.positions.Update(ctx, p); err != nil {
		return nil, named(err, "position")
	}
	return p, nil
}

func (s *PositionService) Delete(ctx context.Context, id uuid.UUID) error {
	return named(s.positions.Delete(ctx, id), "position")
}

// RequireCourse makes course part of the position's required set.
func (s *PositionService) RequireCourse(ctx context.Context, positionID, courseID uuid.UUID) error {
	if _, err := s.positions.GetByID(ctx, positionID); err != nil {
		return named(err, "position")
	}
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return named(err, "course")
	}
	return s.positions.AddRequirement(ctx, positionID, courseID)
}

func (s *PositionService) UnrequireCourse(ctx context.Context, positionID, courseID uuid.UUID) error {
	return named(s.positions.RemoveRequirement(ctx, positionID, courseID), "requirement")
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"training_tracker/internal/matching"
	"training_tracker/internal/models"
	"training_tracker/internal/repositories"
)

type CourseService struct {
	courses CourseStore
}

func NewCourseService(courses CourseStore) *CourseService {
	return &CourseService{courses: courses}
}

type CreateCourseRequest struct {
	Code         *string `json:"code,omitempty"`
	Name         string  `json:"name" binding:"required"`
	RecertMonths *int    `json:"recert_months,omitempty" binding:"omitempty,min=1"`
	Active       *bool   `json:"active,omitempty"`
}

type UpdateCourseRequest struct {
	Code         *string `json:"code,omitempty"`
	Name         *string `json:"name,omitempty"`
	RecertMonths *int    `json:"recert_months,omitempty" binding:"omitempty,min=0"`
	Active       *bool   `json:"active,omitempty"`
}

func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, invalid("name is required")
	}
	if req.RecertMonths != nil && *req.RecertMonths <= 0 {
		return nil, invalid("recert_months must be positive")
	}
	c := &models.Course{
		Code:         req.Code,
		Name:         req.Name,
		RecertMonths: req.RecertMonths,
		Active:       true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return c, nil
}

func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "course")
	}
	return c, nil
}

func (s *CourseService) List(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	return s.courses.List(ctx, activeOnly)
}

// Update patches a course. recert_months 0 clears the recertification period.
func (s *CourseService) Update(ctx context.Context, id uuid.UUID, req UpdateCourseRequest) (*models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "course")
	}
	if req.Code != nil {
		c.Code = req.Code
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, invalid("name cannot be empty")
		}
		c.Name = *req.Name
	}
	if req.RecertMonths != nil {
		switch {
		case *req.RecertMonths < 0:
			return nil, invalid("recert_months cannot be negative")
		case *req.RecertMonths == 0:
			c.RecertMonths = nil
		default:
			c.RecertMonths = req.RecertMonths
		}
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.courses.Update(ctx, c); err != nil {
		return nil, named(err, "course")
	}
	return c, nil
}

func (s *CourseService) Delete(ctx context.Context, id uuid.UUID) error {
	return named(s.courses.Delete(ctx, id), "course")
}

func (s *CourseService) Aliases(ctx context.Context, courseID uuid.UUID) ([]models.CourseAlias, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, named(err, "course")
	}
	return s.courses.ListAliases(ctx, courseID)
}

// AddAlias records another title the course is known by in external reports.
func (s *CourseService) AddAlias(ctx context.Context, courseID uuid.UUID, alias string) (*models.CourseAlias, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, named(err, "course")
	}
	normalized := matching.Normalize(alias)
	if normalized == "" {
		return nil, invalid("alias %q has no significant words", alias)
	}
	a := &models.CourseAlias{CourseID: courseID, Alias: alias, Normalized: normalized}
	if err := s.courses.CreateAlias(ctx, a); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("alias %q: %w", alias, models.ErrConflict)
		}
		return nil, err
	}
	return a, nil
}

func (s *CourseService) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	return named(s.courses.DeleteAlias(ctx, id), "alias")
}

// FindDuplicates groups courses whose titles look alike.
func (s *CourseService) FindDuplicates(ctx context.Context, threshold float64) ([]matching.DuplicateGroup, error) {
	if threshold < 0 || threshold > 1 {
		return nil, invalid("threshold must be between 0 and 1")
	}
	courses, err := s.courses.List(ctx, false)
	if err != nil {
		return nil, err
	}
	groups := matching.DuplicateCourseGroups(courses, threshold)
	if groups == nil {
		groups = []matching.DuplicateGroup{}
	}
	return groups, nil
}

type MergeCoursesRequest struct {
	SourceIDs []uuid.UUID `json:"source_ids" binding:"required,min=1"`
}

// Merge folds the source courses into target. The sources' names and codes
// become aliases of the target so later imports still match them.
func (s *CourseService) Merge(ctx context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID) (*repositories.MergeResult, error) {
	if len(sourceIDs) == 0 {
		return nil, invalid("at least one source course is required")
	}
	seen := make(map[uuid.UUID]bool, len(sourceIDs))
	var sources []uuid.UUID
	for _, id := range sourceIDs {
		if id == targetID {
			return nil, invalid("cannot merge a course into itself")
		}
		if !seen[id] {
			seen[id] = true
			sources = append(sources, id)
		}
	}

	target, err := s.courses.GetByID(ctx, targetID)
	if err != nil {
		return nil, named(err, "target course")
	}

	taken := map[string]bool{matching.Normalize(target.Name): true}
	var aliases []models.CourseAlias
	addAlias := func(text string) {
		key := matching.Normalize(text)
		if key == "" || taken[key] {
			return
		}
		taken[key] = true
		aliases = append(aliases, models.CourseAlias{Alias: text, Normalized: key})
	}
	for _, id := range sources {
		c, err := s.courses.GetByID(ctx, id)
		if err != nil {
			return nil, named(err, fmt.Sprintf("source course %s", id))
		}
		addAlias(c.Name)
		if c.Code != nil {
			addAlias(*c.Code)
		}
	}

	res, err := s.courses.Merge(ctx, targetID, sources, aliases)
	if err != nil {
		return nil, named(err, "course")
	}
	return res, nil
}

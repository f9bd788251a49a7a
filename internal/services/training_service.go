package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"training_tracker/internal/compliance"
	"training_tracker/internal/models"
)

type TrainingService struct {
	records   TrainingStore
	employees EmployeeStore
	courses   CourseStore
	today     func() models.Date
}

func NewTrainingService(records TrainingStore, employees EmployeeStore, courses CourseStore) *TrainingService {
	return &TrainingService{records: records, employees: employees, courses: courses, today: models.Today}
}

type CreateTrainingRequest struct {
	EmployeeID  uuid.UUID    `json:"employee_id" binding:"required"`
	CourseID    uuid.UUID    `json:"course_id" binding:"required"`
	CompletedOn models.Date  `json:"completed_on"`
	ExpiresOn   *models.Date `json:"expires_on,omitempty"`
}

type UpdateTrainingRequest struct {
	CompletedOn *models.Date `json:"completed_on,omitempty"`
	ExpiresOn   *models.Date `json:"expires_on,omitempty"`
}

// checkDates validates a completion and fills in the expiry from the course's
// recertification period when none was given.
func (s *TrainingService) checkDates(t *models.TrainingRecord, c *models.Course) error {
	if t.CompletedOn.IsZero() {
		return invalid("completed_on is required")
	}
	if t.CompletedOn.After(s.today()) {
		return invalid("completed_on %s is in the future", t.CompletedOn)
	}
	if t.ExpiresOn != nil && t.ExpiresOn.IsZero() {
		t.ExpiresOn = nil
	}
	if t.ExpiresOn != nil && t.ExpiresOn.Before(t.CompletedOn) {
		return invalid("expires_on %s is before completed_on %s", t.ExpiresOn, t.CompletedOn)
	}
	if t.ExpiresOn == nil {
		t.ExpiresOn = compliance.EffectiveExpiry(t, c)
	}
	return nil
}

func (s *TrainingService) Create(ctx context.Context, req CreateTrainingRequest) (*models.TrainingRecord, error) {
	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return nil, named(err, "employee")
	}
	c, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, named(err, "course")
	}

	t := &models.TrainingRecord{
		EmployeeID:  req.EmployeeID,
		CourseID:    req.CourseID,
		CompletedOn: req.CompletedOn,
		ExpiresOn:   req.ExpiresOn,
		Source:      models.SourceManual,
	}
	if err := s.checkDates(t, c); err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to record training: %w", err)
	}
	return t, nil
}

func (s *TrainingService) Get(ctx context.Context, id uuid.UUID) (*models.TrainingRecord, error) {
	t, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "training record")
	}
	return t, nil
}

func (s *TrainingService) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]models.TrainingRecord, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, named(err, "employee")
	}
	return s.records.ListByEmployee(ctx, employeeID)
}

// Update changes the dates of a record. A new completion date without an
// expiry re-derives the expiry from the course.
func (s *TrainingService) Update(ctx context.Context, id uuid.UUID, req UpdateTrainingRequest) (*models.TrainingRecord, error) {
	t, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "training record")
	}
	c, err := s.courses.GetByID(ctx, t.CourseID)
	if err != nil {
		return nil, named(err, "course")
	}
	if req.CompletedOn != nil {
		t.CompletedOn = *req.CompletedOn
		if req.ExpiresOn == nil {
			t.ExpiresOn = nil
		}
	}
	if req.ExpiresOn != nil {
		t.ExpiresOn = req.ExpiresOn
	}
	if err := s.checkDates(t, c); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, t); err != nil {
		return nil, named(err, "training record")
	}
	return t, nil
}

func (s *TrainingService) Delete(ctx context.Context, id uuid.UUID) error {
	return named(s.records.Delete(ctx, id), "training record")
}

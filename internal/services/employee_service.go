package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"training_tracker/internal/models"
)

type EmployeeService struct {
	employees EmployeeStore
	positions PositionStore
}

func NewEmployeeService(employees EmployeeStore, positions PositionStore) *EmployeeService {
	return &EmployeeService{employees: employees, positions: positions}
}

type CreateEmployeeRequest struct {
	EmployeeNumber string       `json:"employee_number" binding:"required"`
	FirstName      string       `json:"first_name" binding:"required"`
	LastName       string       `json:"last_name" binding:"required"`
	Email          *string      `json:"email,omitempty" binding:"omitempty,email"`
	PositionID     *uuid.UUID   `json:"position_id,omitempty"`
	HireDate       *models.Date `json:"hire_date,omitempty"`
	Active         *bool        `json:"active,omitempty"`
}

type UpdateEmployeeRequest struct {
	EmployeeNumber *string      `json:"employee_number,omitempty"`
	FirstName      *string      `json:"first_name,omitempty"`
	LastName       *string      `json:"last_name,omitempty"`
	Email          *string      `json:"email,omitempty" binding:"omitempty,email"`
	PositionID     *uuid.UUID   `json:"position_id,omitempty"`
	ClearPosition  bool         `json:"clear_position,omitempty"`
	HireDate       *models.Date `json:"hire_date,omitempty"`
	Active         *bool        `json:"active,omitempty"`
}

func (s *EmployeeService) checkPosition(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.positions.GetByID(ctx, *id); err != nil {
		return named(err, "position")
	}
	return nil
}

func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if strings.TrimSpace(req.EmployeeNumber) == "" {
		return nil, invalid("employee_number is required")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, invalid("first_name and last_name are required")
	}
	if err := s.checkPosition(ctx, req.PositionID); err != nil {
		return nil, err
	}

	e := &models.Employee{
		EmployeeNumber: req.EmployeeNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		PositionID:     req.PositionID,
		HireDate:       req.HireDate,
		Active:         true,
	}
	if req.Active != nil {
		e.Active = *req.Active
	}
	if err := s.employees.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "employee")
	}
	return e, nil
}

func (s *EmployeeService) List(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, error) {
	return s.employees.List(ctx, f)
}

func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, req UpdateEmployeeRequest) (*models.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "employee")
	}

	set := func(dst *string, v *string, field string) error {
		if v == nil {
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			return invalid("%s cannot be empty", field)
		}
		*dst = *v
		return nil
	}
	if err := set(&e.EmployeeNumber, req.EmployeeNumber, "employee_number"); err != nil {
		return nil, err
	}
	if err := set(&e.FirstName, req.FirstName, "first_name"); err != nil {
		return nil, err
	}
	if err := set(&e.LastName, req.LastName, "last_name"); err != nil {
		return nil, err
	}
	if req.Email != nil {
		e.Email = req.Email
	}
	switch {
	case req.ClearPosition:
		e.PositionID = nil
	case req.PositionID != nil:
		if err := s.checkPosition(ctx, req.PositionID); err != nil {
			return nil, err
		}
		e.PositionID = req.PositionID
	}
	if req.HireDate != nil {
		e.HireDate = req.HireDate
	}
	if req.Active != nil {
		e.Active = *req.Active
	}

	if err := s.employees.Update(ctx, e); err != nil {
		return nil, named(err, "employee")
	}
	return e, nil
}

// Delete removes the employee and, through the foreign keys, their records.
func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	return named(s.employees.Delete(ctx, id), "employee")
}

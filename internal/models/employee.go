package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID             uuid.UUID  `json:"id"`
	EmployeeNumber string     `json:"employee_number"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          *string    `json:"email,omitempty"`
	PositionID     *uuid.UUID `json:"position_id,omitempty"`
	HireDate       *Date      `json:"hire_date,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (e *Employee) Prepare() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.EmployeeNumber = strings.TrimSpace(e.EmployeeNumber)
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	if e.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*e.Email))
		if email == "" {
			e.Email = nil
		} else {
			e.Email = &email
		}
	}
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmployeeFilter narrows employee listings. Zero values mean no filter.
type EmployeeFilter struct {
	PositionID *uuid.UUID
	Active     *bool
	Search     string
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a note left on an anomaly: an employee, a course or an
// imported row that needs attention.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	CourseID   *uuid.UUID `json:"course_id,omitempty"`
	RowID      *uuid.UUID `json:"row_id,omitempty"`
	Author     string     `json:"author"`
	Body       string     `json:"body"`
	Resolved   bool       `json:"resolved"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c *Comment) Prepare() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
}

type CommentFilter struct {
	EmployeeID *uuid.UUID
	CourseID   *uuid.UUID
	RowID      *uuid.UUID
	Resolved   *bool
}

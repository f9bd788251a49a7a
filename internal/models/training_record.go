package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceManual = "manual"
	SourceImport = "import"
)

type TrainingRecord struct {
	ID          uuid.UUID  `json:"id"`
	EmployeeID  uuid.UUID  `json:"employee_id"`
	CourseID    uuid.UUID  `json:"course_id"`
	CompletedOn Date       `json:"completed_on"`
	ExpiresOn   *Date      `json:"expires_on,omitempty"`
	Source      string     `json:"source"`
	ImportRowID *uuid.UUID `json:"import_row_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (r *TrainingRecord) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Source == "" {
		r.Source = SourceManual
	}
}

// TrainingKey identifies a completion; a key is recorded at most once.
type TrainingKey struct {
	EmployeeID  uuid.UUID
	CourseID    uuid.UUID
	CompletedOn Date
}

func (r *TrainingRecord) Key() TrainingKey {
	return TrainingKey{EmployeeID: r.EmployeeID, CourseID: r.CourseID, CompletedOn: r.CompletedOn}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Row statuses move pending -> matched|unmatched|ambiguous|duplicate -> applied.
const (
	RowPending   = "pending"
	RowMatched   = "matched"
	RowUnmatched = "unmatched"
	RowAmbiguous = "ambiguous"
	RowDuplicate = "duplicate"
	RowApplied   = "applied"
)

func ValidRowStatus(s string) bool {
	switch s {
	case RowPending, RowMatched, RowUnmatched, RowAmbiguous, RowDuplicate, RowApplied:
		return true
	}
	return false
}

type ExternalImport struct {
	ID         uuid.UUID      `json:"id"`
	Source     string         `json:"source"`
	ImportedAt time.Time      `json:"imported_at"`
	RowCount   int            `json:"row_count"`
	Counts     map[string]int `json:"status_counts,omitempty"`
}

func (i *ExternalImport) Prepare() {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.ImportedAt.IsZero() {
		i.ImportedAt = time.Now()
	}
}

// ExternalTrainingRow is one line of an imported report, together with the
// result of reconciling it against internal employees and courses.
type ExternalTrainingRow struct {
	ID           uuid.UUID `json:"id"`
	ImportID     uuid.UUID `json:"import_id"`
	LineNo       int       `json:"line_no"`
	EmployeeRef  string    `json:"employee_ref"`
	EmployeeName string    `json:"employee_name"`
	CourseRef    string    `json:"course_ref"`
	CourseName   string    `json:"course_name"`
	CompletedOn  Date      `json:"completed_on"`
	ExpiresOn    *Date     `json:"expires_on,omitempty"`

	Status            string     `json:"status"`
	MatchedEmployeeID *uuid.UUID `json:"matched_employee_id,omitempty"`
	MatchedCourseID   *uuid.UUID `json:"matched_course_id,omitempty"`
	MatchMethod       string     `json:"match_method,omitempty"`
	MatchScore        float64    `json:"match_score"`
	Note              string     `json:"note,omitempty"`
}

func (r *ExternalTrainingRow) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RowPending
	}
}

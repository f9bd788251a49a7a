package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID   uuid.UUID `json:"id"`
	Code *string   `json:"code,omitempty"`
	Name string    `json:"name"`
	// RecertMonths is the recertification period; nil means the course
	// never expires on its own.
	RecertMonths *int      `json:"recert_months,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c *Course) Prepare() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*c.Code))
		if code == "" {
			c.Code = nil
		} else {
			c.Code = &code
		}
	}
}

type CourseAlias struct {
	ID         uuid.UUID `json:"id"`
	CourseID   uuid.UUID `json:"course_id"`
	Alias      string    `json:"alias"`
	Normalized string    `json:"normalized"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *CourseAlias) Prepare() {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Alias = strings.TrimSpace(a.Alias)
}

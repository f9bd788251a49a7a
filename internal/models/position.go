package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Position struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Position) Prepare() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Name = strings.TrimSpace(p.Name)
}

// PositionDetail is a position together with the courses it requires.
type PositionDetail struct {
	Position
	RequiredCourses []Course `json:"required_courses"`
}

// Package compliance derives certification status for employee/course pairs
// from training records. It does no I/O.
package compliance

import (
	"sort"

	"github.com/google/uuid"

	"training_tracker/internal/models"
)

type Status string

const (
	Expired        Status = "expired"
	ExpiringSoon   Status = "expiring_soon"
	Valid          Status = "valid"
	NeverCompleted Status = "never_completed"
)

func (s Status) Valid() bool {
	switch s {
	case Expired, ExpiringSoon, Valid, NeverCompleted:
		return true
	}
	return false
}

// Severity orders statuses from most (0) to least urgent.
func (s Status) Severity() int {
	switch s {
	case Expired:
		return 0
	case NeverCompleted:
		return 1
	case ExpiringSoon:
		return 2
	default:
		return 3
	}
}

// EffectiveExpiry returns the last day a record is valid, or nil when it
// never expires. An explicit expiration date wins over the course period.
func EffectiveExpiry(r *models.TrainingRecord, c *models.Course) *models.Date {
	if r == nil {
		return nil
	}
	if r.ExpiresOn != nil && !r.ExpiresOn.IsZero() {
		d := *r.ExpiresOn
		return &d
	}
	if c != nil && c.RecertMonths != nil && *c.RecertMonths > 0 {
		d := r.CompletedOn.AddMonths(*c.RecertMonths)
		return &d
	}
	return nil
}

// Derive classifies the latest record for a course. The expiry day itself is
// still valid; a record is expiring soon when it lapses within window days.
func Derive(latest *models.TrainingRecord, c *models.Course, today models.Date, window int) (Status, *models.Date) {
	if latest == nil {
		return NeverCompleted, nil
	}
	exp := EffectiveExpiry(latest, c)
	switch {
	case exp == nil:
		return Valid, nil
	case exp.Before(today):
		return Expired, exp
	case !exp.After(today.AddDays(window)):
		return ExpiringSoon, exp
	default:
		return Valid, exp
	}
}

// Latest picks the most recent completion. Ties on completion date go to the
// record that stays valid longest.
func Latest(records []models.TrainingRecord, c *models.Course) *models.TrainingRecord {
	var best *models.TrainingRecord
	for i := range records {
		r := &records[i]
		if best == nil || r.CompletedOn.After(best.CompletedOn) {
			best = r
			continue
		}
		if r.CompletedOn.Equal(best.CompletedOn) && expiresLater(r, best, c) {
			best = r
		}
	}
	return best
}

func expiresLater(a, b *models.TrainingRecord, c *models.Course) bool {
	ea, eb := EffectiveExpiry(a, c), EffectiveExpiry(b, c)
	switch {
	case ea == nil:
		return eb != nil
	case eb == nil:
		return false
	default:
		return ea.After(*eb)
	}
}

type Item struct {
	CourseID      uuid.UUID    `json:"course_id"`
	CourseName    string       `json:"course_name"`
	CourseCode    *string      `json:"course_code,omitempty"`
	Required      bool         `json:"required"`
	Status        Status       `json:"status"`
	CompletedOn   *models.Date `json:"completed_on,omitempty"`
	ExpiresOn     *models.Date `json:"expires_on,omitempty"`
	DaysRemaining *int         `json:"days_remaining,omitempty"`
	RecordID      *uuid.UUID   `json:"record_id,omitempty"`
}

type Summary struct {
	Expired        int  `json:"expired"`
	ExpiringSoon   int  `json:"expiring_soon"`
	Valid          int  `json:"valid"`
	NeverCompleted int  `json:"never_completed"`
	Compliant      bool `json:"compliant"`
}

func (s *Summary) add(st Status) {
	switch st {
	case Expired:
		s.Expired++
	case ExpiringSoon:
		s.ExpiringSoon++
	case Valid:
		s.Valid++
	case NeverCompleted:
		s.NeverCompleted++
	}
}

// Evaluate produces one item per required course plus one per course the
// employee completed without it being required. Items are ordered by urgency,
// then course name.
func Evaluate(required []models.Course, courses map[uuid.UUID]models.Course, records []models.TrainingRecord, today models.Date, window int) []Item {
	byCourse := make(map[uuid.UUID][]models.TrainingRecord)
	for _, r := range records {
		byCourse[r.CourseID] = append(byCourse[r.CourseID], r)
	}

	items := make([]Item, 0, len(required)+len(byCourse))
	seen := make(map[uuid.UUID]bool, len(required))
	for i := range required {
		c := &required[i]
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		items = append(items, itemFor(c, byCourse[c.ID], true, today, window))
	}
	for courseID, recs := range byCourse {
		if seen[courseID] {
			continue
		}
		c, ok := courses[courseID]
		if !ok {
			c = models.Course{ID: courseID}
		}
		items = append(items, itemFor(&c, recs, false, today, window))
	}

	sort.SliceStable(items, func(i, j int) bool {
		si, sj := items[i].Status.Severity(), items[j].Status.Severity()
		if si != sj {
			return si < sj
		}
		if items[i].Required != items[j].Required {
			return items[i].Required
		}
		return items[i].CourseName < items[j].CourseName
	})
	return items
}

func itemFor(c *models.Course, recs []models.TrainingRecord, required bool, today models.Date, window int) Item {
	item := Item{
		CourseID:   c.ID,
		CourseName: c.Name,
		CourseCode: c.Code,
		Required:   required,
	}
	latest := Latest(recs, c)
	status, exp := Derive(latest, c, today, window)
	item.Status = status
	item.ExpiresOn = exp
	if latest != nil {
		completed := latest.CompletedOn
		id := latest.ID
		item.CompletedOn = &completed
		item.RecordID = &id
	}
	if exp != nil {
		days := today.DaysUntil(*exp)
		item.DaysRemaining = &days
	}
	return item
}

// Summarize counts items by status. Only required courses affect compliance.
func Summarize(items []Item) Summary {
	s := Summary{Compliant: true}
	for _, it := range items {
		s.add(it.Status)
		if it.Required && (it.Status == Expired || it.Status == NeverCompleted) {
			s.Compliant = false
		}
	}
	return s
}

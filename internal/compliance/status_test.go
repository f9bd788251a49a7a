package compliance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training_tracker/internal/models"
)

var today = models.NewDate(2024, time.June, 15)

func months(n int) *int { return &n }

func date(y int, m time.Month, d int) *models.Date {
	v := models.NewDate(y, m, d)
	return &v
}

func TestEffectiveExpiry(t *testing.T) {
	course := &models.Course{RecertMonths: months(24)}
	rec := &models.TrainingRecord{CompletedOn: models.NewDate(2023, time.January, 10)}

	got := EffectiveExpiry(rec, course)
	require.NotNil(t, got)
	assert.Equal(t, "2025-01-10", got.String())

	rec.ExpiresOn = date(2023, time.July, 1)
	assert.Equal(t, "2023-07-01", EffectiveExpiry(rec, course).String())

	assert.Nil(t, EffectiveExpiry(&models.TrainingRecord{CompletedOn: today}, &models.Course{}))
	assert.Nil(t, EffectiveExpiry(nil, course))
}

func TestDerive(t *testing.T) {
	noRecert := &models.Course{}
	yearly := &models.Course{RecertMonths: months(12)}

	tests := []struct {
		name   string
		record *models.TrainingRecord
		course *models.Course
		want   Status
	}{
		{name: "no record", record: nil, course: yearly, want: NeverCompleted},
		{name: "never expires", record: &models.TrainingRecord{CompletedOn: models.NewDate(2001, 1, 1)}, course: noRecert, want: Valid},
		{name: "expired yesterday", record: &models.TrainingRecord{CompletedOn: models.NewDate(2023, time.June, 14)}, course: yearly, want: Expired},
		{name: "expires today", record: &models.TrainingRecord{CompletedOn: models.NewDate(2023, time.June, 15)}, course: yearly, want: ExpiringSoon},
		{name: "expires on window edge", record: &models.TrainingRecord{CompletedOn: today, ExpiresOn: date(2024, time.July, 15)}, course: noRecert, want: ExpiringSoon},
		{name: "expires after window", record: &models.TrainingRecord{CompletedOn: today, ExpiresOn: date(2024, time.July, 16)}, course: noRecert, want: Valid},
		{name: "explicit expiry beats recert", record: &models.TrainingRecord{CompletedOn: models.NewDate(2024, time.June, 1), ExpiresOn: date(2024, time.June, 2)}, course: yearly, want: Expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Derive(tt.record, tt.course, today, 30)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveZeroWindow(t *testing.T) {
	rec := &models.TrainingRecord{CompletedOn: today, ExpiresOn: date(2024, time.June, 16)}

	got, exp := Derive(rec, nil, today, 0)
	assert.Equal(t, Valid, got)
	assert.Equal(t, "2024-06-16", exp.String())
}

func TestLatest(t *testing.T) {
	course := &models.Course{}
	a := models.TrainingRecord{ID: uuid.New(), CompletedOn: models.NewDate(2022, 1, 1)}
	b := models.TrainingRecord{ID: uuid.New(), CompletedOn: models.NewDate(2023, 1, 1), ExpiresOn: date(2023, 6, 1)}
	c := models.TrainingRecord{ID: uuid.New(), CompletedOn: models.NewDate(2023, 1, 1), ExpiresOn: date(2024, 1, 1)}

	assert.Nil(t, Latest(nil, course))
	assert.Equal(t, c.ID, Latest([]models.TrainingRecord{a, b, c}, course).ID)
	assert.Equal(t, c.ID, Latest([]models.TrainingRecord{c, b, a}, course).ID)

	// A tie where one record never expires keeps the non-expiring one.
	d := models.TrainingRecord{ID: uuid.New(), CompletedOn: models.NewDate(2023, 1, 1)}
	assert.Equal(t, d.ID, Latest([]models.TrainingRecord{c, d}, course).ID)
}

func TestEvaluateAndSummarize(t *testing.T) {
	cpr := models.Course{ID: uuid.New(), Name: "CPR", RecertMonths: months(24)}
	forklift := models.Course{ID: uuid.New(), Name: "Forklift", RecertMonths: months(36)}
	hazcom := models.Course{ID: uuid.New(), Name: "HazCom"}
	ethics := models.Course{ID: uuid.New(), Name: "Ethics"}

	courses := map[uuid.UUID]models.Course{cpr.ID: cpr, forklift.ID: forklift, hazcom.ID: hazcom, ethics.ID: ethics}
	records := []models.TrainingRecord{
		{ID: uuid.New(), CourseID: cpr.ID, CompletedOn: models.NewDate(2021, time.January, 1)},
		{ID: uuid.New(), CourseID: cpr.ID, CompletedOn: models.NewDate(2022, time.July, 1)},
		{ID: uuid.New(), CourseID: forklift.ID, CompletedOn: models.NewDate(2023, time.March, 1)},
		{ID: uuid.New(), CourseID: ethics.ID, CompletedOn: models.NewDate(2020, time.March, 1)},
	}

	items := Evaluate([]models.Course{forklift, cpr, hazcom, cpr}, courses, records, today, 30)
	require.Len(t, items, 4)

	assert.Equal(t, "HazCom", items[0].CourseName)
	assert.Equal(t, NeverCompleted, items[0].Status)
	assert.Nil(t, items[0].CompletedOn)

	assert.Equal(t, "CPR", items[1].CourseName)
	assert.Equal(t, ExpiringSoon, items[1].Status)
	assert.Equal(t, "2022-07-01", items[1].CompletedOn.String())
	require.NotNil(t, items[1].DaysRemaining)
	assert.Equal(t, 16, *items[1].DaysRemaining)

	assert.Equal(t, "Forklift", items[2].CourseName)
	assert.Equal(t, Valid, items[2].Status)
	assert.True(t, items[2].Required)

	assert.Equal(t, "Ethics", items[3].CourseName)
	assert.False(t, items[3].Required)
	assert.Equal(t, Valid, items[3].Status)

	s := Summarize(items)
	assert.Equal(t, Summary{ExpiringSoon: 1, Valid: 2, NeverCompleted: 1, Compliant: false}, s)
}

func TestSummarizeIgnoresOptionalCourses(t *testing.T) {
	items := []Item{
		{Required: true, Status: Valid},
		{Required: false, Status: Expired},
	}

	s := Summarize(items)
	assert.True(t, s.Compliant)
	assert.Equal(t, 1, s.Expired)
}

func TestSeverity(t *testing.T) {
	ordered := []Status{Expired, NeverCompleted, ExpiringSoon, Valid}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1].Severity(), ordered[i].Severity(), ordered[i])
	}
	assert.Equal(t, Valid.Severity(), Status("unknown").Severity())
}

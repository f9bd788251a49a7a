package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training_tracker/internal/compliance"
	"training_tracker/internal/models"
	"training_tracker/internal/storetest"
)

type complianceFixture struct {
	db       *storetest.DB
	svc      *ComplianceService
	operator models.Position
	forklift models.Course
	firstAid models.Course
	hazcom   models.Course
	ladder   models.Course
	lapsed   models.Employee
	current  models.Employee
	floater  models.Employee
}

func newComplianceFixture() *complianceFixture {
	db := storetest.New()
	f := &complianceFixture{db: db}
	f.operator = db.AddPosition("Operator")
	f.forklift = db.AddCourse("Forklift Safety", "FLS", 12)
	f.firstAid = db.AddCourse("First Aid", "", 0)
	f.hazcom = db.AddCourse("Hazard Communication", "", 0)
	f.ladder = db.AddCourse("Ladder Safety", "", 0)
	db.Require(f.operator.ID, f.forklift.ID)
	db.Require(f.operator.ID, f.firstAid.ID)
	db.Require(f.operator.ID, f.hazcom.ID)

	pid := f.operator.ID
	f.lapsed = db.AddEmployee("1", "Ann", "Adams", &pid)
	db.AddRecord(f.lapsed.ID, f.forklift.ID, date(2023, time.June, 1), nil)
	db.AddRecord(f.lapsed.ID, f.firstAid.ID, date(2020, time.March, 3), nil)
	db.AddRecord(f.lapsed.ID, f.ladder.ID, date(2022, time.July, 1), datePtr(2024, time.July, 1))

	f.current = db.AddEmployee("2", "Bob", "Brown", &pid)
	db.AddRecord(f.current.ID, f.forklift.ID, date(2024, time.January, 1), nil)
	db.AddRecord(f.current.ID, f.firstAid.ID, date(2021, time.May, 5), nil)
	db.AddRecord(f.current.ID, f.hazcom.ID, date(2023, time.June, 15), datePtr(2024, time.June, 15))

	f.floater = db.AddEmployee("3", "Cy", "Cole", nil)
	gone := db.AddEmployee("4", "Di", "Dunn", &pid)
	gone.Active = false
	db.Employees[gone.ID] = gone

	f.svc = NewComplianceService(storetest.Employees{DB: db}, storetest.Positions{DB: db}, storetest.Courses{DB: db}, storetest.Training{DB: db}, 30)
	f.svc.today = fixedToday(date(2024, time.June, 15))
	return f
}

func TestComplianceForEmployee(t *testing.T) {
	f := newComplianceFixture()

	got, err := f.svc.ForEmployee(context.Background(), f.lapsed.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Window)
	assert.Equal(t, "2024-06-15", got.AsOf.String())

	require.Len(t, got.Items, 4)
	statuses := make([]compliance.Status, len(got.Items))
	for i, it := range got.Items {
		statuses[i] = it.Status
	}
	assert.Equal(t, []compliance.Status{
		compliance.Expired,
		compliance.NeverCompleted,
		compliance.ExpiringSoon,
		compliance.Valid,
	}, statuses)

	assert.Equal(t, f.forklift.ID, got.Items[0].CourseID)
	assert.Equal(t, "2024-06-01", got.Items[0].ExpiresOn.String())
	assert.Equal(t, f.hazcom.ID, got.Items[1].CourseID)
	assert.Equal(t, f.ladder.ID, got.Items[2].CourseID)
	assert.False(t, got.Items[2].Required)
	require.NotNil(t, got.Items[2].DaysRemaining)
	assert.Equal(t, 16, *got.Items[2].DaysRemaining)

	assert.Equal(t, compliance.Summary{Expired: 1, ExpiringSoon: 1, Valid: 1, NeverCompleted: 1}, got.Summary)

	current, err := f.svc.ForEmployee(context.Background(), f.current.ID, nil)
	require.NoError(t, err)
	assert.True(t, current.Summary.Compliant)
	assert.Equal(t, 1, current.Summary.ExpiringSoon, "the expiry day itself is still valid")

	narrow := 0
	current, err = f.svc.ForEmployee(context.Background(), f.current.ID, &narrow)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Summary.ExpiringSoon)

	_, err = f.svc.ForEmployee(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, models.ErrNotFound)

	negative := -1
	_, err = f.svc.ForEmployee(context.Background(), f.current.ID, &negative)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestComplianceReport(t *testing.T) {
	f := newComplianceFixture()
	ctx := context.Background()

	expired, err := f.svc.Report(ctx, ReportFilter{Status: compliance.Expired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, f.lapsed.ID, expired[0].EmployeeID)
	assert.Equal(t, "Ann Adams", expired[0].EmployeeName)
	assert.Equal(t, f.forklift.ID, expired[0].CourseID)

	pid := f.operator.ID
	all, err := f.svc.Report(ctx, ReportFilter{PositionID: &pid})
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, compliance.Expired, all[0].Status)
	assert.Equal(t, compliance.Valid, all[len(all)-1].Status)

	_, err = f.svc.Report(ctx, ReportFilter{Status: "lapsed"})
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestComplianceSummary(t *testing.T) {
	f := newComplianceFixture()

	got, err := f.svc.Summary(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	op := got[0]
	assert.Equal(t, "Operator", op.PositionName)
	assert.Equal(t, 2, op.Employees)
	assert.Equal(t, 1, op.CompliantEmployees)
	assert.False(t, op.Compliant)
	assert.Equal(t, 1, op.Expired)
	assert.Equal(t, 1, op.NeverCompleted)
	assert.Equal(t, 2, op.ExpiringSoon)
	assert.Equal(t, 3, op.Valid)

	unassigned := got[1]
	assert.Nil(t, unassigned.PositionID)
	assert.Equal(t, 1, unassigned.Employees)
	assert.True(t, unassigned.Compliant)
}

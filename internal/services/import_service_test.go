package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training_tracker/internal/matching"
	"training_tracker/internal/models"
	"training_tracker/internal/storetest"
)

type importFixture struct {
	db       *storetest.DB
	svc      *ImportService
	forklift models.Course
	firstAid models.Course
	hazcom   models.Course
	smith    models.Employee
	doe      models.Employee
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	db := storetest.New()
	f := &importFixture{db: db}
	f.forklift = db.AddCourse("Forklift Safety", "FLS", 12)
	f.firstAid = db.AddCourse("First Aid CPR", "", 0)
	f.hazcom = db.AddCourse("Hazard Communication", "", 0)
	f.smith = db.AddEmployee("00123", "John", "Smith", nil)
	f.doe = db.AddEmployee("456", "Jane", "Doe", nil)
	db.AddEmployee("901", "Alex", "Kim", nil)
	db.AddEmployee("902", "Alex", "Kim", nil)
	db.AddRecord(f.doe.ID, f.firstAid.ID, date(2023, time.May, 1), nil)

	f.svc = NewImportService(storetest.Imports{DB: db}, storetest.Employees{DB: db}, storetest.Courses{DB: db}, storetest.Training{DB: db}, 0)
	f.svc.today = fixedToday(date(2024, time.June, 15))
	return f
}

func (f *importFixture) create(t *testing.T) *models.ExternalImport {
	t.Helper()
	imp, err := f.svc.Create(context.Background(), CreateImportRequest{
		Source: "LMS export",
		Rows: []ImportRowRequest{
			{EmployeeRef: "123", EmployeeName: "Smith, John", CourseRef: "fls", CourseName: "Forklift Safety Training", CompletedOn: "2024-01-10"},
			{EmployeeName: "John Smith", CourseName: "forklift safety", CompletedOn: "1/10/2024"},
			{EmployeeRef: "456", CourseName: "Underwater Basket Weaving", CompletedOn: "2024-02-01"},
			{EmployeeName: "Alex Kim", CourseName: "Hazard Communication", CompletedOn: "2024-03-01"},
			{EmployeeRef: "456", CourseName: "First Aid/CPR", CompletedOn: "2023-05-01"},
		},
	})
	require.NoError(t, err)
	return imp
}

func rowsByLine(t *testing.T, f *importFixture, imp models.ExternalImport) map[int]models.ExternalTrainingRow {
	t.Helper()
	rows, err := f.svc.Rows(context.Background(), imp.ID, "")
	require.NoError(t, err)
	out := map[int]models.ExternalTrainingRow{}
	for _, r := range rows {
		out[r.LineNo] = r
	}
	return out
}

func TestImportCreateValidation(t *testing.T) {
	f := newImportFixture(t)

	_, err := f.svc.Create(context.Background(), CreateImportRequest{
		Source: "report",
		Rows: []ImportRowRequest{
			{EmployeeRef: "1", CourseName: "CPR", CompletedOn: "2024-01-01"},
			{EmployeeRef: "1", CourseName: "CPR", CompletedOn: "yesterday"},
			{EmployeeRef: "1", CompletedOn: "2024-01-01"},
			{EmployeeRef: "1", CourseName: "CPR", CompletedOn: ""},
		},
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "invalid dates on lines 2, 4")
	assert.Contains(t, err.Error(), "missing employee or course on lines 3")
	assert.Empty(t, f.db.Imports)

	_, err = f.svc.Create(context.Background(), CreateImportRequest{
		Source: "report",
		Rows: []ImportRowRequest{
			{EmployeeRef: "123", CourseRef: "FLS", CompletedOn: "2999-01-01"},
			{EmployeeRef: "456", CourseName: "Hazard Communication", CompletedOn: "2024-06-01", ExpiresOn: "2020-01-01"},
			{EmployeeRef: "456", CourseName: "Hazard Communication", CompletedOn: "2024-06-15", ExpiresOn: "2024-06-15"},
			{EmployeeRef: "123", CourseRef: "FLS", CompletedOn: "2024-06-16"},
		},
	})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Contains(t, err.Error(), "completion date in the future on lines 1, 4")
	assert.Contains(t, err.Error(), "expiry before completion on lines 2")
	assert.NotContains(t, err.Error(), "lines 2, 3")
	assert.Empty(t, f.db.Imports)
	assert.Empty(t, f.db.Rows)

	imp := f.create(t)
	assert.Equal(t, 5, imp.RowCount)
	assert.Equal(t, 5, imp.Counts[models.RowPending])
}

func TestImportReconcile(t *testing.T) {
	f := newImportFixture(t)
	imp := f.create(t)

	res, err := f.svc.Reconcile(context.Background(), imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Reconciled)
	assert.Equal(t, map[string]int{
		models.RowMatched:   1,
		models.RowDuplicate: 2,
		models.RowUnmatched: 1,
		models.RowAmbiguous: 1,
	}, res.Counts)

	rows := rowsByLine(t, f, *imp)

	first := rows[1]
	assert.Equal(t, models.RowMatched, first.Status)
	assert.Equal(t, "number/code", first.MatchMethod)
	assert.Equal(t, 1.0, first.MatchScore)
	require.NotNil(t, first.MatchedEmployeeID)
	assert.Equal(t, f.smith.ID, *first.MatchedEmployeeID)
	assert.Equal(t, f.forklift.ID, *first.MatchedCourseID)

	assert.Equal(t, models.RowDuplicate, rows[2].Status)
	assert.Equal(t, "name/name", rows[2].MatchMethod)
	assert.Equal(t, "same completion as line 1", rows[2].Note)

	assert.Equal(t, models.RowUnmatched, rows[3].Status)
	assert.Equal(t, "course not found", rows[3].Note)
	assert.Equal(t, f.doe.ID, *rows[3].MatchedEmployeeID)
	assert.Nil(t, rows[3].MatchedCourseID)
	assert.Equal(t, 0.0, rows[3].MatchScore)

	assert.Equal(t, models.RowAmbiguous, rows[4].Status)
	assert.Contains(t, rows[4].Note, "employee ambiguous")
	assert.Nil(t, rows[4].MatchedEmployeeID)
	assert.Equal(t, f.hazcom.ID, *rows[4].MatchedCourseID)

	assert.Equal(t, models.RowDuplicate, rows[5].Status)
	assert.Equal(t, "completion already recorded", rows[5].Note)
}

func TestImportResolveAndApply(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(t)
	imp := f.create(t)
	_, err := f.svc.Reconcile(ctx, imp.ID)
	require.NoError(t, err)

	unmatched := rowsByLine(t, f, *imp)[3]
	courseID := f.firstAid.ID
	row, err := f.svc.ResolveRow(ctx, imp.ID, unmatched.ID, ResolveRowRequest{CourseID: &courseID, RememberAlias: true})
	require.NoError(t, err)
	assert.Equal(t, models.RowMatched, row.Status)
	assert.Equal(t, "number/manual", row.MatchMethod)
	assert.Empty(t, row.Note)

	aliases, err := storetest.Courses{DB: f.db}.ListAliases(ctx, f.firstAid.ID)
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, "Underwater Basket Weaving", aliases[0].Alias)
	assert.Equal(t, matching.Normalize("Underwater Basket Weaving"), aliases[0].Normalized)

	// a rerun keeps the manual course choice
	_, err = f.svc.Reconcile(ctx, imp.ID)
	require.NoError(t, err)
	again := rowsByLine(t, f, *imp)[3]
	assert.Equal(t, models.RowMatched, again.Status)
	assert.Equal(t, "number/manual", again.MatchMethod)

	applied, err := f.svc.Apply(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, applied.Applied)
	assert.Equal(t, 0, applied.Duplicates)

	recs, err := storetest.Training{DB: f.db}.ListByEmployee(ctx, f.smith.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.SourceImport, recs[0].Source)
	require.NotNil(t, recs[0].ExpiresOn)
	assert.Equal(t, "2025-01-10", recs[0].ExpiresOn.String())

	rows := rowsByLine(t, f, *imp)
	assert.Equal(t, models.RowApplied, rows[1].Status)
	assert.Equal(t, models.RowApplied, rows[3].Status)

	applied, err = f.svc.Apply(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, applied.Applied)

	res, err := f.svc.Reconcile(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Reconciled)
	assert.Equal(t, 2, res.Counts[models.RowApplied])
	assert.Equal(t, "completion already recorded", rowsByLine(t, f, *imp)[2].Note)

	_, err = f.svc.ResolveRow(ctx, imp.ID, rows[1].ID, ResolveRowRequest{CourseID: &courseID})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestImportApplyDemotesStaleMatches(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(t)
	imp := f.create(t)
	_, err := f.svc.Reconcile(ctx, imp.ID)
	require.NoError(t, err)

	// Deleting the course clears the row's course match.
	first := rowsByLine(t, f, *imp)[1]
	require.Equal(t, models.RowMatched, first.Status)
	delete(f.db.Courses, f.forklift.ID)
	first.MatchedCourseID = nil
	f.db.Rows[first.ID] = first

	applied, err := f.svc.Apply(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, applied.Applied)
	assert.Equal(t, 1, applied.Unmatched)
	assert.Len(t, f.db.Records, 1)

	row := rowsByLine(t, f, *imp)[1]
	assert.Equal(t, models.RowUnmatched, row.Status)
	assert.Equal(t, "course no longer exists", row.Note)

	applied, err = f.svc.Apply(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, applied.Unmatched)
}

func TestImportResolveRowErrors(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture(t)
	imp := f.create(t)
	_, err := f.svc.Reconcile(ctx, imp.ID)
	require.NoError(t, err)
	rows := rowsByLine(t, f, *imp)

	_, err = f.svc.ResolveRow(ctx, imp.ID, rows[4].ID, ResolveRowRequest{})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	missing := f.hazcom.ID
	_, err = f.svc.ResolveRow(ctx, imp.ID, rows[4].ID, ResolveRowRequest{EmployeeID: &missing})
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.EqualError(t, err, "employee not found")

	// choosing the employee of an ambiguous row completes the match
	row, err := f.svc.ResolveRow(ctx, imp.ID, rows[4].ID, ResolveRowRequest{EmployeeID: &f.doe.ID})
	require.NoError(t, err)
	assert.Equal(t, models.RowMatched, row.Status)
	assert.Equal(t, "manual/name", row.MatchMethod)

	// resolving a row onto a completion another row already claims
	smith := f.smith.ID
	forklift := f.forklift.ID
	row, err = f.svc.ResolveRow(ctx, imp.ID, rows[3].ID, ResolveRowRequest{EmployeeID: &smith, CourseID: &forklift})
	require.NoError(t, err)
	assert.Equal(t, models.RowMatched, row.Status, "line 3 completed on another day")

	_, err = f.svc.Rows(ctx, imp.ID, "bogus")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

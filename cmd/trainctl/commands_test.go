package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training_tracker/internal/models"
	"training_tracker/internal/services"
	"training_tracker/internal/storetest"
)

func newTestCLI(db *storetest.DB) (*cli, *bytes.Buffer) {
	var out bytes.Buffer
	svc := services.New(services.Stores{
		Positions: storetest.Positions{DB: db},
		Courses:   storetest.Courses{DB: db},
		Employees: storetest.Employees{DB: db},
		Training:  storetest.Training{DB: db},
		Imports:   storetest.Imports{DB: db},
		Comments:  storetest.Comments{DB: db},
	}, services.Options{ExpiringWindowDays: 30, SessionSecret: "0123456789abcdef"})
	return &cli{out: &out, svc: svc}, &out
}

func run(t *testing.T, c *cli, args ...string) error {
	t.Helper()
	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestExpiringListsAttentionRows(t *testing.T) {
	db := storetest.New()
	pos := db.AddPosition("Warehouse")
	forklift := db.AddCourse("Forklift Safety", "FLS", 0)
	firstAid := db.AddCourse("First Aid CPR", "", 0)
	hazcom := db.AddCourse("Hazard Communication", "", 0)
	ladder := db.AddCourse("Ladder Safety", "", 0)
	for _, c := range []models.Course{forklift, firstAid, hazcom, ladder} {
		db.Require(pos.ID, c.ID)
	}
	emp := db.AddEmployee("100", "Jane", "Doe", &pos.ID)

	today := models.Today()
	expired := today.AddDays(-10)
	soon := today.AddDays(10)
	later := today.AddDays(200)
	db.AddRecord(emp.ID, forklift.ID, today.AddDays(-400), &expired)
	db.AddRecord(emp.ID, firstAid.ID, today.AddDays(-300), &soon)
	db.AddRecord(emp.ID, ladder.ID, today.AddDays(-100), &later)

	c, out := newTestCLI(db)
	require.NoError(t, run(t, c, "expiring"))

	text := out.String()
	assert.Contains(t, text, "EMPLOYEE")
	assert.Contains(t, text, "Forklift Safety")
	assert.Contains(t, text, "expired")
	assert.Contains(t, text, "First Aid CPR")
	assert.Contains(t, text, "expiring soon")
	assert.NotContains(t, text, "Hazard Communication")
	assert.NotContains(t, text, "Ladder Safety")

	out.Reset()
	require.NoError(t, run(t, c, "expiring", "--status", "never_completed"))
	assert.Contains(t, out.String(), "Hazard Communication")
	assert.NotContains(t, out.String(), "Forklift Safety")

	out.Reset()
	require.NoError(t, run(t, c, "expiring", "--window", "5"))
	assert.NotContains(t, out.String(), "First Aid CPR")
}

func TestExpiringRejectsUnknownStatus(t *testing.T) {
	c, _ := newTestCLI(storetest.New())
	err := run(t, c, "expiring", "--status", "bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestDuplicatesAndMerge(t *testing.T) {
	db := storetest.New()
	target := db.AddCourse("Forklift Safety", "FLS", 12)
	source := db.AddCourse("Forklift Safety Training", "", 0)
	db.AddCourse("Hazard Communication", "", 0)

	c, out := newTestCLI(db)
	require.NoError(t, run(t, c, "duplicates"))
	text := out.String()
	assert.Contains(t, text, "group 1")
	assert.Contains(t, text, "Forklift Safety Training")
	assert.NotContains(t, text, "Hazard Communication")

	out.Reset()
	require.NoError(t, run(t, c, "merge", target.ID.String(), source.ID.String()))
	assert.Contains(t, out.String(), "merged 1 courses into "+target.ID.String())
	assert.Equal(t, source.ID, db.Merged[0])

	out.Reset()
	require.NoError(t, run(t, c, "duplicates"))
	assert.Contains(t, out.String(), "no duplicate courses found")
}

func TestMergeValidatesArguments(t *testing.T) {
	c, _ := newTestCLI(storetest.New())
	require.Error(t, run(t, c, "merge", "only-one"))

	err := run(t, c, "merge", "not-a-uuid", "also-not")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestReconcileThenApply(t *testing.T) {
	db := storetest.New()
	db.AddCourse("Forklift Safety", "FLS", 12)
	db.AddEmployee("00123", "John", "Smith", nil)

	c, out := newTestCLI(db)
	imp, err := c.svc.Imports.Create(context.Background(), services.CreateImportRequest{
		Source: "vendor report",
		Rows: []services.ImportRowRequest{{
			EmployeeRef:  "123",
			EmployeeName: "Smith, John",
			CourseRef:    "fls",
			CourseName:   "Forklift Safety",
			CompletedOn:  "2024-01-10",
		}},
	})
	require.NoError(t, err)

	require.NoError(t, run(t, c, "reconcile", imp.ID.String()))
	assert.Contains(t, out.String(), "reconciled 1 rows")
	assert.Contains(t, out.String(), "matched")

	out.Reset()
	require.NoError(t, run(t, c, "apply", imp.ID.String()))
	assert.Equal(t, "applied 1 rows, 0 duplicates\n", out.String())
	assert.Len(t, db.Records, 1)
}

func TestMigrateNeedsDatabase(t *testing.T) {
	c, _ := newTestCLI(storetest.New())
	err := run(t, c, "migrate")
	require.Error(t, err)
}

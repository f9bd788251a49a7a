//go:build integration

package repositories

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"training_tracker/internal/database"
	"training_tracker/internal/models"
)

var testPool *pgxpool.Pool

// TestMain starts one Postgres container for the package and migrates it.
func TestMain(m *testing.M) {
	os.Exit(runWithDatabase(m))
}

func runWithDatabase(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("training_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		log.Printf("failed to start postgres container: %v", err)
		return 1
	}
	defer func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			log.Printf("failed to terminate postgres container: %v", err)
		}
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Printf("failed to get connection string: %v", err)
		return 1
	}
	testPool, err = database.ConnectURL(ctx, dsn)
	if err != nil {
		log.Printf("failed to connect: %v", err)
		return 1
	}
	defer testPool.Close()

	if err := database.RunMigrations(ctx, testPool); err != nil {
		log.Printf("failed to migrate: %v", err)
		return 1
	}
	// Migrations must be safe to run twice.
	if err := database.RunMigrations(ctx, testPool); err != nil {
		log.Printf("second migration run failed: %v", err)
		return 1
	}
	return m.Run()
}

func unique(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func seedCourse(t *testing.T, name string, recert int) *models.Course {
	t.Helper()
	c := &models.Course{Name: name, Active: true}
	if recert > 0 {
		c.RecertMonths = &recert
	}
	require.NoError(t, NewCourseRepository(testPool).Create(context.Background(), c))
	return c
}

func seedEmployee(t *testing.T, positionID *uuid.UUID) *models.Employee {
	t.Helper()
	e := &models.Employee{EmployeeNumber: unique("E"), FirstName: "Jane", LastName: "Doe", PositionID: positionID, Active: true}
	require.NoError(t, NewEmployeeRepository(testPool).Create(context.Background(), e))
	return e
}

func TestPositionConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewPositionRepository(testPool)

	name := unique("Warehouse")
	require.NoError(t, repo.Create(ctx, &models.Position{Name: name}))
	err := repo.Create(ctx, &models.Position{Name: name})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequirementsFollowPosition(t *testing.T) {
	ctx := context.Background()
	repo := NewPositionRepository(testPool)
	p := &models.Position{Name: unique("Dock")}
	require.NoError(t, repo.Create(ctx, p))
	c := seedCourse(t, unique("Forklift Safety"), 12)

	require.NoError(t, repo.AddRequirement(ctx, p.ID, c.ID))
	required, err := repo.RequiredCourses(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, required, 1)
	assert.Equal(t, c.ID, required[0].ID)

	err = repo.AddRequirement(ctx, p.ID, uuid.New())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestTrainingExpiryNotBeforeCompletion(t *testing.T) {
	ctx := context.Background()
	c := seedCourse(t, unique("Ladder Safety"), 0)
	e := seedEmployee(t, nil)

	expires := models.NewDate(2020, time.January, 1)
	rec := &models.TrainingRecord{EmployeeID: e.ID, CourseID: c.ID, CompletedOn: models.NewDate(2024, time.June, 1), ExpiresOn: &expires, Source: models.SourceManual}
	err := NewTrainingRepository(testPool).Create(ctx, rec)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestTrainingRecordedOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainingRepository(testPool)
	c := seedCourse(t, unique("First Aid"), 0)
	e := seedEmployee(t, nil)

	rec := &models.TrainingRecord{EmployeeID: e.ID, CourseID: c.ID, CompletedOn: models.NewDate(2024, time.March, 1), Source: models.SourceManual}
	require.NoError(t, repo.Create(ctx, rec))

	dup := &models.TrainingRecord{EmployeeID: e.ID, CourseID: c.ID, CompletedOn: models.NewDate(2024, time.March, 1), Source: models.SourceManual}
	assert.ErrorIs(t, repo.Create(ctx, dup), models.ErrConflict)

	keys, err := repo.ExistingKeys(ctx, []uuid.UUID{e.ID})
	require.NoError(t, err)
	assert.True(t, keys[rec.Key()])

	// Deleting the employee cascades to their records.
	require.NoError(t, NewEmployeeRepository(testPool).Delete(ctx, e.ID))
	_, err = repo.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApplyRowsSkipsRecordedCompletions(t *testing.T) {
	ctx := context.Background()
	imports := NewImportRepository(testPool)
	c := seedCourse(t, unique("Hazard Communication"), 0)
	e := seedEmployee(t, nil)
	completed := models.NewDate(2024, time.January, 10)

	imp := &models.ExternalImport{Source: "vendor"}
	rows := []models.ExternalTrainingRow{
		{LineNo: 1, EmployeeRef: e.EmployeeNumber, CourseName: c.Name, CompletedOn: completed, Status: models.RowPending},
		{LineNo: 2, EmployeeRef: e.EmployeeNumber, CourseName: c.Name, CompletedOn: completed, Status: models.RowPending},
	}
	require.NoError(t, imports.CreateWithRows(ctx, imp, rows))
	assert.Equal(t, 2, imp.RowCount)

	records := make([]models.TrainingRecord, len(rows))
	for i := range rows {
		rowID := rows[i].ID
		records[i] = models.TrainingRecord{EmployeeID: e.ID, CourseID: c.ID, CompletedOn: completed, ImportRowID: &rowID}
	}
	inserted, err := imports.ApplyRows(ctx, records, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	applied, err := imports.ListRows(ctx, imp.ID, models.RowApplied)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
	dups, err := imports.ListRows(ctx, imp.ID, models.RowDuplicate)
	require.NoError(t, err)
	require.Len(t, dups, 1)
	assert.Equal(t, "completion already recorded", dups[0].Note)

	got, err := imports.GetByID(ctx, imp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counts[models.RowApplied])
}

func TestMergeCourses(t *testing.T) {
	ctx := context.Background()
	courses := NewCourseRepository(testPool)
	training := NewTrainingRepository(testPool)

	target := seedCourse(t, unique("Forklift Safety"), 12)
	source := seedCourse(t, unique("Forklift Training"), 12)
	e := seedEmployee(t, nil)

	same := models.NewDate(2023, time.June, 1)
	require.NoError(t, training.Create(ctx, &models.TrainingRecord{EmployeeID: e.ID, CourseID: target.ID, CompletedOn: same, Source: models.SourceManual}))
	require.NoError(t, training.Create(ctx, &models.TrainingRecord{EmployeeID: e.ID, CourseID: source.ID, CompletedOn: same, Source: models.SourceManual}))
	require.NoError(t, training.Create(ctx, &models.TrainingRecord{EmployeeID: e.ID, CourseID: source.ID, CompletedOn: models.NewDate(2024, time.June, 1), Source: models.SourceManual}))

	normalized := unique("forklift training")
	res, err := courses.Merge(ctx, target.ID, []uuid.UUID{source.ID}, []models.CourseAlias{{Alias: source.Name, Normalized: normalized}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.RecordsDropped)
	assert.EqualValues(t, 1, res.RecordsMoved)
	assert.EqualValues(t, 1, res.AliasesAdded)

	_, err = courses.GetByID(ctx, source.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	records, err := training.ListByCourse(ctx, target.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	aliases, err := courses.ListAliases(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, aliases, 1)
	assert.Equal(t, normalized, aliases[0].Normalized)

	_, err = courses.Merge(ctx, target.ID, []uuid.UUID{uuid.New()}, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

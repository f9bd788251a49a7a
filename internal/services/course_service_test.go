package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training_tracker/internal/models"
	"training_tracker/internal/storetest"
)

func TestCourseCreateAndUpdate(t *testing.T) {
	db := storetest.New()
	svc := NewCourseService(storetest.Courses{DB: db})
	ctx := context.Background()

	code, months := " fls-1 ", 24
	c, err := svc.Create(ctx, CreateCourseRequest{Code: &code, Name: " Forklift Safety ", RecertMonths: &months})
	require.NoError(t, err)
	assert.Equal(t, "FLS-1", *c.Code)
	assert.Equal(t, "Forklift Safety", c.Name)
	assert.True(t, c.Active)

	zero := 0
	c, err = svc.Update(ctx, c.ID, UpdateCourseRequest{RecertMonths: &zero})
	require.NoError(t, err)
	assert.Nil(t, c.RecertMonths)

	blank := "  "
	_, err = svc.Update(ctx, c.ID, UpdateCourseRequest{Name: &blank})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Create(ctx, CreateCourseRequest{Name: "x", RecertMonths: &zero})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	assert.EqualError(t, svc.Delete(ctx, uuid.New()), "course not found")
}

func TestCourseAliases(t *testing.T) {
	db := storetest.New()
	svc := NewCourseService(storetest.Courses{DB: db})
	ctx := context.Background()
	cpr := db.AddCourse("CPR", "", 0)
	aed := db.AddCourse("AED", "", 0)

	a, err := svc.AddAlias(ctx, cpr.ID, "Heart-Saver Course")
	require.NoError(t, err)
	assert.Equal(t, "heart saver", a.Normalized)

	_, err = svc.AddAlias(ctx, aed.ID, "heart saver training")
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = svc.AddAlias(ctx, cpr.ID, "Training Course")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.AddAlias(ctx, uuid.New(), "anything")
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := svc.Aliases(ctx, cpr.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteAlias(ctx, a.ID))
	assert.ErrorIs(t, svc.DeleteAlias(ctx, a.ID), models.ErrNotFound)
}

func TestCourseDuplicates(t *testing.T) {
	db := storetest.New()
	svc := NewCourseService(storetest.Courses{DB: db})
	db.AddCourse("Forklift Operator", "", 0)
	db.AddCourse("Forklift Operator Training", "", 0)
	db.AddCourse("Hazard Communication", "", 0)

	groups, err := svc.FindDuplicates(context.Background(), 0.85)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Courses, 2)

	_, err = svc.FindDuplicates(context.Background(), 1.5)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestCourseMerge(t *testing.T) {
	db := storetest.New()
	svc := NewCourseService(storetest.Courses{DB: db})
	ctx := context.Background()

	target := db.AddCourse("Forklift Operator", "", 12)
	same := db.AddCourse("Forklift Operator Training", "FO-2", 0)
	other := db.AddCourse("Fork Lift Ops", "", 0)
	emp := db.AddEmployee("1", "A", "B", nil)
	db.AddRecord(emp.ID, same.ID, date(2024, 1, 1), nil)

	_, err := svc.Merge(ctx, target.ID, []uuid.UUID{target.ID})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Merge(ctx, target.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Merge(ctx, target.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, models.ErrNotFound)

	res, err := svc.Merge(ctx, target.ID, []uuid.UUID{same.ID, other.ID, same.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{same.ID, other.ID}, db.Merged)
	assert.EqualValues(t, 1, res.RecordsMoved)

	var aliases []string
	for _, a := range db.MergeAliases {
		aliases = append(aliases, a.Alias)
	}
	assert.Equal(t, []string{"FO-2", "Fork Lift Ops"}, aliases, "a source named like the target adds no alias")
	assert.NotContains(t, db.Courses, same.ID)
}

package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"training_tracker/internal/models"
)

type CourseRepository struct {
	db Queryer
}

func NewCourseRepository(db Queryer) *CourseRepository {
	return &CourseRepository{db: db}
}

const (
	courseColumns         = `id, code, name, recert_months, active, created_at`
	prefixedCourseColumns = `c.id, c.code, c.name, c.recert_months, c.active, c.created_at`
)

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.RecertMonths, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	c.Prepare()

	query := `
		INSERT INTO courses (id, code, name, recert_months, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, c.ID, c.Code, c.Name, c.RecertMonths, c.Active).Scan(&c.CreatedAt)
	return translateError(err)
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c, err := scanCourse(r.db.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (r *CourseRepository) List(ctx context.Context, activeOnly bool) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE ($1 = FALSE OR active) ORDER BY name`

	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	c.Prepare()

	query := `
		UPDATE courses SET code = $2, name = $3, recert_months = $4, active = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, c.ID, c.Code, c.Name, c.RecertMonths, c.Active)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanAlias(row pgx.Row) (*models.CourseAlias, error) {
	var a models.CourseAlias
	if err := row.Scan(&a.ID, &a.CourseID, &a.Alias, &a.Normalized, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

const aliasColumns = `id, course_id, alias, normalized, created_at`

func (r *CourseRepository) CreateAlias(ctx context.Context, a *models.CourseAlias) error {
	a.Prepare()

	query := `
		INSERT INTO course_aliases (id, course_id, alias, normalized)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, a.ID, a.CourseID, a.Alias, a.Normalized).Scan(&a.CreatedAt)
	return translateError(err)
}

// ListAliases returns the aliases of one course, or of all courses when
// courseID is uuid.Nil.
func (r *CourseRepository) ListAliases(ctx context.Context, courseID uuid.UUID) ([]models.CourseAlias, error) {
	query := `
		SELECT ` + aliasColumns + ` FROM course_aliases
		WHERE ($1::uuid IS NULL OR course_id = $1)
		ORDER BY alias
	`
	var arg any
	if courseID != uuid.Nil {
		arg = courseID
	}
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aliases := []models.CourseAlias{}
	for rows.Next() {
		a, err := scanAlias(rows)
		if err != nil {
			return nil, err
		}
		aliases = append(aliases, *a)
	}
	return aliases, rows.Err()
}

func (r *CourseRepository) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM course_aliases WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MergeResult reports what a course merge moved onto the target.
type MergeResult struct {
	TargetID         uuid.UUID   `json:"target_id"`
	MergedIDs        []uuid.UUID `json:"merged_ids"`
	RecordsMoved     int64       `json:"records_moved"`
	RecordsDropped   int64       `json:"records_dropped"`
	RequirementsMove int64       `json:"requirements_moved"`
	AliasesAdded     int64       `json:"aliases_added"`
}

// Merge folds the source courses into target in one transaction. Training
// records that would duplicate an existing target completion are dropped.
// aliases are recorded for the target; ones whose normalized text already
// exists are skipped.
func (r *CourseRepository) Merge(ctx context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID, aliases []models.CourseAlias) (*MergeResult, error) {
	res := &MergeResult{TargetID: targetID, MergedIDs: sourceIDs}

	err := inTx(ctx, r.db, func(q Queryer) error {
		var found int
		if err := q.QueryRow(ctx, `SELECT count(*) FROM courses WHERE id = ANY($1)`, append([]uuid.UUID{targetID}, sourceIDs...)).Scan(&found); err != nil {
			return err
		}
		if found != len(sourceIDs)+1 {
			return fmt.Errorf("%w: course to merge", models.ErrNotFound)
		}

		// Completions already present on the target win.
		tag, err := q.Exec(ctx, `
			DELETE FROM training_records s
			WHERE s.course_id = ANY($2)
			AND (
				EXISTS (
					SELECT 1 FROM training_records t
					WHERE t.course_id = $1 AND t.employee_id = s.employee_id AND t.completed_on = s.completed_on
				)
				OR EXISTS (
					SELECT 1 FROM training_records o
					WHERE o.course_id = ANY($2) AND o.employee_id = s.employee_id
					AND o.completed_on = s.completed_on AND o.id < s.id
				)
			)
		`, targetID, sourceIDs)
		if err != nil {
			return err
		}
		res.RecordsDropped = tag.RowsAffected()

		tag, err = q.Exec(ctx, `UPDATE training_records SET course_id = $1 WHERE course_id = ANY($2)`, targetID, sourceIDs)
		if err != nil {
			return err
		}
		res.RecordsMoved = tag.RowsAffected()

		tag, err = q.Exec(ctx, `
			INSERT INTO position_courses (position_id, course_id)
			SELECT DISTINCT position_id, $1::uuid FROM position_courses WHERE course_id = ANY($2)
			ON CONFLICT DO NOTHING
		`, targetID, sourceIDs)
		if err != nil {
			return err
		}
		res.RequirementsMove = tag.RowsAffected()

		statements := []string{
			`UPDATE course_aliases SET course_id = $1 WHERE course_id = ANY($2)`,
			`UPDATE comments SET course_id = $1 WHERE course_id = ANY($2)`,
			`UPDATE external_training_rows SET matched_course_id = $1 WHERE matched_course_id = ANY($2)`,
		}
		for _, stmt := range statements {
			if _, err := q.Exec(ctx, stmt, targetID, sourceIDs); err != nil {
				return err
			}
		}

		for i := range aliases {
			a := &aliases[i]
			a.CourseID = targetID
			a.Prepare()
			tag, err := q.Exec(ctx, `
				INSERT INTO course_aliases (id, course_id, alias, normalized)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (normalized) DO NOTHING
			`, a.ID, a.CourseID, a.Alias, a.Normalized)
			if err != nil {
				return err
			}
			res.AliasesAdded += tag.RowsAffected()
		}

		_, err = q.Exec(ctx, `DELETE FROM courses WHERE id = ANY($1)`, sourceIDs)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"training_tracker/internal/models"
)

type TrainingRepository struct {
	db Queryer
}

func NewTrainingRepository(db Queryer) *TrainingRepository {
	return &TrainingRepository{db: db}
}

const trainingColumns = `id, employee_id, course_id, completed_on, expires_on, source, import_row_id, created_at`

func scanTraining(row pgx.Row) (*models.TrainingRecord, error) {
	var t models.TrainingRecord
	var completed, expires pgtype.Date
	err := row.Scan(
		&t.ID,
		&t.EmployeeID,
		&t.CourseID,
		&completed,
		&expires,
		&t.Source,
		&t.ImportRowID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CompletedOn = fromPgDate(completed)
	t.ExpiresOn = fromPgDatePtr(expires)
	return &t, nil
}

func collectTraining(rows pgx.Rows) ([]models.TrainingRecord, error) {
	defer rows.Close()

	records := []models.TrainingRecord{}
	for rows.Next() {
		t, err := scanTraining(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *t)
	}
	return records, rows.Err()
}

const insertTraining = `
	INSERT INTO training_records (id, employee_id, course_id, completed_on, expires_on, source, import_row_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (r *TrainingRepository) Create(ctx context.Context, t *models.TrainingRecord) error {
	t.Prepare()

	err := r.db.QueryRow(ctx, insertTraining+` RETURNING created_at`,
		t.ID,
		t.EmployeeID,
		t.CourseID,
		dateArg(t.CompletedOn),
		optDateArg(t.ExpiresOn),
		t.Source,
		t.ImportRowID,
	).Scan(&t.CreatedAt)
	return translateError(err)
}

func (r *TrainingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRecord, error) {
	t, err := scanTraining(r.db.QueryRow(ctx, `SELECT `+trainingColumns+` FROM training_records WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return t, nil
}

func (r *TrainingRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]models.TrainingRecord, error) {
	query := `
		SELECT ` + trainingColumns + ` FROM training_records
		WHERE employee_id = $1
		ORDER BY completed_on DESC
	`
	rows, err := r.db.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	return collectTraining(rows)
}

func (r *TrainingRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]models.TrainingRecord, error) {
	query := `
		SELECT ` + trainingColumns + ` FROM training_records
		WHERE course_id = $1
		ORDER BY completed_on DESC
	`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	return collectTraining(rows)
}

func (r *TrainingRepository) ListForEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]models.TrainingRecord, error) {
	if len(employeeIDs) == 0 {
		return []models.TrainingRecord{}, nil
	}
	query := `
		SELECT ` + trainingColumns + ` FROM training_records
		WHERE employee_id = ANY($1)
		ORDER BY employee_id, completed_on DESC
	`
	rows, err := r.db.Query(ctx, query, employeeIDs)
	if err != nil {
		return nil, err
	}
	return collectTraining(rows)
}

// ExistingKeys returns the completions already recorded for the employees.
func (r *TrainingRepository) ExistingKeys(ctx context.Context, employeeIDs []uuid.UUID) (map[models.TrainingKey]bool, error) {
	keys := make(map[models.TrainingKey]bool)
	if len(employeeIDs) == 0 {
		return keys, nil
	}
	query := `SELECT employee_id, course_id, completed_on FROM training_records WHERE employee_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k models.TrainingKey
		var completed pgtype.Date
		if err := rows.Scan(&k.EmployeeID, &k.CourseID, &completed); err != nil {
			return nil, err
		}
		k.CompletedOn = fromPgDate(completed)
		keys[k] = true
	}
	return keys, rows.Err()
}

func (r *TrainingRepository) Update(ctx context.Context, t *models.TrainingRecord) error {
	query := `
		UPDATE training_records SET course_id = $2, completed_on = $3, expires_on = $4
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, t.ID, t.CourseID, dateArg(t.CompletedOn), optDateArg(t.ExpiresOn))
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *TrainingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM training_records WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"training_tracker/internal/models"
)

type ImportRepository struct {
	db Queryer
}

func NewImportRepository(db Queryer) *ImportRepository {
	return &ImportRepository{db: db}
}

const rowColumns = `id, import_id, line_no, employee_ref, employee_name, course_ref, course_name,
	completed_on, expires_on, status, matched_employee_id, matched_course_id, match_method, match_score, note`

func scanRow(row pgx.Row) (*models.ExternalTrainingRow, error) {
	var r models.ExternalTrainingRow
	var completed, expires pgtype.Date
	err := row.Scan(
		&r.ID,
		&r.ImportID,
		&r.LineNo,
		&r.EmployeeRef,
		&r.EmployeeName,
		&r.CourseRef,
		&r.CourseName,
		&completed,
		&expires,
		&r.Status,
		&r.MatchedEmployeeID,
		&r.MatchedCourseID,
		&r.MatchMethod,
		&r.MatchScore,
		&r.Note,
	)
	if err != nil {
		return nil, err
	}
	r.CompletedOn = fromPgDate(completed)
	r.ExpiresOn = fromPgDatePtr(expires)
	return &r, nil
}

// CreateWithRows stores a batch and its rows atomically.
func (r *ImportRepository) CreateWithRows(ctx context.Context, imp *models.ExternalImport, rows []models.ExternalTrainingRow) error {
	imp.Prepare()
	imp.RowCount = len(rows)

	return translateError(inTx(ctx, r.db, func(q Queryer) error {
		_, err := q.Exec(ctx,
			`INSERT INTO external_imports (id, source, imported_at, row_count) VALUES ($1, $2, $3, $4)`,
			imp.ID, imp.Source, imp.ImportedAt, imp.RowCount,
		)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i := range rows {
			row := &rows[i]
			row.ImportID = imp.ID
			row.Prepare()
			batch.Queue(`
				INSERT INTO external_training_rows
					(id, import_id, line_no, employee_ref, employee_name, course_ref, course_name, completed_on, expires_on, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, row.ID, row.ImportID, row.LineNo, row.EmployeeRef, row.EmployeeName,
				row.CourseRef, row.CourseName, dateArg(row.CompletedOn), optDateArg(row.ExpiresOn), row.Status)
		}
		return sendBatch(ctx, q, batch)
	}))
}

// batchSender is implemented by *pgxpool.Pool and pgx.Tx.
type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func sendBatch(ctx context.Context, q Queryer, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	s, ok := q.(batchSender)
	if !ok {
		for _, qq := range b.QueuedQueries {
			if _, err := q.Exec(ctx, qq.SQL, qq.Arguments...); err != nil {
				return err
			}
		}
		return nil
	}
	return s.SendBatch(ctx, b).Close()
}

const importColumns = `i.id, i.source, i.imported_at, i.row_count`

func (r *ImportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExternalImport, error) {
	var imp models.ExternalImport
	err := r.db.QueryRow(ctx, `SELECT `+importColumns+` FROM external_imports i WHERE i.id = $1`, id).
		Scan(&imp.ID, &imp.Source, &imp.ImportedAt, &imp.RowCount)
	if err != nil {
		return nil, translateError(err)
	}

	counts, err := r.statusCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	imp.Counts = counts
	return &imp, nil
}

func (r *ImportRepository) statusCounts(ctx context.Context, importID uuid.UUID) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, count(*) FROM external_training_rows WHERE import_id = $1 GROUP BY status`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *ImportRepository) List(ctx context.Context) ([]models.ExternalImport, error) {
	rows, err := r.db.Query(ctx, `SELECT `+importColumns+` FROM external_imports i ORDER BY i.imported_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imports := []models.ExternalImport{}
	for rows.Next() {
		var imp models.ExternalImport
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.ImportedAt, &imp.RowCount); err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

func (r *ImportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM external_imports WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListRows returns the rows of a batch in line order, optionally narrowed to
// one status.
func (r *ImportRepository) ListRows(ctx context.Context, importID uuid.UUID, status string) ([]models.ExternalTrainingRow, error) {
	query := `
		SELECT ` + rowColumns + ` FROM external_training_rows
		WHERE import_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY line_no
	`
	rows, err := r.db.Query(ctx, query, importID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ExternalTrainingRow{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

func (r *ImportRepository) GetRow(ctx context.Context, importID, rowID uuid.UUID) (*models.ExternalTrainingRow, error) {
	query := `SELECT ` + rowColumns + ` FROM external_training_rows WHERE import_id = $1 AND id = $2`
	row, err := scanRow(r.db.QueryRow(ctx, query, importID, rowID))
	if err != nil {
		return nil, translateError(err)
	}
	return row, nil
}

const updateRowMatch = `
	UPDATE external_training_rows SET
		status = $2, matched_employee_id = $3, matched_course_id = $4,
		match_method = $5, match_score = $6, note = $7
	WHERE id = $1
`

func queueRowMatch(b *pgx.Batch, row *models.ExternalTrainingRow) {
	b.Queue(updateRowMatch, row.ID, row.Status, row.MatchedEmployeeID, row.MatchedCourseID,
		row.MatchMethod, row.MatchScore, row.Note)
}

// SaveMatches persists reconciliation results for many rows at once.
func (r *ImportRepository) SaveMatches(ctx context.Context, rows []models.ExternalTrainingRow) error {
	return translateError(inTx(ctx, r.db, func(q Queryer) error {
		batch := &pgx.Batch{}
		for i := range rows {
			queueRowMatch(batch, &rows[i])
		}
		return sendBatch(ctx, q, batch)
	}))
}

// ResolveRow stores a manual resolution and, when alias is set, remembers
// the row's course title for later imports.
func (r *ImportRepository) ResolveRow(ctx context.Context, row *models.ExternalTrainingRow, alias *models.CourseAlias) error {
	return translateError(inTx(ctx, r.db, func(q Queryer) error {
		tag, err := q.Exec(ctx, updateRowMatch, row.ID, row.Status, row.MatchedEmployeeID, row.MatchedCourseID,
			row.MatchMethod, row.MatchScore, row.Note)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		if alias == nil {
			return nil
		}
		return NewCourseRepository(q).CreateAlias(ctx, alias)
	}))
}

// ApplyRows inserts the training records and marks their rows applied in one
// transaction. Records whose completion already exists are skipped and their
// rows marked duplicate. stale rows lost their employee or course since
// reconciliation; their new status is saved in the same transaction. It
// returns the number of records inserted.
func (r *ImportRepository) ApplyRows(ctx context.Context, records []models.TrainingRecord, stale []models.ExternalTrainingRow) (int, error) {
	inserted := 0
	err := inTx(ctx, r.db, func(q Queryer) error {
		inserted = 0
		for i := range stale {
			row := &stale[i]
			if _, err := q.Exec(ctx, updateRowMatch, row.ID, row.Status, row.MatchedEmployeeID, row.MatchedCourseID,
				row.MatchMethod, row.MatchScore, row.Note); err != nil {
				return err
			}
		}
		for i := range records {
			rec := &records[i]
			if rec.ImportRowID == nil {
				return fmt.Errorf("%w: imported record without source row", models.ErrInvalidInput)
			}
			rec.Source = models.SourceImport
			rec.Prepare()

			tag, err := q.Exec(ctx, insertTraining+` ON CONFLICT (employee_id, course_id, completed_on) DO NOTHING`,
				rec.ID, rec.EmployeeID, rec.CourseID, dateArg(rec.CompletedOn), optDateArg(rec.ExpiresOn),
				rec.Source, rec.ImportRowID)
			if err != nil {
				return err
			}

			status, note := models.RowApplied, ""
			if tag.RowsAffected() == 0 {
				status, note = models.RowDuplicate, "completion already recorded"
			} else {
				inserted++
			}
			if _, err := q.Exec(ctx,
				`UPDATE external_training_rows SET status = $2, note = $3 WHERE id = $1`,
				*rec.ImportRowID, status, note,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, translateError(err)
	}
	return inserted, nil
}

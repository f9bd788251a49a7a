package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"training_tracker/internal/models"
)

type CommentRepository struct {
	db Queryer
}

func NewCommentRepository(db Queryer) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, employee_id, course_id, row_id, author, body, resolved, created_at`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.EmployeeID, &c.CourseID, &c.RowID, &c.Author, &c.Body, &c.Resolved, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	c.Prepare()

	query := `
		INSERT INTO comments (id, employee_id, course_id, row_id, author, body, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, c.ID, c.EmployeeID, c.CourseID, c.RowID, c.Author, c.Body, c.Resolved).
		Scan(&c.CreatedAt)
	return translateError(err)
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (r *CommentRepository) List(ctx context.Context, f models.CommentFilter) ([]models.Comment, error) {
	query := `
		SELECT ` + commentColumns + ` FROM comments
		WHERE ($1::uuid IS NULL OR employee_id = $1)
		AND ($2::uuid IS NULL OR course_id = $2)
		AND ($3::uuid IS NULL OR row_id = $3)
		AND ($4::boolean IS NULL OR resolved = $4)
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, f.EmployeeID, f.CourseID, f.RowID, f.Resolved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, c *models.Comment) error {
	tag, err := r.db.Exec(ctx, `UPDATE comments SET body = $2, resolved = $3 WHERE id = $1`, c.ID, c.Body, c.Resolved)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

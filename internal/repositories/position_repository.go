package repositories

import (
	"context"

	"github.com/google/uuid"

	"training_tracker/internal/models"
)

type PositionRepository struct {
	db Queryer
}

func NewPositionRepository(db Queryer) *PositionRepository {
	return &PositionRepository{db: db}
}

const positionColumns = `id, name, description, created_at`

func (r *PositionRepository) Create(ctx context.Context, p *models.Position) error {
	p.Prepare()

	query := `
		INSERT INTO positions (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, p.ID, p.Name, p.Description).Scan(&p.CreatedAt)
	return translateError(err)
}

func (r *PositionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`

	var p models.Position
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

func (r *PositionRepository) List(ctx context.Context) ([]models.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *PositionRepository) Update(ctx context.Context, p *models.Position) error {
	p.Prepare()

	query := `UPDATE positions SET name = $2, description = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Description)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PositionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PositionRepository) RequiredCourses(ctx context.Context, positionID uuid.UUID) ([]models.Course, error) {
	query := `
		SELECT ` + prefixedCourseColumns + `
		FROM position_courses pc
		JOIN courses c ON c.id = pc.course_id
		WHERE pc.position_id = $1
		ORDER BY c.name
	`
	rows, err := r.db.Query(ctx, query, positionID)
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

// RequirementsByPosition returns the required courses of every position.
func (r *PositionRepository) RequirementsByPosition(ctx context.Context) (map[uuid.UUID][]models.Course, error) {
	query := `
		SELECT pc.position_id, ` + prefixedCourseColumns + `
		FROM position_courses pc
		JOIN courses c ON c.id = pc.course_id
		ORDER BY pc.position_id, c.name
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.Course)
	for rows.Next() {
		var positionID uuid.UUID
		var c models.Course
		if err := rows.Scan(&positionID, &c.ID, &c.Code, &c.Name, &c.RecertMonths, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out[positionID] = append(out[positionID], c)
	}
	return out, rows.Err()
}

// AddRequirement is idempotent.
func (r *PositionRepository) AddRequirement(ctx context.Context, positionID, courseID uuid.UUID) error {
	query := `
		INSERT INTO position_courses (position_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, positionID, courseID)
	return translateError(err)
}

func (r *PositionRepository) RemoveRequirement(ctx context.Context, positionID, courseID uuid.UUID) error {
	query := `DELETE FROM position_courses WHERE position_id = $1 AND course_id = $2`
	tag, err := r.db.Exec(ctx, query, positionID, courseID)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

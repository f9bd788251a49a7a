package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"training_tracker/internal/models"
)

type EmployeeRepository struct {
	db Queryer
}

func NewEmployeeRepository(db Queryer) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, employee_number, first_name, last_name, email, position_id, hire_date, active, created_at`

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var e models.Employee
	var hire pgtype.Date
	err := row.Scan(
		&e.ID,
		&e.EmployeeNumber,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.PositionID,
		&hire,
		&e.Active,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.HireDate = fromPgDatePtr(hire)
	return &e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	e.Prepare()

	query := `
		INSERT INTO employees (id, employee_number, first_name, last_name, email, position_id, hire_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		e.ID,
		e.EmployeeNumber,
		e.FirstName,
		e.LastName,
		e.Email,
		e.PositionID,
		optDateArg(e.HireDate),
		e.Active,
	).Scan(&e.CreatedAt)
	return translateError(err)
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e, err := scanEmployee(r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *EmployeeRepository) GetByNumber(ctx context.Context, number string) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE employee_number = $1`
	e, err := scanEmployee(r.db.QueryRow(ctx, query, strings.TrimSpace(number)))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, error) {
	query := `
		SELECT ` + employeeColumns + ` FROM employees
		WHERE ($1::uuid IS NULL OR position_id = $1)
		AND ($2::boolean IS NULL OR active = $2)
		AND ($3 = '' OR employee_number ILIKE '%' || $3 || '%'
			OR (first_name || ' ' || last_name) ILIKE '%' || $3 || '%')
		ORDER BY last_name, first_name
	`
	rows, err := r.db.Query(ctx, query, f.PositionID, f.Active, strings.TrimSpace(f.Search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	e.Prepare()

	query := `
		UPDATE employees SET
			employee_number = $2, first_name = $3, last_name = $4, email = $5,
			position_id = $6, hire_date = $7, active = $8
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		e.ID,
		e.EmployeeNumber,
		e.FirstName,
		e.LastName,
		e.Email,
		e.PositionID,
		optDateArg(e.HireDate),
		e.Active,
	)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

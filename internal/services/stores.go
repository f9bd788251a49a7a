package services

import (
	"context"

	"github.com/google/uuid"

	"training_tracker/internal/models"
	"training_tracker/internal/repositories"
)

// The store interfaces list what each service needs from persistence. The
// pgx repositories implement them; tests use in-memory fakes.

type PositionStore interface {
	Create(ctx context.Context, p *models.Position) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Position, error)
	List(ctx context.Context) ([]models.Position, error)
	Update(ctx context.Context, p *models.Position) error
	Delete(ctx context.Context, id uuid.UUID) error
	RequiredCourses(ctx context.Context, positionID uuid.UUID) ([]models.Course, error)
	RequirementsByPosition(ctx context.Context) (map[uuid.UUID][]models.Course, error)
	AddRequirement(ctx context.Context, positionID, courseID uuid.UUID) error
	RemoveRequirement(ctx context.Context, positionID, courseID uuid.UUID) error
}

type CourseStore interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	List(ctx context.Context, activeOnly bool) ([]models.Course, error)
	Update(ctx context.Context, c *models.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateAlias(ctx context.Context, a *models.CourseAlias) error
	ListAliases(ctx context.Context, courseID uuid.UUID) ([]models.CourseAlias, error)
	DeleteAlias(ctx context.Context, id uuid.UUID) error
	Merge(ctx context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID, aliases []models.CourseAlias) (*repositories.MergeResult, error)
}

type EmployeeStore interface {
	Create(ctx context.Context, e *models.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	GetByNumber(ctx context.Context, number string) (*models.Employee, error)
	List(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, error)
	Update(ctx context.Context, e *models.Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TrainingStore interface {
	Create(ctx context.Context, t *models.TrainingRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrainingRecord, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]models.TrainingRecord, error)
	ListForEmployees(ctx context.Context, employeeIDs []uuid.UUID) ([]models.TrainingRecord, error)
	ExistingKeys(ctx context.Context, employeeIDs []uuid.UUID) (map[models.TrainingKey]bool, error)
	Update(ctx context.Context, t *models.TrainingRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ImportStore interface {
	CreateWithRows(ctx context.Context, imp *models.ExternalImport, rows []models.ExternalTrainingRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExternalImport, error)
	List(ctx context.Context) ([]models.ExternalImport, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListRows(ctx context.Context, importID uuid.UUID, status string) ([]models.ExternalTrainingRow, error)
	GetRow(ctx context.Context, importID, rowID uuid.UUID) (*models.ExternalTrainingRow, error)
	SaveMatches(ctx context.Context, rows []models.ExternalTrainingRow) error
	ResolveRow(ctx context.Context, row *models.ExternalTrainingRow, alias *models.CourseAlias) error
	ApplyRows(ctx context.Context, records []models.TrainingRecord, stale []models.ExternalTrainingRow) (int, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	List(ctx context.Context, f models.CommentFilter) ([]models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var (
	_ PositionStore = (*repositories.PositionRepository)(nil)
	_ CourseStore   = (*repositories.CourseRepository)(nil)
	_ EmployeeStore = (*repositories.EmployeeRepository)(nil)
	_ TrainingStore = (*repositories.TrainingRepository)(nil)
	_ ImportStore   = (*repositories.ImportRepository)(nil)
	_ CommentStore  = (*repositories.CommentRepository)(nil)
)

package services

import (
	"time"

	"training_tracker/internal/repositories"
)

// Stores is the persistence every service draws from.
type Stores struct {
	Positions PositionStore
	Courses   CourseStore
	Employees EmployeeStore
	Training  TrainingStore
	Imports   ImportStore
	Comments  CommentStore
}

// PostgresStores backs every store with the pgx repositories.
func PostgresStores(db repositories.Queryer) Stores {
	return Stores{
		Positions: repositories.NewPositionRepository(db),
		Courses:   repositories.NewCourseRepository(db),
		Employees: repositories.NewEmployeeRepository(db),
		Training:  repositories.NewTrainingRepository(db),
		Imports:   repositories.NewImportRepository(db),
		Comments:  repositories.NewCommentRepository(db),
	}
}

type Options struct {
	ExpiringWindowDays int
	MatchThreshold     float64
	AdminPasswordHash  string
	SessionSecret      string
	SessionTTL         time.Duration
}

type Services struct {
	Positions  *PositionService
	Courses    *CourseService
	Employees  *EmployeeService
	Training   *TrainingService
	Compliance *ComplianceService
	Imports    *ImportService
	Comments   *CommentService
	Auth       *AuthService
}

func New(st Stores, opts Options) *Services {
	return &Services{
		Positions:  NewPositionService(st.Positions, st.Courses),
		Courses:    NewCourseService(st.Courses),
		Employees:  NewEmployeeService(st.Employees, st.Positions),
		Training:   NewTrainingService(st.Training, st.Employees, st.Courses),
		Compliance: NewComplianceService(st.Employees, st.Positions, st.Courses, st.Training, opts.ExpiringWindowDays),
		Imports:    NewImportService(st.Imports, st.Employees, st.Courses, st.Training, opts.MatchThreshold),
		Comments:   NewCommentService(st.Comments),
		Auth:       NewAuthService(st.Employees, opts.AdminPasswordHash, opts.SessionSecret, opts.SessionTTL),
	}
}

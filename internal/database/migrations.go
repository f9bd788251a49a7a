package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrations run in order on every start; each one is idempotent.
var migrations = []string{
	createExtensions,
	createPositionsTable,
	createCoursesTable,
	createPositionCoursesTable,
	createEmployeesTable,
	createExternalImportsTable,
	createExternalTrainingRowsTable,
	createTrainingRecordsTable,
	createCourseAliasesTable,
	createCommentsTable,
	requireCommentTarget,
	requireExpiryAfterCompletion,
}

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, migration := range migrations {
		zap.L().Debug("running migration", zap.Int("step", i+1), zap.Int("total", len(migrations)))
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	zap.L().Info("all migrations completed", zap.Int("count", len(migrations)))
	return nil
}

const createExtensions = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;
`

const createPositionsTable = `
CREATE TABLE IF NOT EXISTS positions (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
`

const createCoursesTable = `
CREATE TABLE IF NOT EXISTS courses (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  code TEXT UNIQUE,
  name TEXT NOT NULL,
  recert_months INT CHECK (recert_months IS NULL OR recert_months > 0),
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(lower(name));
`

const createPositionCoursesTable = `
CREATE TABLE IF NOT EXISTS position_courses (
  position_id UUID NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
  course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  PRIMARY KEY (position_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_position_courses_course_id ON position_courses(course_id);
`

const createEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  employee_number TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT,
  position_id UUID REFERENCES positions(id) ON DELETE SET NULL,
  hire_date DATE,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_employees_position_id ON employees(position_id);
CREATE INDEX IF NOT EXISTS idx_employees_last_name ON employees(lower(last_name));
`

const createExternalImportsTable = `
CREATE TABLE IF NOT EXISTS external_imports (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  source TEXT NOT NULL,
  imported_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  row_count INT NOT NULL DEFAULT 0
);
`

const createExternalTrainingRowsTable = `
CREATE TABLE IF NOT EXISTS external_training_rows (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  import_id UUID NOT NULL REFERENCES external_imports(id) ON DELETE CASCADE,
  line_no INT NOT NULL,
  employee_ref TEXT NOT NULL DEFAULT '',
  employee_name TEXT NOT NULL DEFAULT '',
  course_ref TEXT NOT NULL DEFAULT '',
  course_name TEXT NOT NULL DEFAULT '',
  completed_on DATE NOT NULL,
  expires_on DATE,
  status TEXT NOT NULL DEFAULT 'pending',
  matched_employee_id UUID REFERENCES employees(id) ON DELETE SET NULL,
  matched_course_id UUID REFERENCES courses(id) ON DELETE SET NULL,
  match_method TEXT NOT NULL DEFAULT '',
  match_score REAL NOT NULL DEFAULT 0,
  note TEXT NOT NULL DEFAULT '',
  UNIQUE (import_id, line_no)
);

CREATE INDEX IF NOT EXISTS idx_external_training_rows_status ON external_training_rows(import_id, status);
`

const createTrainingRecordsTable = `
CREATE TABLE IF NOT EXISTS training_records (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
  course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  completed_on DATE NOT NULL,
  expires_on DATE,
  source TEXT NOT NULL DEFAULT 'manual',
  import_row_id UUID REFERENCES external_training_rows(id) ON DELETE SET NULL,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
  UNIQUE (employee_id, course_id, completed_on)
);

CREATE INDEX IF NOT EXISTS idx_training_records_course_id ON training_records(course_id);
CREATE INDEX IF NOT EXISTS idx_training_records_expires_on ON training_records(expires_on);
`

const createCourseAliasesTable = `
CREATE TABLE IF NOT EXISTS course_aliases (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  alias TEXT NOT NULL,
  normalized TEXT NOT NULL UNIQUE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_course_aliases_course_id ON course_aliases(course_id);
`

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  employee_id UUID REFERENCES employees(id) ON DELETE CASCADE,
  course_id UUID REFERENCES courses(id) ON DELETE CASCADE,
  row_id UUID REFERENCES external_training_rows(id) ON DELETE CASCADE,
  author TEXT NOT NULL,
  body TEXT NOT NULL,
  resolved BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_comments_employee_id ON comments(employee_id);
CREATE INDEX IF NOT EXISTS idx_comments_course_id ON comments(course_id);
CREATE INDEX IF NOT EXISTS idx_comments_row_id ON comments(row_id);
`

const requireCommentTarget = `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1 FROM information_schema.table_constraints
    WHERE constraint_name = 'comments_target_check'
    AND table_name = 'comments'
  ) THEN
    ALTER TABLE comments
    ADD CONSTRAINT comments_target_check
    CHECK (employee_id IS NOT NULL OR course_id IS NOT NULL OR row_id IS NOT NULL);
  END IF;
END$$;
`

const requireExpiryAfterCompletion = `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1 FROM information_schema.table_constraints
    WHERE constraint_name = 'training_records_expiry_check'
    AND table_name = 'training_records'
  ) THEN
    ALTER TABLE training_records
    ADD CONSTRAINT training_records_expiry_check
    CHECK (expires_on IS NULL OR expires_on >= completed_on);
  END IF;
END$$;
`

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"training_tracker/internal/compliance"
	"training_tracker/internal/matching"
	"training_tracker/internal/models"
)

// ImportService stores external training reports and reconciles their rows
// against internal employees and courses.
type ImportService struct {
	imports   ImportStore
	employees EmployeeStore
	courses   CourseStore
	records   TrainingStore
	opts      matching.Options
	today     func() models.Date
}

func NewImportService(imports ImportStore, employees EmployeeStore, courses CourseStore, records TrainingStore, threshold float64) *ImportService {
	return &ImportService{
		imports:   imports,
		employees: employees,
		courses:   courses,
		records:   records,
		opts:      matching.Options{Threshold: threshold},
		today:     models.Today,
	}
}

type ImportRowRequest struct {
	EmployeeRef  string `json:"employee_ref"`
	EmployeeName string `json:"employee_name"`
	CourseRef    string `json:"course_ref"`
	CourseName   string `json:"course_name"`
	CompletedOn  string `json:"completed_on"`
	ExpiresOn    string `json:"expires_on,omitempty"`
}

type CreateImportRequest struct {
	Source string             `json:"source" binding:"required"`
	Rows   []ImportRowRequest `json:"rows" binding:"required,min=1"`
}

type ResolveRowRequest struct {
	EmployeeID    *uuid.UUID `json:"employee_id,omitempty"`
	CourseID      *uuid.UUID `json:"course_id,omitempty"`
	RememberAlias bool       `json:"remember_alias,omitempty"`
}

type ReconcileResult struct {
	ImportID   uuid.UUID      `json:"import_id"`
	Reconciled int            `json:"reconciled"`
	Counts     map[string]int `json:"status_counts"`
}

type ApplyResult struct {
	ImportID   uuid.UUID `json:"import_id"`
	Applied    int       `json:"applied"`
	Duplicates int       `json:"duplicates"`
	Unmatched  int       `json:"unmatched"`
}

func joinLines(lines []int) string {
	s := make([]string, len(lines))
	for i, l := range lines {
		s[i] = strconv.Itoa(l)
	}
	return strings.Join(s, ", ")
}

// Create validates and stores a batch. Every row needs a completion date that
// is not in the future, an expiry (if any) not before the completion, and
// some way to identify both the employee and the course; offending line
// numbers (1-based) are reported together.
func (s *ImportService) Create(ctx context.Context, req CreateImportRequest) (*models.ExternalImport, error) {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return nil, invalid("source is required")
	}
	if len(req.Rows) == 0 {
		return nil, invalid("an import needs at least one row")
	}

	rows := make([]models.ExternalTrainingRow, 0, len(req.Rows))
	var badDates, future, backwards, badRefs []int
	today := s.today()
	for i, r := range req.Rows {
		line := i + 1
		row := models.ExternalTrainingRow{
			LineNo:       line,
			EmployeeRef:  strings.TrimSpace(r.EmployeeRef),
			EmployeeName: strings.TrimSpace(r.EmployeeName),
			CourseRef:    strings.TrimSpace(r.CourseRef),
			CourseName:   strings.TrimSpace(r.CourseName),
			Status:       models.RowPending,
		}
		completed, err := models.ParseDate(r.CompletedOn)
		if err != nil {
			badDates = append(badDates, line)
			continue
		}
		row.CompletedOn = completed
		if strings.TrimSpace(r.ExpiresOn) != "" {
			exp, err := models.ParseDate(r.ExpiresOn)
			if err != nil {
				badDates = append(badDates, line)
				continue
			}
			row.ExpiresOn = &exp
		}
		if row.CompletedOn.After(today) {
			future = append(future, line)
			continue
		}
		if row.ExpiresOn != nil && row.ExpiresOn.Before(row.CompletedOn) {
			backwards = append(backwards, line)
			continue
		}
		if (row.EmployeeRef == "" && row.EmployeeName == "") || (row.CourseRef == "" && row.CourseName == "") {
			badRefs = append(badRefs, line)
			continue
		}
		rows = append(rows, row)
	}

	var problems []string
	if len(badDates) > 0 {
		problems = append(problems, "missing or invalid dates on lines "+joinLines(badDates))
	}
	if len(future) > 0 {
		problems = append(problems, "completion date in the future on lines "+joinLines(future))
	}
	if len(backwards) > 0 {
		problems = append(problems, "expiry before completion on lines "+joinLines(backwards))
	}
	if len(badRefs) > 0 {
		problems = append(problems, "missing employee or course on lines "+joinLines(badRefs))
	}
	if len(problems) > 0 {
		return nil, invalid("%s", strings.Join(problems, "; "))
	}

	imp := &models.ExternalImport{Source: source}
	if err := s.imports.CreateWithRows(ctx, imp, rows); err != nil {
		return nil, fmt.Errorf("failed to store import: %w", err)
	}
	imp.Counts = map[string]int{models.RowPending: len(rows)}
	return imp, nil
}

func (s *ImportService) Get(ctx context.Context, id uuid.UUID) (*models.ExternalImport, error) {
	imp, err := s.imports.GetByID(ctx, id)
	if err != nil {
		return nil, named(err, "import")
	}
	return imp, nil
}

func (s *ImportService) List(ctx context.Context) ([]models.ExternalImport, error) {
	return s.imports.List(ctx)
}

func (s *ImportService) Delete(ctx context.Context, id uuid.UUID) error {
	return named(s.imports.Delete(ctx, id), "import")
}

func (s *ImportService) Rows(ctx context.Context, importID uuid.UUID, status string) ([]models.ExternalTrainingRow, error) {
	if status != "" && !models.ValidRowStatus(status) {
		return nil, invalid("unknown row status %q", status)
	}
	if _, err := s.imports.GetByID(ctx, importID); err != nil {
		return nil, named(err, "import")
	}
	return s.imports.ListRows(ctx, importID, status)
}

// A row's match method records how each side was resolved as
// "<employee method>/<course method>".
func splitMethod(m string) (emp, course string) {
	emp, course, _ = strings.Cut(m, "/")
	return emp, course
}

func joinMethod(emp, course string) string {
	if emp == "" && course == "" {
		return ""
	}
	return emp + "/" + course
}

func describe(side string, res matching.Result) string {
	switch res.Outcome {
	case matching.Unmatched:
		return side + " not found"
	case matching.Ambiguous:
		names := make([]string, len(res.Candidates))
		for i, c := range res.Candidates {
			names[i] = c.Name
		}
		return side + " ambiguous: " + strings.Join(names, " | ")
	}
	return ""
}

// matchSide keeps a manual resolution and otherwise runs the matcher.
func matchSide(manualID *uuid.UUID, method string, run func() matching.Result) matching.Result {
	if method == matching.MethodManual && manualID != nil {
		return matching.Result{Outcome: matching.Matched, ID: *manualID, Method: matching.MethodManual, Score: 1}
	}
	return run()
}

// applyMatch writes both sides' results onto the row. Duplicates are
// detected afterwards.
func applyMatch(row *models.ExternalTrainingRow, emp, course matching.Result) {
	row.MatchedEmployeeID, row.MatchedCourseID = nil, nil
	var empMethod, courseMethod string
	if emp.Outcome == matching.Matched {
		id := emp.ID
		row.MatchedEmployeeID = &id
		empMethod = emp.Method
	}
	if course.Outcome == matching.Matched {
		id := course.ID
		row.MatchedCourseID = &id
		courseMethod = course.Method
	}
	row.MatchMethod = joinMethod(empMethod, courseMethod)
	row.MatchScore = min(sideScore(emp), sideScore(course))

	var notes []string
	for _, n := range []string{describe("employee", emp), describe("course", course)} {
		if n != "" {
			notes = append(notes, n)
		}
	}
	row.Note = strings.Join(notes, "; ")

	switch {
	case emp.Outcome == matching.Ambiguous || course.Outcome == matching.Ambiguous:
		row.Status = models.RowAmbiguous
	case emp.Outcome == matching.Unmatched || course.Outcome == matching.Unmatched:
		row.Status = models.RowUnmatched
	default:
		row.Status = models.RowMatched
	}
}

func sideScore(r matching.Result) float64 {
	if r.Outcome == matching.Unmatched {
		return 0
	}
	return r.Score
}

func rowKey(row *models.ExternalTrainingRow) (models.TrainingKey, bool) {
	if row.MatchedEmployeeID == nil || row.MatchedCourseID == nil {
		return models.TrainingKey{}, false
	}
	return models.TrainingKey{EmployeeID: *row.MatchedEmployeeID, CourseID: *row.MatchedCourseID, CompletedOn: row.CompletedOn}, true
}

// Reconcile matches every row not yet applied. Manual resolutions survive a
// rerun. A matched row whose completion is already recorded, or repeats an
// earlier line of the same batch, becomes a duplicate.
func (s *ImportService) Reconcile(ctx context.Context, importID uuid.UUID) (*ReconcileResult, error) {
	if _, err := s.imports.GetByID(ctx, importID); err != nil {
		return nil, named(err, "import")
	}
	rows, err := s.imports.ListRows(ctx, importID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	employees, err := s.employees.List(ctx, models.EmployeeFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	courses, err := s.courses.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	aliases, err := s.courses.ListAliases(ctx, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	em := matching.NewEmployeeMatcher(employees)
	cm := matching.NewCourseMatcher(courses, aliases, s.opts)

	res := &ReconcileResult{ImportID: importID, Counts: map[string]int{}}
	var changed []*models.ExternalTrainingRow
	seenEmployees := map[uuid.UUID]bool{}
	var employeeIDs []uuid.UUID
	for i := range rows {
		row := &rows[i]
		if row.Status == models.RowApplied {
			continue
		}
		empMethod, courseMethod := splitMethod(row.MatchMethod)
		emp := matchSide(row.MatchedEmployeeID, empMethod, func() matching.Result {
			return em.Match(row.EmployeeRef, row.EmployeeName)
		})
		course := matchSide(row.MatchedCourseID, courseMethod, func() matching.Result {
			return cm.Match(row.CourseRef, row.CourseName)
		})
		applyMatch(row, emp, course)
		if row.MatchedEmployeeID != nil && !seenEmployees[*row.MatchedEmployeeID] {
			seenEmployees[*row.MatchedEmployeeID] = true
			employeeIDs = append(employeeIDs, *row.MatchedEmployeeID)
		}
		changed = append(changed, row)
	}

	existing, err := s.records.ExistingKeys(ctx, employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing completions: %w", err)
	}
	firstLine := map[models.TrainingKey]int{}
	for i := range rows {
		row := &rows[i]
		if row.Status != models.RowMatched {
			continue
		}
		key, ok := rowKey(row)
		if !ok {
			continue
		}
		switch line, dup := firstLine[key]; {
		case existing[key]:
			row.Status = models.RowDuplicate
			row.Note = "completion already recorded"
		case dup:
			row.Status = models.RowDuplicate
			row.Note = fmt.Sprintf("same completion as line %d", line)
		default:
			firstLine[key] = row.LineNo
		}
	}

	save := make([]models.ExternalTrainingRow, len(changed))
	for i, row := range changed {
		save[i] = *row
	}
	if err := s.imports.SaveMatches(ctx, save); err != nil {
		return nil, fmt.Errorf("failed to save matches: %w", err)
	}

	for _, row := range rows {
		res.Counts[row.Status]++
	}
	res.Reconciled = len(changed)
	zap.L().Info("import reconciled",
		zap.String("import_id", importID.String()),
		zap.Int("rows", res.Reconciled),
		zap.Any("counts", res.Counts),
	)
	return res, nil
}

// ResolveRow applies a manual employee and/or course choice to a row. With
// RememberAlias the row's course title becomes an alias of the chosen course.
func (s *ImportService) ResolveRow(ctx context.Context, importID, rowID uuid.UUID, req ResolveRowRequest) (*models.ExternalTrainingRow, error) {
	if req.EmployeeID == nil && req.CourseID == nil {
		return nil, invalid("employee_id or course_id is required")
	}
	if req.RememberAlias && req.CourseID == nil {
		return nil, invalid("remember_alias needs course_id")
	}
	row, err := s.imports.GetRow(ctx, importID, rowID)
	if err != nil {
		return nil, named(err, "row")
	}
	if row.Status == models.RowApplied {
		return nil, fmt.Errorf("%w: row %d is already applied", models.ErrConflict, row.LineNo)
	}

	empMethod, courseMethod := splitMethod(row.MatchMethod)
	if req.EmployeeID != nil {
		if _, err := s.employees.GetByID(ctx, *req.EmployeeID); err != nil {
			return nil, named(err, "employee")
		}
		row.MatchedEmployeeID = req.EmployeeID
		empMethod = matching.MethodManual
	}
	var alias *models.CourseAlias
	if req.CourseID != nil {
		if _, err := s.courses.GetByID(ctx, *req.CourseID); err != nil {
			return nil, named(err, "course")
		}
		row.MatchedCourseID = req.CourseID
		courseMethod = matching.MethodManual
		if req.RememberAlias {
			if alias, err = s.aliasFor(ctx, row, *req.CourseID); err != nil {
				return nil, err
			}
		}
	}
	if empMethod != matching.MethodManual && row.MatchedEmployeeID == nil {
		empMethod = ""
	}
	if courseMethod != matching.MethodManual && row.MatchedCourseID == nil {
		courseMethod = ""
	}
	row.MatchMethod = joinMethod(empMethod, courseMethod)

	if err := s.classifyResolved(ctx, row); err != nil {
		return nil, err
	}
	if err := s.imports.ResolveRow(ctx, row, alias); err != nil {
		return nil, named(err, "row")
	}
	return row, nil
}

// aliasFor builds the alias to remember for row, or nil when the title is
// already known for that course.
func (s *ImportService) aliasFor(ctx context.Context, row *models.ExternalTrainingRow, courseID uuid.UUID) (*models.CourseAlias, error) {
	title := row.CourseName
	if title == "" {
		title = row.CourseRef
	}
	key := matching.Normalize(title)
	if key == "" {
		return nil, invalid("row %d has no course title to remember", row.LineNo)
	}
	aliases, err := s.courses.ListAliases(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}
	for _, a := range aliases {
		if a.Normalized != key {
			continue
		}
		if a.CourseID == courseID {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %q is already an alias of another course", models.ErrConflict, title)
	}
	return &models.CourseAlias{CourseID: courseID, Alias: title, Normalized: key}, nil
}

// classifyResolved sets the status of a manually resolved row. A fully
// resolved row is matched unless its completion is already recorded or
// claimed by another row of the batch.
func (s *ImportService) classifyResolved(ctx context.Context, row *models.ExternalTrainingRow) error {
	key, ok := rowKey(row)
	if !ok {
		row.Status = models.RowUnmatched
		if row.MatchedEmployeeID == nil {
			row.Note = "employee still unresolved"
		} else {
			row.Note = "course still unresolved"
		}
		row.MatchScore = 0
		return nil
	}
	row.MatchScore = 1
	row.Status = models.RowMatched
	row.Note = ""

	existing, err := s.records.ExistingKeys(ctx, []uuid.UUID{key.EmployeeID})
	if err != nil {
		return err
	}
	if existing[key] {
		row.Status = models.RowDuplicate
		row.Note = "completion already recorded"
		return nil
	}
	others, err := s.imports.ListRows(ctx, row.ImportID, "")
	if err != nil {
		return err
	}
	for i := range others {
		o := &others[i]
		if o.ID == row.ID || (o.Status != models.RowMatched && o.Status != models.RowApplied) {
			continue
		}
		if k, ok := rowKey(o); ok && k == key {
			row.Status = models.RowDuplicate
			row.Note = fmt.Sprintf("same completion as line %d", o.LineNo)
			return nil
		}
	}
	return nil
}

// Apply turns every matched row into a training record in one transaction.
// Applied rows are left alone, so applying twice inserts nothing new.
func (s *ImportService) Apply(ctx context.Context, importID uuid.UUID) (*ApplyResult, error) {
	if _, err := s.imports.GetByID(ctx, importID); err != nil {
		return nil, named(err, "import")
	}
	rows, err := s.imports.ListRows(ctx, importID, models.RowMatched)
	if err != nil {
		return nil, fmt.Errorf("failed to load rows: %w", err)
	}
	res := &ApplyResult{ImportID: importID}
	if len(rows) == 0 {
		return res, nil
	}

	courses, err := s.courses.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}

	records := make([]models.TrainingRecord, 0, len(rows))
	var stale []models.ExternalTrainingRow
	for i := range rows {
		row := &rows[i]
		// Deleting an employee or course clears the match after reconcile.
		if note := staleMatch(row, byID); note != "" {
			row.Status = models.RowUnmatched
			row.MatchScore = 0
			row.Note = note
			stale = append(stale, *row)
			continue
		}
		rowID := row.ID
		rec := models.TrainingRecord{
			EmployeeID:  *row.MatchedEmployeeID,
			CourseID:    *row.MatchedCourseID,
			CompletedOn: row.CompletedOn,
			ExpiresOn:   row.ExpiresOn,
			Source:      models.SourceImport,
			ImportRowID: &rowID,
		}
		if rec.ExpiresOn == nil {
			rec.ExpiresOn = compliance.EffectiveExpiry(&rec, byID[rec.CourseID])
		}
		records = append(records, rec)
	}

	inserted, err := s.imports.ApplyRows(ctx, records, stale)
	if err != nil {
		return nil, fmt.Errorf("failed to apply import: %w", err)
	}
	res.Applied = inserted
	res.Duplicates = len(records) - inserted
	res.Unmatched = len(stale)
	zap.L().Info("import applied",
		zap.String("import_id", importID.String()),
		zap.Int("applied", res.Applied),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("unmatched", res.Unmatched),
	)
	return res, nil
}

func staleMatch(row *models.ExternalTrainingRow, courses map[uuid.UUID]*models.Course) string {
	switch {
	case row.MatchedEmployeeID == nil && row.MatchedCourseID == nil:
		return "employee and course no longer exist"
	case row.MatchedEmployeeID == nil:
		return "employee no longer exists"
	case row.MatchedCourseID == nil || courses[*row.MatchedCourseID] == nil:
		return "course no longer exists"
	}
	return ""
}

// Package storetest provides in-memory stores for service and handler tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"training_tracker/internal/models"
	"training_tracker/internal/repositories"
)

// DB holds the rows of every in-memory store.
type DB struct {
	Positions    map[uuid.UUID]models.Position
	Requirements map[uuid.UUID][]uuid.UUID
	Courses      map[uuid.UUID]models.Course
	Aliases      map[uuid.UUID]models.CourseAlias
	Employees    map[uuid.UUID]models.Employee
	Records      map[uuid.UUID]models.TrainingRecord
	Imports      map[uuid.UUID]models.ExternalImport
	Rows         map[uuid.UUID]models.ExternalTrainingRow
	Comments     map[uuid.UUID]models.Comment

	// Merged and MergeAliases record the arguments of the last merge.
	Merged       []uuid.UUID
	MergeAliases []models.CourseAlias
}

func New() *DB {
	return &DB{
		Positions:    map[uuid.UUID]models.Position{},
		Requirements: map[uuid.UUID][]uuid.UUID{},
		Courses:      map[uuid.UUID]models.Course{},
		Aliases:      map[uuid.UUID]models.CourseAlias{},
		Employees:    map[uuid.UUID]models.Employee{},
		Records:      map[uuid.UUID]models.TrainingRecord{},
		Imports:      map[uuid.UUID]models.ExternalImport{},
		Rows:         map[uuid.UUID]models.ExternalTrainingRow{},
		Comments:     map[uuid.UUID]models.Comment{},
	}
}

type (
	Positions struct{ DB *DB }
	Courses   struct{ DB *DB }
	Employees struct{ DB *DB }
	Training  struct{ DB *DB }
	Imports   struct{ DB *DB }
	Comments  struct{ DB *DB }
)

func (db *DB) AddPosition(name string) models.Position {
	p := models.Position{ID: uuid.New(), Name: name}
	db.Positions[p.ID] = p
	return p
}

func (db *DB) AddCourse(name, code string, recert int) models.Course {
	c := models.Course{ID: uuid.New(), Name: name, Active: true}
	if code != "" {
		c.Code = &code
	}
	if recert > 0 {
		c.RecertMonths = &recert
	}
	db.Courses[c.ID] = c
	return c
}

func (db *DB) AddEmployee(number, first, last string, positionID *uuid.UUID) models.Employee {
	e := models.Employee{ID: uuid.New(), EmployeeNumber: number, FirstName: first, LastName: last, PositionID: positionID, Active: true}
	db.Employees[e.ID] = e
	return e
}

func (db *DB) AddRecord(employeeID, courseID uuid.UUID, completed models.Date, expires *models.Date) models.TrainingRecord {
	r := models.TrainingRecord{ID: uuid.New(), EmployeeID: employeeID, CourseID: courseID, CompletedOn: completed, ExpiresOn: expires, Source: models.SourceManual}
	db.Records[r.ID] = r
	return r
}

func (db *DB) Require(positionID, courseID uuid.UUID) {
	db.Requirements[positionID] = append(db.Requirements[positionID], courseID)
}

// positions

func (s Positions) Create(_ context.Context, p *models.Position) error {
	p.Prepare()
	for _, o := range s.DB.Positions {
		if o.Name == p.Name {
			return models.ErrConflict
		}
	}
	p.CreatedAt = time.Now()
	s.DB.Positions[p.ID] = *p
	return nil
}

func (s Positions) GetByID(_ context.Context, id uuid.UUID) (*models.Position, error) {
	p, ok := s.DB.Positions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s Positions) List(context.Context) ([]models.Position, error) {
	out := []models.Position{}
	for _, p := range s.DB.Positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s Positions) Update(_ context.Context, p *models.Position) error {
	if _, ok := s.DB.Positions[p.ID]; !ok {
		return models.ErrNotFound
	}
	s.DB.Positions[p.ID] = *p
	return nil
}

func (s Positions) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Positions[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Positions, id)
	delete(s.DB.Requirements, id)
	return nil
}

func (s Positions) RequiredCourses(_ context.Context, positionID uuid.UUID) ([]models.Course, error) {
	out := []models.Course{}
	for _, id := range s.DB.Requirements[positionID] {
		out = append(out, s.DB.Courses[id])
	}
	return out, nil
}

func (s Positions) RequirementsByPosition(ctx context.Context) (map[uuid.UUID][]models.Course, error) {
	out := map[uuid.UUID][]models.Course{}
	for pid := range s.DB.Requirements {
		cs, _ := s.RequiredCourses(ctx, pid)
		out[pid] = cs
	}
	return out, nil
}

func (s Positions) AddRequirement(_ context.Context, positionID, courseID uuid.UUID) error {
	for _, id := range s.DB.Requirements[positionID] {
		if id == courseID {
			return nil
		}
	}
	s.DB.Require(positionID, courseID)
	return nil
}

func (s Positions) RemoveRequirement(_ context.Context, positionID, courseID uuid.UUID) error {
	ids := s.DB.Requirements[positionID]
	for i, id := range ids {
		if id == courseID {
			s.DB.Requirements[positionID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return models.ErrNotFound
}

// courses

func (s Courses) Create(_ context.Context, c *models.Course) error {
	c.Prepare()
	s.DB.Courses[c.ID] = *c
	return nil
}

func (s Courses) GetByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := s.DB.Courses[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s Courses) List(_ context.Context, activeOnly bool) ([]models.Course, error) {
	out := []models.Course{}
	for _, c := range s.DB.Courses {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s Courses) Update(_ context.Context, c *models.Course) error {
	if _, ok := s.DB.Courses[c.ID]; !ok {
		return models.ErrNotFound
	}
	c.Prepare()
	s.DB.Courses[c.ID] = *c
	return nil
}

func (s Courses) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Courses[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Courses, id)
	return nil
}

func (s Courses) CreateAlias(_ context.Context, a *models.CourseAlias) error {
	a.Prepare()
	for _, o := range s.DB.Aliases {
		if o.Normalized == a.Normalized {
			return models.ErrConflict
		}
	}
	s.DB.Aliases[a.ID] = *a
	return nil
}

func (s Courses) ListAliases(_ context.Context, courseID uuid.UUID) ([]models.CourseAlias, error) {
	out := []models.CourseAlias{}
	for _, a := range s.DB.Aliases {
		if courseID == uuid.Nil || a.CourseID == courseID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out, nil
}

func (s Courses) DeleteAlias(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Aliases[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Aliases, id)
	return nil
}

func (s Courses) Merge(_ context.Context, targetID uuid.UUID, sourceIDs []uuid.UUID, aliases []models.CourseAlias) (*repositories.MergeResult, error) {
	s.DB.Merged = sourceIDs
	s.DB.MergeAliases = aliases
	res := &repositories.MergeResult{TargetID: targetID, MergedIDs: sourceIDs}
	for _, id := range sourceIDs {
		for rid, r := range s.DB.Records {
			if r.CourseID == id {
				r.CourseID = targetID
				s.DB.Records[rid] = r
				res.RecordsMoved++
			}
		}
		delete(s.DB.Courses, id)
	}
	res.AliasesAdded = int64(len(aliases))
	return res, nil
}

// employees

func (s Employees) Create(_ context.Context, e *models.Employee) error {
	e.Prepare()
	for _, o := range s.DB.Employees {
		if o.EmployeeNumber == e.EmployeeNumber {
			return models.ErrConflict
		}
	}
	s.DB.Employees[e.ID] = *e
	return nil
}

func (s Employees) GetByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	e, ok := s.DB.Employees[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &e, nil
}

func (s Employees) GetByNumber(_ context.Context, number string) (*models.Employee, error) {
	for _, e := range s.DB.Employees {
		if e.EmployeeNumber == strings.TrimSpace(number) {
			return &e, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s Employees) List(_ context.Context, f models.EmployeeFilter) ([]models.Employee, error) {
	out := []models.Employee{}
	for _, e := range s.DB.Employees {
		if f.PositionID != nil && (e.PositionID == nil || *e.PositionID != *f.PositionID) {
			continue
		}
		if f.Active != nil && e.Active != *f.Active {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (s Employees) Update(_ context.Context, e *models.Employee) error {
	if _, ok := s.DB.Employees[e.ID]; !ok {
		return models.ErrNotFound
	}
	s.DB.Employees[e.ID] = *e
	return nil
}

func (s Employees) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Employees[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Employees, id)
	return nil
}

// training records

func (s Training) Create(_ context.Context, t *models.TrainingRecord) error {
	t.Prepare()
	for _, o := range s.DB.Records {
		if o.Key() == t.Key() {
			return models.ErrConflict
		}
	}
	s.DB.Records[t.ID] = *t
	return nil
}

func (s Training) GetByID(_ context.Context, id uuid.UUID) (*models.TrainingRecord, error) {
	t, ok := s.DB.Records[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s Training) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]models.TrainingRecord, error) {
	return s.ListForEmployees(ctx, []uuid.UUID{employeeID})
}

func (s Training) ListForEmployees(_ context.Context, employeeIDs []uuid.UUID) ([]models.TrainingRecord, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range employeeIDs {
		want[id] = true
	}
	out := []models.TrainingRecord{}
	for _, r := range s.DB.Records {
		if want[r.EmployeeID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s Training) ExistingKeys(ctx context.Context, employeeIDs []uuid.UUID) (map[models.TrainingKey]bool, error) {
	recs, _ := s.ListForEmployees(ctx, employeeIDs)
	keys := map[models.TrainingKey]bool{}
	for _, r := range recs {
		keys[r.Key()] = true
	}
	return keys, nil
}

func (s Training) Update(_ context.Context, t *models.TrainingRecord) error {
	if _, ok := s.DB.Records[t.ID]; !ok {
		return models.ErrNotFound
	}
	s.DB.Records[t.ID] = *t
	return nil
}

func (s Training) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Records[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Records, id)
	return nil
}

// imports

func (s Imports) CreateWithRows(_ context.Context, imp *models.ExternalImport, rows []models.ExternalTrainingRow) error {
	imp.Prepare()
	imp.RowCount = len(rows)
	s.DB.Imports[imp.ID] = *imp
	for i := range rows {
		rows[i].ImportID = imp.ID
		rows[i].Prepare()
		s.DB.Rows[rows[i].ID] = rows[i]
	}
	return nil
}

func (s Imports) GetByID(_ context.Context, id uuid.UUID) (*models.ExternalImport, error) {
	imp, ok := s.DB.Imports[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &imp, nil
}

func (s Imports) List(context.Context) ([]models.ExternalImport, error) {
	out := []models.ExternalImport{}
	for _, imp := range s.DB.Imports {
		out = append(out, imp)
	}
	return out, nil
}

func (s Imports) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Imports[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Imports, id)
	return nil
}

func (s Imports) ListRows(_ context.Context, importID uuid.UUID, status string) ([]models.ExternalTrainingRow, error) {
	out := []models.ExternalTrainingRow{}
	for _, r := range s.DB.Rows {
		if r.ImportID == importID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

func (s Imports) GetRow(_ context.Context, importID, rowID uuid.UUID) (*models.ExternalTrainingRow, error) {
	r, ok := s.DB.Rows[rowID]
	if !ok || r.ImportID != importID {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (s Imports) SaveMatches(_ context.Context, rows []models.ExternalTrainingRow) error {
	for _, r := range rows {
		s.DB.Rows[r.ID] = r
	}
	return nil
}

func (s Imports) ResolveRow(ctx context.Context, row *models.ExternalTrainingRow, alias *models.CourseAlias) error {
	if _, ok := s.DB.Rows[row.ID]; !ok {
		return models.ErrNotFound
	}
	s.DB.Rows[row.ID] = *row
	if alias != nil {
		return Courses{s.DB}.CreateAlias(ctx, alias)
	}
	return nil
}

func (s Imports) ApplyRows(ctx context.Context, records []models.TrainingRecord, stale []models.ExternalTrainingRow) (int, error) {
	for _, r := range stale {
		s.DB.Rows[r.ID] = r
	}
	inserted := 0
	for i := range records {
		rec := &records[i]
		row := s.DB.Rows[*rec.ImportRowID]
		if err := (Training{s.DB}).Create(ctx, rec); err != nil {
			row.Status, row.Note = models.RowDuplicate, "completion already recorded"
		} else {
			row.Status = models.RowApplied
			inserted++
		}
		s.DB.Rows[row.ID] = row
	}
	return inserted, nil
}

// comments

func (s Comments) Create(_ context.Context, c *models.Comment) error {
	c.Prepare()
	s.DB.Comments[c.ID] = *c
	return nil
}

func (s Comments) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	c, ok := s.DB.Comments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s Comments) List(_ context.Context, f models.CommentFilter) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range s.DB.Comments {
		if f.Resolved != nil && c.Resolved != *f.Resolved {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s Comments) Update(_ context.Context, c *models.Comment) error {
	if _, ok := s.DB.Comments[c.ID]; !ok {
		return models.ErrNotFound
	}
	s.DB.Comments[c.ID] = *c
	return nil
}

func (s Comments) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.DB.Comments[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.DB.Comments, id)
	return nil
}


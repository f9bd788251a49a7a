package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"training_tracker/internal/compliance"
	"training_tracker/internal/models"
)

// ComplianceService derives certification status from the stored records.
type ComplianceService struct {
	employees     EmployeeStore
	positions     PositionStore
	courses       CourseStore
	records       TrainingStore
	defaultWindow int
	today         func() models.Date
}

func NewComplianceService(employees EmployeeStore, positions PositionStore, courses CourseStore, records TrainingStore, defaultWindow int) *ComplianceService {
	return &ComplianceService{
		employees:     employees,
		positions:     positions,
		courses:       courses,
		records:       records,
		defaultWindow: defaultWindow,
		today:         models.Today,
	}
}

type EmployeeCompliance struct {
	Employee models.Employee    `json:"employee"`
	AsOf     models.Date        `json:"as_of"`
	Window   int                `json:"window_days"`
	Items    []compliance.Item  `json:"items"`
	Summary  compliance.Summary `json:"summary"`
}

type ReportFilter struct {
	Status     compliance.Status
	PositionID *uuid.UUID
	Window     *int
}

type ReportRow struct {
	EmployeeID     uuid.UUID  `json:"employee_id"`
	EmployeeNumber string     `json:"employee_number"`
	EmployeeName   string     `json:"employee_name"`
	PositionID     *uuid.UUID `json:"position_id,omitempty"`
	compliance.Item
}

type PositionSummary struct {
	PositionID         *uuid.UUID `json:"position_id,omitempty"`
	PositionName       string     `json:"position_name"`
	Employees          int        `json:"employees"`
	CompliantEmployees int        `json:"compliant_employees"`
	compliance.Summary
}

func (s *ComplianceService) window(w *int) (int, error) {
	if w == nil {
		return s.defaultWindow, nil
	}
	if *w < 0 {
		return 0, invalid("window must not be negative")
	}
	return *w, nil
}

func (s *ComplianceService) courseIndex(ctx context.Context) (map[uuid.UUID]models.Course, error) {
	courses, err := s.courses.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	idx := make(map[uuid.UUID]models.Course, len(courses))
	for _, c := range courses {
		idx[c.ID] = c
	}
	return idx, nil
}

func (s *ComplianceService) ForEmployee(ctx context.Context, employeeID uuid.UUID, window *int) (*EmployeeCompliance, error) {
	w, err := s.window(window)
	if err != nil {
		return nil, err
	}
	e, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, named(err, "employee")
	}
	var required []models.Course
	if e.PositionID != nil {
		if required, err = s.positions.RequiredCourses(ctx, *e.PositionID); err != nil {
			return nil, fmt.Errorf("failed to load required courses: %w", err)
		}
	}
	records, err := s.records.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load training records: %w", err)
	}
	courses, err := s.courseIndex(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	items := compliance.Evaluate(required, courses, records, today, w)
	return &EmployeeCompliance{
		Employee: *e,
		AsOf:     today,
		Window:   w,
		Items:    items,
		Summary:  compliance.Summarize(items),
	}, nil
}

type evaluated struct {
	employee models.Employee
	items    []compliance.Item
}

// evaluateAll evaluates every active employee, optionally limited to one
// position, in employee listing order.
func (s *ComplianceService) evaluateAll(ctx context.Context, positionID *uuid.UUID, w int) ([]evaluated, error) {
	active := true
	employees, err := s.employees.List(ctx, models.EmployeeFilter{PositionID: positionID, Active: &active})
	if err != nil {
		return nil, fmt.Errorf("failed to load employees: %w", err)
	}
	if len(employees) == 0 {
		return nil, nil
	}
	requirements, err := s.positions.RequirementsByPosition(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load requirements: %w", err)
	}
	courses, err := s.courseIndex(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	records, err := s.records.ListForEmployees(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load training records: %w", err)
	}
	byEmployee := make(map[uuid.UUID][]models.TrainingRecord, len(employees))
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	today := s.today()
	out := make([]evaluated, 0, len(employees))
	for _, e := range employees {
		var required []models.Course
		if e.PositionID != nil {
			required = requirements[*e.PositionID]
		}
		out = append(out, evaluated{
			employee: e,
			items:    compliance.Evaluate(required, courses, byEmployee[e.ID], today, w),
		})
	}
	return out, nil
}

// Report lists employee/course pairs across active employees, most urgent
// first.
func (s *ComplianceService) Report(ctx context.Context, f ReportFilter) ([]ReportRow, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("unknown status %q", f.Status)
	}
	w, err := s.window(f.Window)
	if err != nil {
		return nil, err
	}
	all, err := s.evaluateAll(ctx, f.PositionID, w)
	if err != nil {
		return nil, err
	}

	rows := []ReportRow{}
	for _, ev := range all {
		for _, it := range ev.items {
			if f.Status != "" && it.Status != f.Status {
				continue
			}
			rows = append(rows, ReportRow{
				EmployeeID:     ev.employee.ID,
				EmployeeNumber: ev.employee.EmployeeNumber,
				EmployeeName:   ev.employee.FullName(),
				PositionID:     ev.employee.PositionID,
				Item:           it,
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Status.Severity() < rows[j].Status.Severity()
	})
	return rows, nil
}

// Summary counts statuses per position. Employees without a position are
// grouped under an entry with no position id.
func (s *ComplianceService) Summary(ctx context.Context, window *int) ([]PositionSummary, error) {
	w, err := s.window(window)
	if err != nil {
		return nil, err
	}
	positions, err := s.positions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	all, err := s.evaluateAll(ctx, nil, w)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[uuid.UUID]*PositionSummary, len(positions))
	out := make([]*PositionSummary, 0, len(positions)+1)
	for _, p := range positions {
		id := p.ID
		ps := &PositionSummary{PositionID: &id, PositionName: p.Name}
		byPosition[p.ID] = ps
		out = append(out, ps)
	}
	var unassigned *PositionSummary

	for _, ev := range all {
		var ps *PositionSummary
		if ev.employee.PositionID != nil {
			ps = byPosition[*ev.employee.PositionID]
		}
		if ps == nil {
			if unassigned == nil {
				unassigned = &PositionSummary{PositionName: "unassigned"}
				out = append(out, unassigned)
			}
			ps = unassigned
		}
		sum := compliance.Summarize(ev.items)
		ps.Employees++
		if sum.Compliant {
			ps.CompliantEmployees++
		}
		ps.Expired += sum.Expired
		ps.ExpiringSoon += sum.ExpiringSoon
		ps.Valid += sum.Valid
		ps.NeverCompleted += sum.NeverCompleted
	}

	result := make([]PositionSummary, len(out))
	for i, ps := range out {
		ps.Compliant = ps.Employees == ps.CompliantEmployees
		result[i] = *ps
	}
	return result, nil
}

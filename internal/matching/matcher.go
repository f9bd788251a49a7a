package matching

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"training_tracker/internal/models"
)

type Outcome string

const (
	Matched   Outcome = "matched"
	Ambiguous Outcome = "ambiguous"
	Unmatched Outcome = "unmatched"
)

// Match methods, most to least trustworthy.
const (
	MethodCode   = "code"
	MethodAlias  = "alias"
	MethodName   = "name"
	MethodNumber = "number"
	MethodFuzzy  = "fuzzy"
	MethodManual = "manual"
)

const (
	DefaultThreshold = 0.75
	DefaultMargin    = 0.1
	maxCandidates    = 5
)

type Candidate struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score float64   `json:"score"`
}

type Result struct {
	Outcome    Outcome     `json:"outcome"`
	ID         uuid.UUID   `json:"id,omitempty"`
	Method     string      `json:"method,omitempty"`
	Score      float64     `json:"score"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

func matched(id uuid.UUID, method string, score float64) Result {
	return Result{Outcome: Matched, ID: id, Method: method, Score: score}
}

type Options struct {
	// Threshold is the minimum fuzzy score accepted as a match.
	Threshold float64
	// Margin is how far the best fuzzy candidate must lead the runner-up.
	Margin float64
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	return o
}

type courseEntry struct {
	id     uuid.UUID
	name   string
	active bool
	// every title the course is known by: its name and its aliases
	titles []string
}

// CourseMatcher resolves external course references. Build one per
// reconciliation run; it is read-only afterwards and safe for concurrent use.
type CourseMatcher struct {
	opts    Options
	byCode  map[string]uuid.UUID
	byAlias map[string]uuid.UUID
	byName  map[string][]uuid.UUID
	entries []*courseEntry
	index   map[uuid.UUID]*courseEntry
}

func NewCourseMatcher(courses []models.Course, aliases []models.CourseAlias, opts Options) *CourseMatcher {
	m := &CourseMatcher{
		opts:    opts.withDefaults(),
		byCode:  make(map[string]uuid.UUID),
		byAlias: make(map[string]uuid.UUID),
		byName:  make(map[string][]uuid.UUID),
		index:   make(map[uuid.UUID]*courseEntry, len(courses)),
	}
	for _, c := range courses {
		e := &courseEntry{id: c.ID, name: c.Name, active: c.Active, titles: []string{c.Name}}
		m.entries = append(m.entries, e)
		m.index[c.ID] = e
		if c.Code != nil && *c.Code != "" {
			m.byCode[strings.ToUpper(strings.TrimSpace(*c.Code))] = c.ID
		}
		if key := Normalize(c.Name); key != "" {
			m.byName[key] = append(m.byName[key], c.ID)
		}
	}
	for _, a := range aliases {
		e, ok := m.index[a.CourseID]
		if !ok {
			continue
		}
		key := a.Normalized
		if key == "" {
			key = Normalize(a.Alias)
		}
		if key != "" {
			m.byAlias[key] = a.CourseID
		}
		e.titles = append(e.titles, a.Alias)
	}
	return m
}

// Match resolves a course by external code first, then by alias, exact
// normalized name, and finally by fuzzy title similarity.
func (m *CourseMatcher) Match(ref, name string) Result {
	for _, code := range []string{ref, name} {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if id, ok := m.byCode[code]; ok {
			return matched(id, MethodCode, 1)
		}
	}

	key := Normalize(name)
	if key == "" {
		return Result{Outcome: Unmatched}
	}
	if id, ok := m.byAlias[key]; ok {
		return matched(id, MethodAlias, 1)
	}
	if ids := m.byName[key]; len(ids) == 1 {
		return matched(ids[0], MethodName, 1)
	} else if len(ids) > 1 {
		res := Result{Outcome: Ambiguous, Score: 1}
		for _, id := range ids {
			res.Candidates = append(res.Candidates, Candidate{ID: id, Name: m.index[id].name, Score: 1})
		}
		return res
	}

	return m.fuzzy(name)
}

func (m *CourseMatcher) fuzzy(name string) Result {
	var cands []Candidate
	for _, e := range m.entries {
		if !e.active {
			continue
		}
		best := 0.0
		for _, title := range e.titles {
			if s := Similarity(name, title); s > best {
				best = s
			}
		}
		if best > 0 {
			cands = append(cands, Candidate{ID: e.id, Name: e.name, Score: best})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Name < cands[j].Name
	})
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}

	if len(cands) == 0 || cands[0].Score < m.opts.Threshold {
		return Result{Outcome: Unmatched, Candidates: cands}
	}
	top := cands[0]
	if len(cands) > 1 && top.Score-cands[1].Score < m.opts.Margin {
		return Result{Outcome: Ambiguous, Score: top.Score, Candidates: cands}
	}
	return Result{Outcome: Matched, ID: top.ID, Method: MethodFuzzy, Score: top.Score, Candidates: cands[:1]}
}

// EmployeeMatcher resolves external employee references by number, then by
// full name.
type EmployeeMatcher struct {
	byNumber map[string][]uuid.UUID
	byName   map[string][]uuid.UUID
	names    map[uuid.UUID]string
}

func NewEmployeeMatcher(employees []models.Employee) *EmployeeMatcher {
	m := &EmployeeMatcher{
		byNumber: make(map[string][]uuid.UUID, len(employees)),
		byName:   make(map[string][]uuid.UUID, len(employees)),
		names:    make(map[uuid.UUID]string, len(employees)),
	}
	for _, e := range employees {
		m.names[e.ID] = e.FullName()
		if n := NormalizeNumber(e.EmployeeNumber); n != "" {
			m.byNumber[n] = append(m.byNumber[n], e.ID)
		}
		if key := NormalizeName(e.FirstName + " " + e.LastName); key != "" {
			m.byName[key] = append(m.byName[key], e.ID)
		}
	}
	return m
}

func (m *EmployeeMatcher) Match(ref, name string) Result {
	// "0123" and "123" are distinct numbers that normalize alike; such a
	// reference names no single employee.
	if n := NormalizeNumber(ref); n != "" {
		switch ids := m.byNumber[n]; len(ids) {
		case 0:
		case 1:
			return matched(ids[0], MethodNumber, 1)
		default:
			return m.ambiguous(ids)
		}
	}
	key := NormalizeName(name)
	if key == "" {
		return Result{Outcome: Unmatched}
	}
	switch ids := m.byName[key]; len(ids) {
	case 0:
		return Result{Outcome: Unmatched}
	case 1:
		return matched(ids[0], MethodName, 1)
	default:
		return m.ambiguous(ids)
	}
}

func (m *EmployeeMatcher) ambiguous(ids []uuid.UUID) Result {
	res := Result{Outcome: Ambiguous, Score: 1}
	for _, id := range ids {
		res.Candidates = append(res.Candidates, Candidate{ID: id, Name: m.names[id], Score: 1})
	}
	return res
}

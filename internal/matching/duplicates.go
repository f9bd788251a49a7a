package matching

import (
	"sort"

	"training_tracker/internal/models"
)

// DuplicateGroup is a set of courses that look like the same training unit.
type DuplicateGroup struct {
	Courses []models.Course `json:"courses"`
	Score   float64         `json:"score"`
}

// DuplicateCourseGroups clusters courses whose titles score at least
// threshold against each other. Clustering is transitive.
func DuplicateCourseGroups(courses []models.Course, threshold float64) []DuplicateGroup {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	parent := make([]int, len(courses))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	minScore := make(map[int]float64)
	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			s := Similarity(courses[i].Name, courses[j].Name)
			if s < threshold {
				continue
			}
			ri, rj := find(i), find(j)
			low := s
			if v, ok := minScore[ri]; ok && v < low {
				low = v
			}
			if v, ok := minScore[rj]; ok && v < low {
				low = v
			}
			if ri != rj {
				parent[rj] = ri
				delete(minScore, rj)
			}
			minScore[ri] = low
		}
	}

	members := make(map[int][]models.Course)
	for i, c := range courses {
		r := find(i)
		members[r] = append(members[r], c)
	}

	var groups []DuplicateGroup
	for root, cs := range members {
		if len(cs) < 2 {
			continue
		}
		sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
		groups = append(groups, DuplicateGroup{Courses: cs, Score: minScore[root]})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Score != groups[j].Score {
			return groups[i].Score > groups[j].Score
		}
		return groups[i].Courses[0].Name < groups[j].Courses[0].Name
	})
	return groups
}

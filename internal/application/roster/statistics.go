package roster

import (
	"math"
	"sort"

	"github.com/alem-hub/student-roster/internal/domain/student"
)

// Statistics summarizes the roster.
type Statistics struct {
	Total      int            `json:"total"`
	AverageIPK float64        `json:"averageIpk"`
	Graduates  int            `json:"graduates"`
	ByJurusan  map[string]int `json:"byJurusan"`
	BySemester map[int]int    `json:"bySemester"`
}

// Statistics computes a summary of the current collection.
func (m *Manager) Statistics() Statistics {
	return Summarize(m.Records())
}

// Summarize computes statistics over records. AverageIPK is rounded to two
// decimals and zero for an empty roster.
func Summarize(records []student.Record) Statistics {
	st := Statistics{
		Total:      len(records),
		ByJurusan:  make(map[string]int),
		BySemester: make(map[int]int),
	}

	var sum float64
	for _, r := range records {
		sum += r.IPK
		st.ByJurusan[r.Jurusan]++
		st.BySemester[r.Semester]++
		if r.IsGraduate() {
			st.Graduates++
		}
	}
	if st.Total > 0 {
		st.AverageIPK = math.Round(sum/float64(st.Total)*100) / 100
	}
	return st
}

// Jurusan returns the department names in alphabetical order.
func (s Statistics) Jurusan() []string {
	out := make([]string, 0, len(s.ByJurusan))
	for j := range s.ByJurusan {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// Semesters returns the semesters present in ascending order.
func (s Statistics) Semesters() []int {
	out := make([]int, 0, len(s.BySemester))
	for sem := range s.BySemester {
		out = append(out, sem)
	}
	sort.Ints(out)
	return out
}

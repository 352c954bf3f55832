package search

import (
	"github.com/alem-hub/student-roster/internal/domain/student"
)

// Comparison places linear and binary search over the same logical data side by side.
type Comparison struct {
	Query string
	Field student.Field

	// Linear ran over the input as given.
	Linear Result

	// Binary ran over Sorted, so Binary.Index refers to Sorted.
	Binary Result
	Sorted []student.Record
}

// Winner names the algorithm that needed fewer comparisons. Ties go to
// binary search, which is the asymptotically cheaper one.
func (c Comparison) Winner() Algorithm {
	if c.Linear.Comparisons < c.Binary.Comparisons {
		return AlgorithmLinear
	}
	return AlgorithmBinary
}

// Saved is how many comparisons binary search saved over linear search
// (negative when linear was cheaper).
func (c Comparison) Saved() int {
	return c.Linear.Comparisons - c.Binary.Comparisons
}

// CompareAlgorithms runs Linear over records and Binary over a sorted copy.
// The input is not modified.
func CompareAlgorithms(records []student.Record, query string, field student.Field) Comparison {
	sorted := SortForBinary(records, field)
	return Comparison{
		Query:  query,
		Field:  field,
		Linear: Linear(records, query, field),
		Binary: Binary(sorted, query, field),
		Sorted: sorted,
	}
}

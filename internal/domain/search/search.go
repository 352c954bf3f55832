// Package search implements the classic search algorithms over a roster:
// linear scan, binary search over a sorted roster and naive pattern
// matching. Every function is pure and reports how many comparisons it made.
package search

import (
	"slices"
	"strings"

	"github.com/alem-hub/student-roster/internal/domain/student"
)

// Algorithm names a search algorithm.
type Algorithm string

const (
	AlgorithmLinear    Algorithm = "linear"
	AlgorithmLinearAll Algorithm = "linear_all"
	AlgorithmBinary    Algorithm = "binary"
	AlgorithmPattern   Algorithm = "pattern"
)

// Declared time complexity per algorithm.
const (
	ComplexityLinear  = "O(n)"
	ComplexityBinary  = "O(log n)"
	ComplexityPattern = "O(n·m)"
)

// NotFound is the Index of a Result that found nothing.
const NotFound = -1

// Result is the outcome of a single-match search.
type Result struct {
	Algorithm   Algorithm
	Found       bool
	Index       int
	Record      *student.Record
	Comparisons int
	Complexity  string
}

// Match is one hit of a multi-match search, with its index in the input.
type Match struct {
	Index  int
	Record student.Record
}

// AllResult is the outcome of a multi-match search.
type AllResult struct {
	Algorithm   Algorithm
	Matches     []Match
	Comparisons int
	Complexity  string
}

// Found reports whether anything matched.
func (r AllResult) Found() bool {
	return len(r.Matches) > 0
}

// Records returns the matched records in input order.
func (r AllResult) Records() []student.Record {
	out := make([]student.Record, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Record
	}
	return out
}

func notFound(alg Algorithm, comparisons int, complexity string) Result {
	return Result{
		Algorithm:   alg,
		Index:       NotFound,
		Comparisons: comparisons,
		Complexity:  complexity,
	}
}

func found(alg Algorithm, index int, rec student.Record, comparisons int, complexity string) Result {
	return Result{
		Algorithm:   alg,
		Found:       true,
		Index:       index,
		Record:      &rec,
		Comparisons: comparisons,
		Complexity:  complexity,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LINEAR SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// Linear scans records in order and returns the first one whose lower-cased
// field value contains the lower-cased query. Comparisons counts every
// position scanned, the match included.
func Linear(records []student.Record, query string, field student.Field) Result {
	q := strings.ToLower(query)
	comparisons := 0
	for i, rec := range records {
		comparisons++
		if strings.Contains(rec.FoldedText(field), q) {
			return found(AlgorithmLinear, i, rec, comparisons, ComplexityLinear)
		}
	}
	return notFound(AlgorithmLinear, comparisons, ComplexityLinear)
}

// LinearAll returns every record matching the Linear rule, in input order.
func LinearAll(records []student.Record, query string, field student.Field) AllResult {
	q := strings.ToLower(query)
	res := AllResult{
		Algorithm:  AlgorithmLinearAll,
		Matches:    make([]Match, 0),
		Complexity: ComplexityLinear,
	}
	for i, rec := range records {
		res.Comparisons++
		if strings.Contains(rec.FoldedText(field), q) {
			res.Matches = append(res.Matches, Match{Index: i, Record: rec})
		}
	}
	return res
}

// ══════════════════════════════════════════════════════════════════════════════
// BINARY SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// Binary bisects records for a lower-cased field value exactly equal to the
// lower-cased query.
//
// Precondition: records are sorted ascending by field using case-insensitive
// lexical comparison (see SortForBinary). Binary does not sort.
func Binary(records []student.Record, query string, field student.Field) Result {
	q := strings.ToLower(query)
	comparisons := 0
	low, high := 0, len(records)-1
	for low <= high {
		mid := low + (high-low)/2
		v := records[mid].FoldedText(field)
		comparisons++
		switch {
		case v == q:
			return found(AlgorithmBinary, mid, records[mid], comparisons, ComplexityBinary)
		case v < q:
			low = mid + 1
		default:
			high = mid - 1
		}
	}
	return notFound(AlgorithmBinary, comparisons, ComplexityBinary)
}

// SortForBinary returns a copy of records stably sorted ascending by the
// lower-cased string value of field, satisfying Binary's precondition.
func SortForBinary(records []student.Record, field student.Field) []student.Record {
	sorted := student.Clone(records)
	if sorted == nil {
		sorted = []student.Record{}
	}
	slices.SortStableFunc(sorted, func(a, b student.Record) int {
		return student.CompareLexical(a, b, field)
	})
	return sorted
}

// ══════════════════════════════════════════════════════════════════════════════
// PATTERN SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// SequentialPattern runs a naive sliding-window substring search of pattern
// in the field value of every record. Comparisons counts one per record plus
// one per window attempt. An empty pattern matches every record.
func SequentialPattern(records []student.Record, pattern string, field student.Field) AllResult {
	p := []rune(strings.ToLower(pattern))
	res := AllResult{
		Algorithm:  AlgorithmPattern,
		Matches:    make([]Match, 0),
		Complexity: ComplexityPattern,
	}
	for i, rec := range records {
		res.Comparisons++
		hit, attempts := windowScan([]rune(rec.FoldedText(field)), p)
		res.Comparisons += attempts
		if hit {
			res.Matches = append(res.Matches, Match{Index: i, Record: rec})
		}
	}
	return res
}

// windowScan slides pattern over text one position at a time and stops at
// the first full match.
func windowScan(text, pattern []rune) (bool, int) {
	m := len(pattern)
	if m == 0 {
		return true, 0
	}
	attempts := 0
	for start := 0; start+m <= len(text); start++ {
		attempts++
		j := 0
		for j < m && text[start+j] == pattern[j] {
			j++
		}
		if j == m {
			return true, attempts
		}
	}
	return false, attempts
}

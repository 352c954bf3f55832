// Package sorting implements five comparison sorts over a roster, each
// instrumented with comparison and swap counters and annotated with its
// declared complexity. Inputs are never modified.
package sorting

import (
	"strings"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Order is the requested sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// IsValid checks that the order is known.
func (o Order) IsValid() bool {
	return o == Asc || o == Desc
}

// ParseOrder resolves "asc"/"desc" case-insensitively; empty means Asc.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return "", shared.NewDomainError("sorting", "ParseOrder", shared.ErrInvalidInput,
			"urutan harus 'asc' atau 'desc': "+s)
	}
}

// Algorithm names a sorting algorithm.
type Algorithm string

const (
	Bubble    Algorithm = "bubble"
	Selection Algorithm = "selection"
	Insertion Algorithm = "insertion"
	Shell     Algorithm = "shell"
	Merge     Algorithm = "merge"
)

// Algorithms lists every algorithm in presentation order.
var Algorithms = []Algorithm{Bubble, Selection, Insertion, Shell, Merge}

// ParseAlgorithm resolves an algorithm name case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	name := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	for _, alg := range Algorithms {
		if alg == name {
			return alg, nil
		}
	}
	return "", shared.NewDomainError("sorting", "ParseAlgorithm", shared.ErrInvalidInput,
		"algoritma pengurutan tidak dikenal: "+s)
}

// Complexity is the declared cost of an algorithm.
type Complexity struct {
	Best    string
	Average string
	Worst   string
	Space   string
}

var complexities = map[Algorithm]Complexity{
	Bubble:    {Best: "O(n)", Average: "O(n²)", Worst: "O(n²)", Space: "O(1)"},
	Selection: {Best: "O(n²)", Average: "O(n²)", Worst: "O(n²)", Space: "O(1)"},
	Insertion: {Best: "O(n)", Average: "O(n²)", Worst: "O(n²)", Space: "O(1)"},
	Shell:     {Best: "O(n log n)", Average: "O(n log² n)", Worst: "O(n²)", Space: "O(1)"},
	Merge:     {Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n log n)", Space: "O(n)"},
}

// ComplexityOf returns the declared complexity of alg.
func ComplexityOf(alg Algorithm) Complexity {
	return complexities[alg]
}

// Result is the sorted copy plus instrumentation.
type Result struct {
	Algorithm Algorithm
	Field     student.Field
	Order     Order
	Sorted    []student.Record

	// Comparisons counts key comparisons.
	Comparisons int

	// Swaps counts element moves: exchanges for bubble and selection,
	// shifts for insertion and shell, merge writes for merge.
	Swaps int

	// Passes counts outer passes actually executed (bubble passes, selection
	// positions, insertion keys, shell gaps, merge recursion depth).
	Passes int

	Complexity Complexity
}

// Func is the signature shared by every algorithm.
type Func func(records []student.Record, field student.Field, order Order) Result

var funcs = map[Algorithm]Func{
	Bubble:    BubbleSort,
	Selection: SelectionSort,
	Insertion: InsertionSort,
	Shell:     ShellSort,
	Merge:     MergeSort,
}

// Run dispatches to the named algorithm.
func Run(alg Algorithm, records []student.Record, field student.Field, order Order) (Result, error) {
	fn, found := funcs[alg]
	if !found {
		return Result{}, shared.NewDomainError("sorting", "Run", shared.ErrInvalidInput,
			"algoritma pengurutan tidak dikenal: "+string(alg))
	}
	if !order.IsValid() {
		return Result{}, shared.NewDomainError("sorting", "Run", shared.ErrInvalidInput,
			"urutan harus 'asc' atau 'desc': "+string(order))
	}
	return fn(records, field, order), nil
}

// CompareAlgorithms runs all five algorithms over the same input.
func CompareAlgorithms(records []student.Record, field student.Field, order Order) map[Algorithm]Result {
	out := make(map[Algorithm]Result, len(Algorithms))
	for _, alg := range Algorithms {
		out[alg] = funcs[alg](records, field, order)
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// counter wraps key comparison for one run.
type counter struct {
	field       student.Field
	order       Order
	comparisons int
}

// outOfOrder reports whether a must come after b under the requested order.
func (c *counter) outOfOrder(a, b student.Record) bool {
	c.comparisons++
	cmp := student.Compare(a, b, c.field)
	if c.order == Desc {
		return cmp < 0
	}
	return cmp > 0
}

// takeLeft reports whether the left element is emitted first by a stable
// merge: ties always go to the left half.
func (c *counter) takeLeft(left, right student.Record) bool {
	c.comparisons++
	cmp := student.Compare(left, right, c.field)
	if c.order == Desc {
		return cmp >= 0
	}
	return cmp <= 0
}

func newResult(alg Algorithm, field student.Field, order Order, sorted []student.Record) Result {
	return Result{
		Algorithm:  alg,
		Field:      field,
		Order:      order,
		Sorted:     sorted,
		Complexity: complexities[alg],
	}
}

func working(records []student.Record) []student.Record {
	out := student.Clone(records)
	if out == nil {
		return []student.Record{}
	}
	return out
}

// IsSorted reports whether records are monotonic by field under order.
func IsSorted(records []student.Record, field student.Field, order Order) bool {
	for i := 1; i < len(records); i++ {
		cmp := student.Compare(records[i-1], records[i], field)
		if order == Desc && cmp < 0 {
			return false
		}
		if order != Desc && cmp > 0 {
			return false
		}
	}
	return true
}

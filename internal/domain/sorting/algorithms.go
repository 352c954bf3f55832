package sorting

import (
	"github.com/alem-hub/student-roster/internal/domain/student"
)

// BubbleSort compares adjacent pairs and swaps out-of-order neighbours.
// The inner bound shrinks by one each pass and the sort stops after the
// first pass that swapped nothing.
func BubbleSort(records []student.Record, field student.Field, order Order) Result {
	arr := working(records)
	c := &counter{field: field, order: order}
	res := newResult(Bubble, field, order, arr)

	n := len(arr)
	for i := 0; i < n-1; i++ {
		res.Passes++
		swapped := false
		for j := 0; j < n-1-i; j++ {
			if c.outOfOrder(arr[j], arr[j+1]) {
				arr[j], arr[j+1] = arr[j+1], arr[j]
				res.Swaps++
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}

	res.Comparisons = c.comparisons
	return res
}

// SelectionSort places the extreme of the unplaced suffix at each position.
// It swaps at most once per position, and only when the extreme is not
// already in place.
func SelectionSort(records []student.Record, field student.Field, order Order) Result {
	arr := working(records)
	c := &counter{field: field, order: order}
	res := newResult(Selection, field, order, arr)

	n := len(arr)
	for i := 0; i < n-1; i++ {
		res.Passes++
		extreme := i
		for j := i + 1; j < n; j++ {
			if c.outOfOrder(arr[extreme], arr[j]) {
				extreme = j
			}
		}
		if extreme != i {
			arr[i], arr[extreme] = arr[extreme], arr[i]
			res.Swaps++
		}
	}

	res.Comparisons = c.comparisons
	return res
}

// InsertionSort grows a sorted prefix, shifting elements one slot right
// until the position of the current key is found.
func InsertionSort(records []student.Record, field student.Field, order Order) Result {
	arr := working(records)
	c := &counter{field: field, order: order}
	res := newResult(Insertion, field, order, arr)

	for i := 1; i < len(arr); i++ {
		res.Passes++
		key := arr[i]
		j := i - 1
		for j >= 0 && c.outOfOrder(arr[j], key) {
			arr[j+1] = arr[j]
			res.Swaps++
			j--
		}
		arr[j+1] = key
	}

	res.Comparisons = c.comparisons
	return res
}

// ShellSort runs gapped insertion sort with gaps n/2, n/4, ... 1.
func ShellSort(records []student.Record, field student.Field, order Order) Result {
	arr := working(records)
	c := &counter{field: field, order: order}
	res := newResult(Shell, field, order, arr)

	n := len(arr)
	for gap := n / 2; gap > 0; gap /= 2 {
		res.Passes++
		for i := gap; i < n; i++ {
			temp := arr[i]
			j := i
			for j >= gap && c.outOfOrder(arr[j-gap], temp) {
				arr[j] = arr[j-gap]
				res.Swaps++
				j -= gap
			}
			arr[j] = temp
		}
	}

	res.Comparisons = c.comparisons
	return res
}

// MergeSort halves recursively and merges. The merge is stable in both
// directions: on equal keys the element from the left half goes first.
func MergeSort(records []student.Record, field student.Field, order Order) Result {
	c := &counter{field: field, order: order}
	m := &merger{c: c}
	sorted := m.sort(working(records), 0)

	res := newResult(Merge, field, order, sorted)
	res.Comparisons = c.comparisons
	res.Swaps = m.writes
	res.Passes = m.levels
	return res
}

type merger struct {
	c      *counter
	writes int
	levels int
}

func (m *merger) sort(arr []student.Record, depth int) []student.Record {
	if len(arr) <= 1 {
		return arr
	}
	if depth+1 > m.levels {
		m.levels = depth + 1
	}
	mid := len(arr) / 2
	left := m.sort(arr[:mid:mid], depth+1)
	right := m.sort(arr[mid:], depth+1)
	return m.merge(left, right)
}

func (m *merger) merge(left, right []student.Record) []student.Record {
	out := make([]student.Record, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if m.c.takeLeft(left[i], right[j]) {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
		m.writes++
	}
	for ; i < len(left); i++ {
		out = append(out, left[i])
		m.writes++
	}
	for ; j < len(right); j++ {
		out = append(out, right[j])
		m.writes++
	}
	return out
}

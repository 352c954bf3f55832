package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alem-hub/student-roster/internal/domain/search"
	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/sorting"
	"github.com/alem-hub/student-roster/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH
// ══════════════════════════════════════════════════════════════════════════════

func (c *cli) searchCmd() *cobra.Command {
	var fieldName, algorithm string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search students with linear, binary or pattern search",
		Long: `Search students by one field.

Algorithms:
  linear   first substring match, O(n)
  all      every substring match, O(n)
  binary   exact match over a copy sorted by the field, O(log n)
  pattern  naive pattern matching, O(n·m)
  compare  linear against binary search on the same data`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			field, err := student.ParseField(fieldName)
			if err != nil {
				return err
			}
			records := c.app.Manager.Records()
			query := args[0]

			switch strings.ToLower(algorithm) {
			case "linear":
				return c.printSearch(search.Linear(records, query, field))
			case "all":
				return c.printSearchAll(search.LinearAll(records, query, field))
			case "binary":
				return c.printSearch(search.Binary(search.SortForBinary(records, field), query, field))
			case "pattern":
				return c.printSearchAll(search.SequentialPattern(records, query, field))
			case "compare":
				return c.printSearchComparison(search.CompareAlgorithms(records, query, field))
			default:
				return shared.NewDomainError("search", "Run", shared.ErrInvalidInput,
					"algoritma pencarian tidak dikenal: "+algorithm)
			}
		},
	}
	cmd.Flags().StringVarP(&fieldName, "field", "f", string(student.FieldNama), "field to search")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "all", "linear, all, binary, pattern or compare")
	return cmd
}

type searchView struct {
	Algorithm   search.Algorithm `json:"algorithm"`
	Found       bool             `json:"found"`
	Index       int              `json:"index"`
	Comparisons int              `json:"comparisons"`
	Complexity  string           `json:"complexity"`
	Records     []student.Record `json:"records"`
}

func singleView(r search.Result) searchView {
	v := searchView{
		Algorithm:   r.Algorithm,
		Found:       r.Found,
		Index:       r.Index,
		Comparisons: r.Comparisons,
		Complexity:  r.Complexity,
		Records:     []student.Record{},
	}
	if r.Record != nil {
		v.Records = append(v.Records, *r.Record)
	}
	return v
}

func (c *cli) printSearch(r search.Result) error {
	p := c.printer()
	if p.json {
		return p.printJSON(singleView(r))
	}
	c.printSearchSummary(r.Algorithm, r.Comparisons, r.Complexity)
	if !r.Found {
		p.line("Data tidak ditemukan")
		return nil
	}
	p.line("Ditemukan pada indeks %d", r.Index)
	return p.records([]student.Record{*r.Record})
}

func (c *cli) printSearchAll(r search.AllResult) error {
	p := c.printer()
	if p.json {
		return p.printJSON(searchView{
			Algorithm:   r.Algorithm,
			Found:       r.Found(),
			Index:       firstIndex(r),
			Comparisons: r.Comparisons,
			Complexity:  r.Complexity,
			Records:     r.Records(),
		})
	}
	c.printSearchSummary(r.Algorithm, r.Comparisons, r.Complexity)
	if !r.Found() {
		p.line("Data tidak ditemukan")
		return nil
	}
	p.line("%d data ditemukan", len(r.Matches))
	return p.records(r.Records())
}

func firstIndex(r search.AllResult) int {
	if len(r.Matches) == 0 {
		return search.NotFound
	}
	return r.Matches[0].Index
}

func (c *cli) printSearchComparison(cmp search.Comparison) error {
	p := c.printer()
	if p.json {
		return p.printJSON(map[string]any{
			"query":  cmp.Query,
			"field":  cmp.Field,
			"linear": singleView(cmp.Linear),
			"binary": singleView(cmp.Binary),
			"winner": cmp.Winner(),
			"saved":  cmp.Saved(),
		})
	}

	w := p.table()
	fmt.Fprintln(w, "ALGORITHM\tFOUND\tINDEX\tCOMPARISONS\tCOMPLEXITY")
	for _, r := range []search.Result{cmp.Linear, cmp.Binary} {
		fmt.Fprintf(w, "%s\t%t\t%d\t%d\t%s\n", r.Algorithm, r.Found, r.Index, r.Comparisons, r.Complexity)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	p.line("Lebih efisien: %s (selisih %d perbandingan)", cmp.Winner(), cmp.Saved())
	return nil
}

func (c *cli) printSearchSummary(alg search.Algorithm, comparisons int, complexity string) {
	fmt.Fprintf(c.errOut, "%s: %d perbandingan, %s\n", alg, comparisons, complexity)
}

// ══════════════════════════════════════════════════════════════════════════════
// SORT
// ══════════════════════════════════════════════════════════════════════════════

func (c *cli) sortCmd() *cobra.Command {
	var fieldName, order, algorithm string
	var compare bool
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort students and report the work each algorithm did",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			field, ord, alg, err := parseSort(fieldName, order, algorithm)
			if err != nil {
				return err
			}
			records := c.app.Manager.Records()

			if compare {
				return c.printSortComparison(sorting.CompareAlgorithms(records, field, ord))
			}
			res, err := sorting.Run(alg, records, field, ord)
			if err != nil {
				return err
			}
			p := c.printer()
			if p.json {
				return p.printJSON(sortView(res, true))
			}
			fmt.Fprintf(c.errOut, "%s: %d perbandingan, %d pertukaran, %d iterasi\n",
				res.Algorithm, res.Comparisons, res.Swaps, res.Passes)
			return p.records(res.Sorted)
		},
	}
	cmd.Flags().StringVarP(&fieldName, "field", "f", string(student.FieldNama), "field to sort by")
	cmd.Flags().StringVar(&order, "order", string(sorting.Asc), "asc or desc")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(sorting.Merge), "bubble, selection, insertion, shell or merge")
	cmd.Flags().BoolVar(&compare, "compare", false, "run every algorithm and compare their counters")
	return cmd
}

func sortView(r sorting.Result, withRecords bool) map[string]any {
	v := map[string]any{
		"algorithm":   r.Algorithm,
		"field":       r.Field,
		"order":       r.Order,
		"comparisons": r.Comparisons,
		"swaps":       r.Swaps,
		"passes":      r.Passes,
		"complexity": map[string]string{
			"best":    r.Complexity.Best,
			"average": r.Complexity.Average,
			"worst":   r.Complexity.Worst,
			"space":   r.Complexity.Space,
		},
	}
	if withRecords {
		v["records"] = r.Sorted
	}
	return v
}

func (c *cli) printSortComparison(results map[sorting.Algorithm]sorting.Result) error {
	p := c.printer()
	if p.json {
		out := make([]map[string]any, 0, len(results))
		for _, alg := range sorting.Algorithms {
			out = append(out, sortView(results[alg], false))
		}
		return p.printJSON(out)
	}

	w := p.table()
	fmt.Fprintln(w, "ALGORITHM\tCOMPARISONS\tSWAPS\tPASSES\tBEST\tAVERAGE\tWORST")
	for _, alg := range sorting.Algorithms {
		r := results[alg]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.Algorithm, r.Comparisons, r.Swaps, r.Passes,
			r.Complexity.Best, r.Complexity.Average, r.Complexity.Worst)
	}
	return w.Flush()
}

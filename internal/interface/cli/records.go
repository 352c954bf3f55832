package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alem-hub/student-roster/internal/application/roster"
	"github.com/alem-hub/student-roster/internal/domain/sorting"
	"github.com/alem-hub/student-roster/internal/domain/student"
)

// recordFlags are the editable fields shared by add and update.
type recordFlags struct {
	nim, nama, email, jurusan string
	semester                  int
	ipk                       float64
	tanggal                   string
	tesis                     string
	reguler                   bool
}

func (f *recordFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.nim, "nim", "", "student number")
	fs.StringVar(&f.nama, "nama", "", "full name")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.jurusan, "jurusan", "", "department")
	fs.IntVar(&f.semester, "semester", 0, "semester (1-14)")
	fs.Float64Var(&f.ipk, "ipk", 0, "grade point average (0.00-4.00)")
	fs.StringVar(&f.tesis, "tesis", "", "thesis title; makes the student a graduate student")
}

func (f *recordFlags) input() student.Input {
	in := student.Input{
		NIM:          f.nim,
		Nama:         f.nama,
		Email:        f.email,
		Jurusan:      f.jurusan,
		Semester:     f.semester,
		IPK:          f.ipk,
		TanggalMasuk: f.tanggal,
	}
	if f.tesis != "" {
		in.Program = student.GraduateProgram(f.tesis)
	}
	return in
}

// patch includes only the flags the user actually set.
func (f *recordFlags) patch(fs *pflag.FlagSet) student.Patch {
	var p student.Patch
	if fs.Changed("nim") {
		p.NIM = &f.nim
	}
	if fs.Changed("nama") {
		p.Nama = &f.nama
	}
	if fs.Changed("email") {
		p.Email = &f.email
	}
	if fs.Changed("jurusan") {
		p.Jurusan = &f.jurusan
	}
	if fs.Changed("semester") {
		p.Semester = &f.semester
	}
	if fs.Changed("ipk") {
		p.IPK = &f.ipk
	}
	switch {
	case fs.Changed("tesis"):
		p.Program = student.GraduateProgram(f.tesis)
	case f.reguler:
		p.Program = &student.Program{Kind: student.KindStandard}
	}
	return p
}

func (c *cli) addCmd() *cobra.Command {
	var f recordFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.app.Manager.Add(cmd.Context(), f.input())
			if err != nil {
				return err
			}
			c.warnUnsaved(res.SaveErr)
			return c.printer().record(*res.Record)
		},
	}
	f.bind(cmd.Flags())
	cmd.Flags().StringVar(&f.tanggal, "tanggal", "", "admission date YYYY-MM-DD (default today, WIB)")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var f recordFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the fields of a student; unset flags are left unchanged",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Manager.Update(cmd.Context(), args[0], f.patch(cmd.Flags()))
			if err != nil {
				return err
			}
			c.warnUnsaved(res.SaveErr)
			return c.printer().record(*res.Record)
		},
	}
	f.bind(cmd.Flags())
	cmd.Flags().BoolVar(&f.reguler, "reguler", false, "turn a graduate student back into a regular student")
	cmd.MarkFlagsMutuallyExclusive("tesis", "reguler")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more students",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *roster.MutationResult
				err error
			)
			if len(args) == 1 {
				res, err = c.app.Manager.Delete(cmd.Context(), args[0])
			} else {
				res, err = c.app.Manager.DeleteMultiple(cmd.Context(), args)
			}
			if err != nil {
				return err
			}
			c.warnUnsaved(res.SaveErr)

			p := c.printer()
			if p.json {
				return p.printJSON(map[string]any{"removed": res.Removed, "persisted": res.Persisted})
			}
			p.line("%d data mahasiswa dihapus", res.Removed)
			return nil
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := c.app.Manager.Get(args[0])
			if err != nil {
				return err
			}
			return c.printer().record(r)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var sortBy, order, algorithm string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students, optionally sorted",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			records := c.app.Manager.Records()
			if sortBy == "" {
				return c.printer().records(records)
			}

			field, ord, alg, err := parseSort(sortBy, order, algorithm)
			if err != nil {
				return err
			}
			res, err := sorting.Run(alg, records, field, ord)
			if err != nil {
				return err
			}
			return c.printer().records(res.Sorted)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "field to sort by (nim, nama, email, jurusan, semester, ipk, tanggalMasuk)")
	cmd.Flags().StringVar(&order, "order", string(sorting.Asc), "sort order (asc, desc)")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(sorting.Merge), "sorting algorithm")
	return cmd
}

func parseSort(fieldName, order, algorithm string) (student.Field, sorting.Order, sorting.Algorithm, error) {
	field, err := student.ParseField(fieldName)
	if err != nil {
		return "", "", "", err
	}
	ord, err := sorting.ParseOrder(order)
	if err != nil {
		return "", "", "", err
	}
	alg, err := sorting.ParseAlgorithm(algorithm)
	if err != nil {
		return "", "", "", err
	}
	return field, ord, alg, nil
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show roster statistics",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			st := c.app.Manager.Statistics()
			p := c.printer()
			if p.json {
				return p.printJSON(st)
			}

			w := p.table()
			fmt.Fprintf(w, "Total mahasiswa:\t%d\n", st.Total)
			fmt.Fprintf(w, "Rata-rata IPK:\t%.2f\n", st.AverageIPK)
			fmt.Fprintf(w, "Pascasarjana:\t%d\n", st.Graduates)
			for _, j := range st.Jurusan() {
				fmt.Fprintf(w, "Jurusan %s:\t%d\n", j, st.ByJurusan[j])
			}
			for _, sem := range st.Semesters() {
				fmt.Fprintf(w, "Semester %d:\t%d\n", sem, st.BySemester[sem])
			}
			return w.Flush()
		},
	}
}

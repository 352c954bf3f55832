package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alem-hub/student-roster/internal/application/roster"
	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
)

func (c *cli) exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export json|csv",
		Short:     "Export the roster to a JSON or CSV file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"json", "csv"},
		RunE: func(_ *cobra.Command, args []string) error {
			records := c.app.Manager.Records()

			var (
				file *snapshot.ExportFile
				err  error
			)
			switch strings.ToLower(args[0]) {
			case "json":
				file, err = c.app.Gateway.ExportJSON(records)
			case "csv":
				file, err = c.app.Gateway.ExportCSV(records)
			default:
				return shared.NewDomainError("snapshot", "Export", shared.ErrInvalidInput,
					"format ekspor tidak dikenal: "+args[0])
			}
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := c.out.Write(file.Content)
				return err
			}
			path := out
			if path == "" {
				path = file.Name
			}
			if err := os.WriteFile(path, file.Content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(c.errOut, "%d data mahasiswa diekspor ke %s\n", len(records), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path; \"-\" writes to stdout (default data-mahasiswa-YYYY-MM-DD.<ext>)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the roster with the records of a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			outcome := <-c.app.Manager.ImportFile(cmd.Context(), f)
			if outcome.Err != nil {
				return outcome.Err
			}
			report := outcome.Report
			c.warnUnsaved(report.SaveErr)

			p := c.printer()
			if p.json {
				rejected := report.Rejected
				if rejected == nil {
					rejected = []roster.RejectedRow{}
				}
				return p.printJSON(map[string]any{
					"totalRows": report.TotalRows,
					"imported":  report.Imported,
					"strict":    report.Strict,
					"rejected":  rejected,
					"persisted": report.Persisted,
				})
			}

			p.line("%d data mahasiswa diimpor", report.Imported)
			if len(report.Rejected) == 0 {
				return nil
			}
			w := p.table()
			fmt.Fprintln(w, "BARIS\tNIM\tNAMA\tKESALAHAN")
			for _, r := range report.Rejected {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Row, r.NIM, r.Nama, r.Error)
			}
			return w.Flush()
		},
	}
}

func (c *cli) backupCmd() *cobra.Command {
	backup := &cobra.Command{
		Use:   "backup",
		Short: "Work with the one-generation backup",
	}
	backup.AddCommand(&cobra.Command{
		Use:   "restore",
		Short: "Restore the roster from the backup slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.Manager.Restore(cmd.Context())
			if err != nil {
				return err
			}
			p := c.printer()
			if p.json {
				return p.printJSON(map[string]any{"restored": n})
			}
			p.line("%d data mahasiswa dipulihkan dari backup", n)
			return nil
		},
	})
	return backup
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all students; the previous snapshot stays in the backup slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Manager.Clear(cmd.Context()); err != nil {
				return err
			}
			p := c.printer()
			if p.json {
				return p.printJSON(map[string]any{"cleared": true})
			}
			p.line("Semua data mahasiswa dihapus")
			return nil
		},
	}
}

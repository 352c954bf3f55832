package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/tidwall/pretty"

	"github.com/alem-hub/student-roster/internal/domain/student"
)

// printer writes either aligned tables or pretty JSON.
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
}

func (p printer) printJSON(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = p.w.Write(pretty.Pretty(raw))
	return err
}

func (p printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p printer) records(records []student.Record) error {
	if p.json {
		if records == nil {
			records = []student.Record{}
		}
		return p.printJSON(records)
	}
	if len(records) == 0 {
		p.line("Belum ada data mahasiswa")
		return nil
	}

	w := p.table()
	fmt.Fprintln(w, "ID\tNIM\tNAMA\tJURUSAN\tSEMESTER\tIPK\tMASUK\tPROGRAM")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			r.ID, r.NIM, r.Nama, r.Jurusan, r.Semester,
			strconv.FormatFloat(r.IPK, 'f', 2, 64), r.TanggalMasuk, programLabel(r))
	}
	return w.Flush()
}

func (p printer) record(r student.Record) error {
	if p.json {
		return p.printJSON(r)
	}
	w := p.table()
	fmt.Fprintf(w, "ID:\t%s\n", r.ID)
	fmt.Fprintf(w, "NIM:\t%s\n", r.NIM)
	fmt.Fprintf(w, "Nama:\t%s\n", r.Nama)
	fmt.Fprintf(w, "Email:\t%s\n", r.Email)
	fmt.Fprintf(w, "Jurusan:\t%s\n", r.Jurusan)
	fmt.Fprintf(w, "Semester:\t%d\n", r.Semester)
	fmt.Fprintf(w, "IPK:\t%s\n", strconv.FormatFloat(r.IPK, 'f', 2, 64))
	fmt.Fprintf(w, "Tanggal Masuk:\t%s\n", r.TanggalMasuk)
	if thesis, ok := r.Thesis(); ok {
		fmt.Fprintf(w, "Judul Tesis:\t%s\n", thesis)
	}
	return w.Flush()
}

func programLabel(r student.Record) string {
	return string(r.Kind())
}

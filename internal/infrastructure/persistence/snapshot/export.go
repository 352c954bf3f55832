package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/pkg/timeutil"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "NIM,Nama,Email,Jurusan,Semester,IPK,Tanggal Masuk"

const exportBaseName = "data-mahasiswa-"

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// ExportFile is a downloadable artifact.
type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ExportDocument is the JSON export shape.
type ExportDocument struct {
	ExportedAt string           `json:"exportedAt"`
	ExportedBy string           `json:"exportedBy"`
	Count      int              `json:"count"`
	Data       []student.Record `json:"data"`
}

// ImportResult is the outcome of ImportJSON.
type ImportResult struct {
	Records []student.Record

	// ExportedAt and ExportedBy echo the source file when it carries them.
	ExportedAt string
	ExportedBy string
}

// Count returns the number of imported records.
func (r *ImportResult) Count() int {
	return len(r.Records)
}

// ExportJSON renders records as a pretty-printed JSON export.
func (g *Gateway) ExportJSON(records []student.Record) (*ExportFile, error) {
	now := g.clock.Now()
	if records == nil {
		records = []student.Record{}
	}

	raw, err := json.Marshal(ExportDocument{
		ExportedAt: timeutil.FormatISO(now),
		ExportedBy: g.exportedBy,
		Count:      len(records),
		Data:       records,
	})
	if err != nil {
		return nil, shared.WrapError(domain, "ExportJSON", shared.ErrPersistence, "Gagal export data", err)
	}

	return &ExportFile{
		Name:        exportBaseName + timeutil.FormatDateStr(now) + ".json",
		ContentType: "application/json",
		Content:     pretty.PrettyOptions(raw, prettyOptions),
	}, nil
}

// ExportCSV renders records as CSV. Every value is double-quoted and IPK
// is written with two decimals.
func (g *Gateway) ExportCSV(records []student.Record) (*ExportFile, error) {
	now := g.clock.Now()

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, CSVHeader)
	for _, r := range records {
		lines = append(lines, csvRow(
			r.NIM,
			r.Nama,
			r.Email,
			r.Jurusan,
			strconv.Itoa(r.Semester),
			strconv.FormatFloat(r.IPK, 'f', 2, 64),
			r.TanggalMasuk,
		))
	}

	return &ExportFile{
		Name:        exportBaseName + timeutil.FormatDateStr(now) + ".csv",
		ContentType: "text/csv;charset=utf-8",
		Content:     []byte(strings.Join(lines, "\n")),
	}, nil
}

func csvRow(values ...string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// ImportJSON parses an import file. Any JSON object with a "data" array of
// record-shaped objects is accepted; other keys are ignored. Records are
// not validated here.
func (g *Gateway) ImportJSON(contents []byte) (*ImportResult, error) {
	return ImportJSON(contents)
}

// ImportJSON is the store-independent form of Gateway.ImportJSON.
func ImportJSON(contents []byte) (*ImportResult, error) {
	env, err := decodeEnvelope(contents, "ImportJSON", shared.ErrImportFormat, shared.ErrImportFormat)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Records: env.Data}

	var meta struct {
		ExportedAt string `json:"exportedAt"`
		ExportedBy string `json:"exportedBy"`
	}
	if json.Unmarshal(contents, &meta) == nil {
		res.ExportedAt = meta.ExportedAt
		res.ExportedBy = meta.ExportedBy
	}
	return res, nil
}

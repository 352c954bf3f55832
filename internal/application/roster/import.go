package roster

import (
	"context"
	"io"
	"strings"

	"github.com/alem-hub/student-roster/config"
	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
	"github.com/alem-hub/student-roster/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT
// ══════════════════════════════════════════════════════════════════════════════

// RejectedRow is a record dropped by a strict import. Row is 1-based.
type RejectedRow struct {
	Row   int    `json:"row"`
	NIM   string `json:"nim,omitempty"`
	Nama  string `json:"nama,omitempty"`
	Error string `json:"error"`
}

// ImportReport describes a completed import.
type ImportReport struct {
	MutationResult

	TotalRows int
	Imported  int
	Strict    bool
	Rejected  []RejectedRow
}

// ImportOutcome is delivered once by ImportFile.
type ImportOutcome struct {
	Report *ImportReport
	Err    error
}

// ImportReplace replaces the whole collection with records and saves it.
// Records are taken as-is unless the import.strict feature is on, in which
// case invalid rows and rows repeating an earlier NIM are rejected.
func (m *Manager) ImportReplace(ctx context.Context, records []student.Record) (*ImportReport, error) {
	const op = "ImportReplace"

	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	report := &ImportReport{TotalRows: len(records)}

	accepted := student.Clone(records)
	if m.features.IsEnabled(config.FeatureImportStrict) {
		report.Strict = true
		accepted, report.Rejected = m.screen(records)
		if len(accepted) == 0 && len(records) > 0 {
			return nil, shared.NewDomainError(domain, op, shared.ErrImportFormat, "Tidak ada data valid untuk diimpor")
		}
	}
	if accepted == nil {
		accepted = []student.Record{}
	}

	m.records = accepted
	report.Imported = len(accepted)
	m.log.Info("roster imported",
		logger.Count(report.Imported),
		logger.Int("rejected", len(report.Rejected)),
		logger.Bool("strict", report.Strict),
	)

	pending = append(pending, shared.NewRosterImportedEvent(report.Imported, len(report.Rejected), m.clock.Now()))
	m.persist(ctx, op, &report.MutationResult, &pending)
	return report, nil
}

// ImportFile reads a JSON export from r in the background and imports it.
// Exactly one outcome is sent before the channel is closed.
func (m *Manager) ImportFile(ctx context.Context, r io.Reader) <-chan ImportOutcome {
	out := make(chan ImportOutcome, 1)

	go func() {
		defer close(out)

		contents, err := io.ReadAll(r)
		if err != nil {
			out <- ImportOutcome{Err: shared.WrapError(domain, "ImportFile", shared.ErrImportFormat, "Gagal membaca file", err)}
			return
		}
		if err := ctx.Err(); err != nil {
			out <- ImportOutcome{Err: shared.WrapError(domain, "ImportFile", shared.ErrOperationCanceled, "Impor dibatalkan", err)}
			return
		}

		parsed, err := snapshot.ImportJSON(contents)
		if err != nil {
			m.log.Warn("rejected import file", logger.Err(err))
			out <- ImportOutcome{Err: err}
			return
		}

		report, err := m.ImportReplace(ctx, parsed.Records)
		out <- ImportOutcome{Report: report, Err: err}
	}()

	return out
}

// screen validates records in file order. Accepted records without an id
// get a fresh one.
func (m *Manager) screen(records []student.Record) ([]student.Record, []RejectedRow) {
	accepted := make([]student.Record, 0, len(records))
	var rejected []RejectedRow
	seen := make(map[string]struct{}, len(records))

	for i, r := range records {
		row := RejectedRow{Row: i + 1, NIM: r.NIM, Nama: r.Nama}

		if fe := student.ValidateAllFields(r); !fe.Valid {
			row.Error = fe.First()
			rejected = append(rejected, row)
			continue
		}
		if r.IsGraduate() && !m.features.IsEnabled(config.FeatureGraduateRecords) {
			row.Error = "Data mahasiswa pascasarjana tidak diaktifkan"
			rejected = append(rejected, row)
			continue
		}
		key := student.NormalizeNIM(r.NIM)
		if _, dup := seen[key]; dup {
			row.Error = shared.ErrDuplicateNIM.Message
			rejected = append(rejected, row)
			continue
		}
		seen[key] = struct{}{}

		if strings.TrimSpace(r.ID) == "" {
			r.ID = m.newID()
		}
		r.NIM = key
		accepted = append(accepted, r.Copy())
	}
	return accepted, rejected
}

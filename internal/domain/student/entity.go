// Package student contains the domain model of a student record ("mahasiswa").
// This is the core of the business logic - there are no external dependencies here.
package student

import (
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRAM VARIANT
// ══════════════════════════════════════════════════════════════════════════════

// ProgramKind tags the study program variant of a record.
type ProgramKind string

const (
	// KindStandard - regular undergraduate student (the default).
	KindStandard ProgramKind = "reguler"
	// KindGraduate - graduate student working on a thesis.
	KindGraduate ProgramKind = "pascasarjana"
)

// IsValid checks that the kind is known.
func (k ProgramKind) IsValid() bool {
	return k == KindStandard || k == KindGraduate
}

// Program is the tagged variant {Standard, Graduate{thesis}}.
// A nil *Program on a Record means Standard.
type Program struct {
	Kind   ProgramKind `json:"jenis"`
	Thesis string      `json:"judulTesis,omitempty"`
}

// GraduateProgram builds the graduate variant.
func GraduateProgram(thesis string) *Program {
	return &Program{Kind: KindGraduate, Thesis: strings.TrimSpace(thesis)}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record is one student's stored data. Use Copy or Clone for a copy that
// does not share Program.
type Record struct {
	// ID - opaque unique identifier, assigned on creation and never changed.
	ID string `json:"id"`

	// NIM - student number, stored uppercased, unique across the roster.
	NIM string `json:"nim"`

	// Nama - full name.
	Nama string `json:"nama"`

	// Email - contact e-mail.
	Email string `json:"email"`

	// Jurusan - department name.
	Jurusan string `json:"jurusan"`

	// Semester - current semester, 1-14.
	Semester int `json:"semester"`

	// IPK - grade point average, 0.00-4.00.
	IPK float64 `json:"ipk"`

	// TanggalMasuk - enrollment date (YYYY-MM-DD), set once at creation.
	TanggalMasuk string `json:"tanggalMasuk"`

	// Program - optional graduate variant.
	Program *Program `json:"program,omitempty"`
}

// Kind returns the program kind, Standard when no variant is set.
func (r Record) Kind() ProgramKind {
	if r.Program == nil || r.Program.Kind == "" {
		return KindStandard
	}
	return r.Program.Kind
}

// IsGraduate reports whether the record is a graduate student.
func (r Record) IsGraduate() bool {
	return r.Kind() == KindGraduate
}

// Thesis is the capability check for the graduate variant: it returns the
// thesis title and true only for graduate records.
func (r Record) Thesis() (string, bool) {
	if !r.IsGraduate() {
		return "", false
	}
	return r.Program.Thesis, true
}

// NormalizedNIM returns the comparison key used for uniqueness checks.
func (r Record) NormalizedNIM() string {
	return NormalizeNIM(r.NIM)
}

// NormalizeNIM uppercases and trims a student number.
func NormalizeNIM(nim string) string {
	return strings.ToUpper(strings.TrimSpace(nim))
}

// SameNIM compares two student numbers case-insensitively.
func SameNIM(a, b string) bool {
	return NormalizeNIM(a) == NormalizeNIM(b)
}

// Copy returns r with its own Program, so changes to the copy never reach r.
func (r Record) Copy() Record {
	if r.Program != nil {
		p := *r.Program
		r.Program = &p
	}
	return r
}

// Clone returns a deep copy of the slice.
func Clone(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i := range records {
		out[i] = records[i].Copy()
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUTS
// ══════════════════════════════════════════════════════════════════════════════

// Input carries the caller-supplied fields of a new record.
type Input struct {
	NIM      string
	Nama     string
	Email    string
	Jurusan  string
	Semester int
	IPK      float64

	// TanggalMasuk is optional; today's WIB date is used when empty.
	TanggalMasuk string

	// Program is optional; nil means Standard.
	Program *Program
}

// ToRecord builds an unvalidated record with the given identity.
func (in Input) ToRecord(id, tanggalMasuk string) Record {
	if strings.TrimSpace(in.TanggalMasuk) != "" {
		tanggalMasuk = strings.TrimSpace(in.TanggalMasuk)
	}
	return Record{
		ID:           id,
		NIM:          NormalizeNIM(in.NIM),
		Nama:         strings.TrimSpace(in.Nama),
		Email:        strings.TrimSpace(in.Email),
		Jurusan:      strings.TrimSpace(in.Jurusan),
		Semester:     in.Semester,
		IPK:          in.IPK,
		TanggalMasuk: tanggalMasuk,
		Program:      copyProgram(in.Program),
	}
}

// Patch contains optional field updates.
// nil values mean "don't change". ID and TanggalMasuk are not patchable.
type Patch struct {
	NIM      *string
	Nama     *string
	Email    *string
	Jurusan  *string
	Semester *int
	IPK      *float64
	Program  *Program
}

// IsEmpty reports whether the patch touches no field.
func (p Patch) IsEmpty() bool {
	return p.NIM == nil && p.Nama == nil && p.Email == nil && p.Jurusan == nil &&
		p.Semester == nil && p.IPK == nil && p.Program == nil
}

// ChangesNIM reports whether applying the patch changes r's NIM.
func (p Patch) ChangesNIM(r Record) bool {
	return p.NIM != nil && !SameNIM(*p.NIM, r.NIM)
}

// Apply returns r merged with the supplied fields. r itself is not modified.
func (p Patch) Apply(r Record) Record {
	if p.NIM != nil {
		r.NIM = NormalizeNIM(*p.NIM)
	}
	if p.Nama != nil {
		r.Nama = strings.TrimSpace(*p.Nama)
	}
	if p.Email != nil {
		r.Email = strings.TrimSpace(*p.Email)
	}
	if p.Jurusan != nil {
		r.Jurusan = strings.TrimSpace(*p.Jurusan)
	}
	if p.Semester != nil {
		r.Semester = *p.Semester
	}
	if p.IPK != nil {
		r.IPK = *p.IPK
	}
	if p.Program != nil {
		if p.Program.Kind == KindStandard {
			r.Program = nil
		} else {
			prog := *p.Program
			r.Program = &prog
		}
	}
	return r
}

// ChangedFields lists the field names the patch touches, in field order.
func (p Patch) ChangedFields() []string {
	changed := make([]string, 0, 7)
	if p.NIM != nil {
		changed = append(changed, string(FieldNIM))
	}
	if p.Nama != nil {
		changed = append(changed, string(FieldNama))
	}
	if p.Email != nil {
		changed = append(changed, string(FieldEmail))
	}
	if p.Jurusan != nil {
		changed = append(changed, string(FieldJurusan))
	}
	if p.Semester != nil {
		changed = append(changed, string(FieldSemester))
	}
	if p.IPK != nil {
		changed = append(changed, string(FieldIPK))
	}
	if p.Program != nil {
		changed = append(changed, "program")
	}
	return changed
}

func copyProgram(p *Program) *Program {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

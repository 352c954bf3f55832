package student

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

// Field identifies which record attribute an operation acts on.
type Field string

const (
	FieldNIM          Field = "nim"
	FieldNama         Field = "nama"
	FieldEmail        Field = "email"
	FieldJurusan      Field = "jurusan"
	FieldSemester     Field = "semester"
	FieldIPK          Field = "ipk"
	FieldTanggalMasuk Field = "tanggalMasuk"
)

// Fields lists every selectable field in display order.
var Fields = []Field{FieldNIM, FieldNama, FieldEmail, FieldJurusan, FieldSemester, FieldIPK, FieldTanggalMasuk}

// IsValid checks that the selector is known.
func (f Field) IsValid() bool {
	switch f {
	case FieldNIM, FieldNama, FieldEmail, FieldJurusan, FieldSemester, FieldIPK, FieldTanggalMasuk:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether values of the field compare as numbers.
func (f Field) IsNumeric() bool {
	return f == FieldSemester || f == FieldIPK
}

// String returns the selector name.
func (f Field) String() string {
	return string(f)
}

// ParseField resolves a selector name. Matching is case-insensitive and
// accepts "tanggal_masuk" as an alias.
func ParseField(name string) (Field, error) {
	n := strings.TrimSpace(name)
	for _, f := range Fields {
		if strings.EqualFold(n, string(f)) {
			return f, nil
		}
	}
	if strings.EqualFold(n, "tanggal_masuk") {
		return FieldTanggalMasuk, nil
	}
	return "", shared.WrapError("student", "ParseField", shared.ErrInvalidInput,
		"field tidak dikenal: "+name, shared.ErrUnknownField)
}

// Number returns the numeric value of a numeric field, 0 otherwise.
func (r Record) Number(f Field) float64 {
	switch f {
	case FieldSemester:
		return float64(r.Semester)
	case FieldIPK:
		return r.IPK
	default:
		return 0
	}
}

// Text returns the field value rendered as a string.
func (r Record) Text(f Field) string {
	switch f {
	case FieldNIM:
		return r.NIM
	case FieldNama:
		return r.Nama
	case FieldEmail:
		return r.Email
	case FieldJurusan:
		return r.Jurusan
	case FieldSemester:
		return strconv.Itoa(r.Semester)
	case FieldIPK:
		return strconv.FormatFloat(r.IPK, 'f', -1, 64)
	case FieldTanggalMasuk:
		return r.TanggalMasuk
	default:
		return ""
	}
}

// FoldedText returns the lower-cased field value used by search and
// lexical comparison.
func (r Record) FoldedText(f Field) string {
	return strings.ToLower(r.Text(f))
}

// Compare orders two records by field: numerically for numeric fields,
// otherwise by ordinal comparison of the lower-cased strings.
func Compare(a, b Record, f Field) int {
	if f.IsNumeric() {
		return cmp.Compare(a.Number(f), b.Number(f))
	}
	return strings.Compare(a.FoldedText(f), b.FoldedText(f))
}

// CompareLexical orders two records by the lower-cased string value of the
// field regardless of its type. Binary search relies on this ordering.
func CompareLexical(a, b Record, f Field) int {
	return strings.Compare(a.FoldedText(f), b.FoldedText(f))
}

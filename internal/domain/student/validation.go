package student

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FIELD RULES
// ══════════════════════════════════════════════════════════════════════════════

const (
	MaxNIMLength     = 50
	MinNamaLength    = 2
	MaxNamaLength    = 100
	MinJurusanLength = 2
	MaxThesisLength  = 200

	MinSemester = 1
	MaxSemester = 14

	MinIPK = 0.0
	MaxIPK = 4.0
)

// Error map keys. Field keys match the JSON names of the record.
const (
	KeyNIM      = "nim"
	KeyNama     = "nama"
	KeyEmail    = "email"
	KeyJurusan  = "jurusan"
	KeySemester = "semester"
	KeyIPK      = "ipk"
	KeyThesis   = "judulTesis"

	// KeyGeneral holds the message of a check that faulted internally.
	KeyGeneral = "general"
)

// errorKeyOrder fixes which message FieldErrors.First reports.
var errorKeyOrder = []string{KeyGeneral, KeyNIM, KeyNama, KeyEmail, KeyJurusan, KeySemester, KeyIPK, KeyThesis}

var (
	lettersAndSpaces = regexp.MustCompile(`^[\p{L} ]+$`)
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidationResult is the outcome of a single field check.
// Validators never panic and never return errors; they always return a result.
type ValidationResult struct {
	Valid   bool
	Message string
}

func ok() ValidationResult { return ValidationResult{Valid: true} }

func fail(msg string) ValidationResult { return ValidationResult{Message: msg} }

func failf(format string, args ...any) ValidationResult { return fail(fmt.Sprintf(format, args...)) }

// ══════════════════════════════════════════════════════════════════════════════
// SINGLE-FIELD VALIDATORS
// ══════════════════════════════════════════════════════════════════════════════

// ValidateNIM checks the student number.
func ValidateNIM(value string) ValidationResult {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("NIM tidak boleh kosong")
	}
	if utf8.RuneCountInString(v) > MaxNIMLength {
		return failf("NIM maksimal %d karakter", MaxNIMLength)
	}
	return ok()
}

// ValidateNama checks the full name: letters and spaces, 2-100 characters.
func ValidateNama(value string) ValidationResult {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Nama tidak boleh kosong")
	}
	n := utf8.RuneCountInString(v)
	if n < MinNamaLength {
		return failf("Nama minimal %d karakter", MinNamaLength)
	}
	if n > MaxNamaLength {
		return failf("Nama maksimal %d karakter", MaxNamaLength)
	}
	if !lettersAndSpaces.MatchString(v) {
		return fail("Nama hanya boleh berisi huruf dan spasi")
	}
	return ok()
}

// ValidateEmail checks local@domain.tld syntax.
func ValidateEmail(value string) ValidationResult {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Email tidak boleh kosong")
	}
	if !emailPattern.MatchString(v) {
		return fail("Format email tidak valid (contoh: nama@domain.com)")
	}
	return ok()
}

// ValidateJurusan checks the department name: letters and spaces, at least 2 characters.
func ValidateJurusan(value string) ValidationResult {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Jurusan tidak boleh kosong")
	}
	if utf8.RuneCountInString(v) < MinJurusanLength {
		return failf("Jurusan minimal %d karakter", MinJurusanLength)
	}
	if !lettersAndSpaces.MatchString(v) {
		return fail("Jurusan hanya boleh berisi huruf dan spasi")
	}
	return ok()
}

// ValidateIPK checks the grade point average. It accepts Go numbers,
// json.Number and numeric strings as they arrive from forms and files.
func ValidateIPK(value any) ValidationResult {
	f, isNumber := toFloat(value)
	if !isNumber || math.IsNaN(f) || math.IsInf(f, 0) {
		return fail("IPK harus berupa angka")
	}
	if f < MinIPK || f > MaxIPK {
		return failf("IPK harus antara %.2f dan %.2f", MinIPK, MaxIPK)
	}
	return ok()
}

// ValidateSemester checks the semester: an integer between 1 and 14.
func ValidateSemester(value any) ValidationResult {
	n, isInt := toInt(value)
	if !isInt {
		return fail("Semester harus berupa bilangan bulat")
	}
	if n < MinSemester || n > MaxSemester {
		return failf("Semester harus antara %d dan %d", MinSemester, MaxSemester)
	}
	return ok()
}

// ValidateThesis checks the thesis title of a graduate record.
func ValidateThesis(value string) ValidationResult {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail("Judul tesis wajib diisi untuk mahasiswa pascasarjana")
	}
	if utf8.RuneCountInString(v) > MaxThesisLength {
		return failf("Judul tesis maksimal %d karakter", MaxThesisLength)
	}
	return ok()
}

// ══════════════════════════════════════════════════════════════════════════════
// WHOLE-RECORD VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// FieldErrors is the outcome of ValidateAllFields.
type FieldErrors struct {
	Valid  bool
	Errors map[string]string
}

// First returns the first failing message in field order, or "".
func (fe FieldErrors) First() string {
	for _, k := range errorKeyOrder {
		if msg, found := fe.Errors[k]; found {
			return msg
		}
	}
	return ""
}

// FirstKey returns the key of the first failing field, or "".
func (fe FieldErrors) FirstKey() string {
	for _, k := range errorKeyOrder {
		if _, found := fe.Errors[k]; found {
			return k
		}
	}
	return ""
}

// Err converts the outcome into a validation DomainError, nil when valid.
func (fe FieldErrors) Err(op string) error {
	if fe.Valid {
		return nil
	}
	return shared.NewDomainError("student", op, shared.ErrValidation, fe.First())
}

type fieldCheck struct {
	key   string
	check func(Record) ValidationResult
}

// fieldChecks run in order; graduate-only checks skip standard records.
var fieldChecks = []fieldCheck{
	{KeyNIM, func(r Record) ValidationResult { return ValidateNIM(r.NIM) }},
	{KeyNama, func(r Record) ValidationResult { return ValidateNama(r.Nama) }},
	{KeyEmail, func(r Record) ValidationResult { return ValidateEmail(r.Email) }},
	{KeyJurusan, func(r Record) ValidationResult { return ValidateJurusan(r.Jurusan) }},
	{KeySemester, func(r Record) ValidationResult { return ValidateSemester(r.Semester) }},
	{KeyIPK, func(r Record) ValidationResult { return ValidateIPK(r.IPK) }},
	{KeyThesis, func(r Record) ValidationResult {
		thesis, graduate := r.Thesis()
		if !graduate {
			return ok()
		}
		return ValidateThesis(thesis)
	}},
}

// ValidateAllFields runs every field check against r. A fault inside a
// check is recovered and reported as a generic invalid result.
func ValidateAllFields(r Record) (result FieldErrors) {
	defer func() {
		if p := recover(); p != nil {
			result = FieldErrors{
				Valid:  false,
				Errors: map[string]string{KeyGeneral: "Terjadi kesalahan saat validasi data"},
			}
		}
	}()

	errs := make(map[string]string)
	if r.Program != nil && !r.Program.Kind.IsValid() {
		errs[KeyThesis] = "Jenis program tidak dikenal: " + string(r.Program.Kind)
	}
	for _, fc := range fieldChecks {
		if _, seen := errs[fc.key]; seen {
			continue
		}
		if res := fc.check(r); !res.Valid {
			errs[fc.key] = res.Message
		}
	}
	return FieldErrors{Valid: len(errs) == 0, Errors: errs}
}

// ══════════════════════════════════════════════════════════════════════════════
// NUMBER COERCION
// ══════════════════════════════════════════════════════════════════════════════

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	f, isNumber := toFloat(value)
	if !isNumber || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

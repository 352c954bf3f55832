package student

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

func TestInput_ToRecord(t *testing.T) {
	in := Input{
		NIM:      " if123456 ",
		Nama:     " Budi Santoso ",
		Email:    "budi@kampus.ac.id",
		Jurusan:  "Teknik Informatika",
		Semester: 5,
		IPK:      3.45,
	}

	r := in.ToRecord("id-1", "2024-09-01")

	assert.Equal(t, "id-1", r.ID)
	assert.Equal(t, "IF123456", r.NIM)
	assert.Equal(t, "Budi Santoso", r.Nama)
	assert.Equal(t, "2024-09-01", r.TanggalMasuk)
	assert.Equal(t, KindStandard, r.Kind())

	in.TanggalMasuk = "2020-02-02"
	assert.Equal(t, "2020-02-02", in.ToRecord("id-2", "2024-09-01").TanggalMasuk)
}

func TestPatch_ApplyKeepsIdentity(t *testing.T) {
	r := validRecord()
	nim := "if999"
	ipk := 3.9

	p := Patch{NIM: &nim, IPK: &ipk}
	merged := p.Apply(r)

	assert.Equal(t, r.ID, merged.ID)
	assert.Equal(t, r.TanggalMasuk, merged.TanggalMasuk)
	assert.Equal(t, r.Nama, merged.Nama)
	assert.Equal(t, "IF999", merged.NIM)
	assert.Equal(t, 3.9, merged.IPK)
	assert.Equal(t, "IF123456", r.NIM, "original must not change")
	assert.True(t, p.ChangesNIM(r))
	assert.Equal(t, []string{"nim", "ipk"}, p.ChangedFields())
}

func TestPatch_SameNIMDifferentCaseIsNoChange(t *testing.T) {
	nim := "if123456"
	assert.False(t, Patch{NIM: &nim}.ChangesNIM(validRecord()))
	assert.True(t, Patch{}.IsEmpty())
}

func TestPatch_ProgramSwitch(t *testing.T) {
	r := validRecord()

	grad := Patch{Program: GraduateProgram("Tesis")}.Apply(r)
	assert.True(t, grad.IsGraduate())

	back := Patch{Program: &Program{Kind: KindStandard}}.Apply(grad)
	assert.Nil(t, back.Program)
	_, ok := back.Thesis()
	assert.False(t, ok)
}

func TestRecord_JSONShape(t *testing.T) {
	data, err := json.Marshal(validRecord())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"id", "nim", "nama", "email", "jurusan", "semester", "ipk", "tanggalMasuk"} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "program")
}

func TestParseField(t *testing.T) {
	f, err := ParseField("IPK")
	require.NoError(t, err)
	assert.Equal(t, FieldIPK, f)
	assert.True(t, f.IsNumeric())

	f, err = ParseField("tanggal_masuk")
	require.NoError(t, err)
	assert.Equal(t, FieldTanggalMasuk, f)

	_, err = ParseField("alamat")
	assert.True(t, shared.IsValidation(err))
}

func TestCompare(t *testing.T) {
	a := Record{Nama: "andi", Semester: 10}
	b := Record{Nama: "Budi", Semester: 9}

	assert.Negative(t, Compare(a, b, FieldNama))
	assert.Positive(t, Compare(a, b, FieldSemester))
	assert.Negative(t, CompareLexical(a, b, FieldSemester), "lexical: \"10\" < \"9\"")
}

func TestClone_CopiesProgram(t *testing.T) {
	r := Input{NIM: "IF1", Program: GraduateProgram("Tata Kelola Data")}.ToRecord("id-1", "2024-09-01")
	original := []Record{r}

	cloned := Clone(original)
	cloned[0].Program.Thesis = "Diubah"
	one := original[0].Copy()
	one.Program.Kind = KindStandard

	thesis, ok := original[0].Thesis()
	assert.True(t, ok)
	assert.Equal(t, "Tata Kelola Data", thesis)
	assert.Nil(t, Clone(nil))
}

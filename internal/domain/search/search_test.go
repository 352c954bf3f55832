package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/student"
)

func roster() []student.Record {
	return []student.Record{
		{ID: "1", NIM: "IF003", Nama: "Citra Lestari", Jurusan: "Informatika", Semester: 5, IPK: 3.2},
		{ID: "2", NIM: "IF001", Nama: "Andi Wijaya", Jurusan: "Sistem Informasi", Semester: 3, IPK: 3.75},
		{ID: "3", NIM: "IF005", Nama: "Budi Santoso", Jurusan: "Informatika", Semester: 7, IPK: 2.9},
		{ID: "4", NIM: "IF002", Nama: "Dewi Anggraini", Jurusan: "Matematika", Semester: 3, IPK: 3.75},
	}
}

func TestLinear(t *testing.T) {
	in := roster()

	res := Linear(in, "BUDI", student.FieldNama)

	require.True(t, res.Found)
	assert.Equal(t, 2, res.Index)
	assert.Equal(t, "3", res.Record.ID)
	assert.Equal(t, 3, res.Comparisons)
	assert.Equal(t, ComplexityLinear, res.Complexity)
}

func TestLinear_NotFoundScansEverything(t *testing.T) {
	res := Linear(roster(), "zaki", student.FieldNama)

	assert.False(t, res.Found)
	assert.Equal(t, NotFound, res.Index)
	assert.Nil(t, res.Record)
	assert.Equal(t, 4, res.Comparisons)
}

func TestLinear_NumericFieldMatchesText(t *testing.T) {
	res := Linear(roster(), "3.75", student.FieldIPK)

	require.True(t, res.Found)
	assert.Equal(t, "2", res.Record.ID)
}

func TestLinearAll_PreservesOrder(t *testing.T) {
	res := LinearAll(roster(), "informa", student.FieldJurusan)

	assert.True(t, res.Found())
	assert.Equal(t, []string{"1", "2", "3"}, recordIDs(res.Records()))
	assert.Equal(t, 0, res.Matches[0].Index)
	assert.Equal(t, 4, res.Comparisons)
}

func TestBinary_OnSortedInput(t *testing.T) {
	sorted := SortForBinary(roster(), student.FieldNIM)
	require.Equal(t, []string{"IF001", "IF002", "IF003", "IF005"}, nims(sorted))

	for i, nim := range []string{"if001", "IF002", "If003", "if005"} {
		res := Binary(sorted, nim, student.FieldNIM)
		require.True(t, res.Found, nim)
		assert.Equal(t, i, res.Index)
		assert.True(t, student.SameNIM(nim, sorted[res.Index].NIM))
		assert.LessOrEqual(t, res.Comparisons, 3)
	}

	res := Binary(sorted, "IF004", student.FieldNIM)
	assert.False(t, res.Found)
	assert.Equal(t, NotFound, res.Index)
	assert.Equal(t, ComplexityBinary, res.Complexity)
}

func TestBinary_ExactMatchOnly(t *testing.T) {
	sorted := SortForBinary(roster(), student.FieldNama)

	assert.False(t, Binary(sorted, "budi", student.FieldNama).Found)
	assert.True(t, Binary(sorted, "budi santoso", student.FieldNama).Found)
}

func TestBinary_Empty(t *testing.T) {
	res := Binary(nil, "x", student.FieldNIM)
	assert.False(t, res.Found)
	assert.Zero(t, res.Comparisons)
}

func TestSortForBinary_DoesNotTouchInput(t *testing.T) {
	in := roster()
	before := student.Clone(in)

	_ = SortForBinary(in, student.FieldNama)

	assert.Equal(t, before, in)
}

func TestSequentialPattern(t *testing.T) {
	in := []student.Record{
		{ID: "1", Nama: "Ana"},
		{ID: "2", Nama: "Banana"},
		{ID: "3", Nama: "Bo"},
	}

	res := SequentialPattern(in, "ana", student.FieldNama)

	assert.Equal(t, []string{"1", "2"}, recordIDs(res.Records()))
	// 3 records + "ana" in "ana" (1) + "banana" (2, stops at first hit) + "bo" (0)
	assert.Equal(t, 6, res.Comparisons)
	assert.Equal(t, ComplexityPattern, res.Complexity)
}

func TestSequentialPattern_EmptyPatternMatchesAll(t *testing.T) {
	res := SequentialPattern(roster(), "", student.FieldNama)

	assert.Len(t, res.Matches, 4)
	assert.Equal(t, 4, res.Comparisons)
}

func TestCompareAlgorithms(t *testing.T) {
	in := roster()

	cmp := CompareAlgorithms(in, "if005", student.FieldNIM)

	require.True(t, cmp.Linear.Found)
	require.True(t, cmp.Binary.Found)
	assert.Equal(t, "3", cmp.Linear.Record.ID)
	assert.Equal(t, "3", cmp.Binary.Record.ID)
	assert.Equal(t, 3, cmp.Linear.Comparisons)
	assert.Equal(t, "IF005", cmp.Sorted[cmp.Binary.Index].NIM)
	assert.Equal(t, cmp.Linear.Comparisons-cmp.Binary.Comparisons, cmp.Saved())
	assert.Equal(t, "1", in[0].ID, "input order must be preserved")
}

func recordIDs(records []student.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func nims(records []student.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.NIM
	}
	return out
}

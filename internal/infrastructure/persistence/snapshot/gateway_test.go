package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/student-roster/pkg/timeutil"
)

var fixedNow = time.Date(2024, 9, 1, 20, 30, 0, 0, time.UTC)

func sampleRecords() []student.Record {
	return []student.Record{
		{
			ID: "a1", NIM: "IF001", Nama: "Andi Wijaya", Email: "andi@kampus.ac.id",
			Jurusan: "Informatika", Semester: 3, IPK: 3.5, TanggalMasuk: "2023-08-21",
		},
		{
			ID: "b2", NIM: "SI002", Nama: "Sari Dewi", Email: "sari@kampus.ac.id",
			Jurusan: "Sistem Informasi", Semester: 9, IPK: 3.75, TanggalMasuk: "2020-08-17",
			Program: student.GraduateProgram("Analisis Sentimen"),
		},
	}
}

func newGateway(t *testing.T) (*Gateway, *memory.Store, *timeutil.FixedClock) {
	t.Helper()
	store := memory.New(0)
	clock := timeutil.NewFixedClock(fixedNow)
	return New(store, WithClock(clock)), store, clock
}

func TestGateway_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newGateway(t)

	saved, err := g.Save(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Count)
	assert.False(t, saved.BackedUp)
	assert.Equal(t, fixedNow, saved.Timestamp)

	raw, err := store.Get(ctx, DefaultCurrentKey)
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, FormatVersion, env.Version)
	assert.Equal(t, "2024-09-01T20:30:00.000Z", env.Timestamp)
	assert.Equal(t, 2, env.Count)

	loaded, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), loaded.Records)
	ts, err := timeutil.ParseISO(loaded.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(saved.Timestamp))
}

func TestGateway_LoadEmptyStore(t *testing.T) {
	g, _, _ := newGateway(t)

	res, err := g.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, res.Records)
	assert.Zero(t, res.Count())
	assert.Empty(t, res.Timestamp)
}

func TestGateway_SaveBacksUpPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	g, store, clock := newGateway(t)

	_, err := g.Save(ctx, sampleRecords()[:1])
	require.NoError(t, err)
	first, _ := store.Get(ctx, DefaultCurrentKey)

	clock.Advance(time.Minute)
	res, err := g.Save(ctx, sampleRecords())
	require.NoError(t, err)
	assert.True(t, res.BackedUp)

	backup, err := store.Get(ctx, DefaultBackupKey)
	require.NoError(t, err)
	assert.Equal(t, first, backup)
}

func TestGateway_ClearThenRestore(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGateway(t)

	_, err := g.Save(ctx, sampleRecords())
	require.NoError(t, err)

	require.NoError(t, g.Clear(ctx))

	empty, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Count())

	restored, err := g.RestoreFromBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), restored.Records)

	again, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), again.Records)
}

func TestGateway_ClearEmptyStoreIsNoop(t *testing.T) {
	ctx := context.Background()
	g, _, _ := newGateway(t)

	require.NoError(t, g.Clear(ctx))

	has, err := g.HasBackup(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGateway_RestoreWithoutBackup(t *testing.T) {
	g, _, _ := newGateway(t)

	_, err := g.RestoreFromBackup(context.Background())

	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.ErrorIs(t, err, shared.ErrBackupNotFound)
	assert.Equal(t, "Tidak ada backup yang tersedia", shared.MessageOf(err))
}

func TestGateway_RestoreCorruptBackupLeavesCurrent(t *testing.T) {
	ctx := context.Background()
	g, store, _ := newGateway(t)

	_, err := g.Save(ctx, sampleRecords())
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, DefaultBackupKey, "{broken"))

	_, err = g.RestoreFromBackup(ctx)
	assert.ErrorIs(t, err, shared.ErrSyntax)

	loaded, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Records, 2)
}

func TestGateway_LoadErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind error
	}{
		{"unparseable", `{"version":"1.0", data: [}`, shared.ErrSyntax},
		{"missing data", `{"version":"1.0","count":0}`, shared.ErrInvalidFormat},
		{"data not array", `{"data":{"nim":"IF1"}}`, shared.ErrInvalidFormat},
		{"data null", `{"data":null}`, shared.ErrInvalidFormat},
		{"top level array", `[1,2,3]`, shared.ErrInvalidFormat},
		{"element not object", `{"data":[1]}`, shared.ErrInvalidFormat},
		{"wrong field type", `{"data":[{"semester":"lima"}]}`, shared.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			g, store, _ := newGateway(t)
			require.NoError(t, store.Set(ctx, DefaultCurrentKey, tt.raw))

			res, err := g.Load(ctx)

			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.True(t, shared.IsPersistence(err))
		})
	}
}

func TestGateway_SaveCapacityExceeded(t *testing.T) {
	ctx := context.Background()
	store := memory.New(64)
	g := New(store, WithClock(timeutil.NewFixedClock(fixedNow)))

	_, err := g.Save(ctx, sampleRecords())

	require.Error(t, err)
	assert.True(t, shared.IsCapacity(err))
	assert.Contains(t, shared.MessageOf(err), "Penyimpanan penuh")
}

func TestGateway_SaveGenericWriteFault(t *testing.T) {
	g := New(&faultyStore{err: errors.New("disk on fire")})

	_, err := g.Save(context.Background(), sampleRecords())

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.False(t, shared.IsCapacity(err))
}

func TestGateway_KeyPrefix(t *testing.T) {
	ctx := context.Background()
	store := memory.New(0)
	g := New(store, WithKeyPrefix("kampus-a:"))

	_, err := g.Save(ctx, sampleRecords())
	require.NoError(t, err)

	current, backup := g.Keys()
	assert.Equal(t, "kampus-a:mahasiswa_data", current)
	assert.Equal(t, "kampus-a:mahasiswa_data_backup", backup)
	_, err = store.Get(ctx, current)
	assert.NoError(t, err)
}

// faultyStore fails every write with err.
type faultyStore struct {
	err error
}

func (f *faultyStore) Get(context.Context, string) (string, error) {
	return "", shared.ErrNotFound
}

func (f *faultyStore) Set(context.Context, string, string) error { return f.err }

func (f *faultyStore) Delete(context.Context, string) error { return f.err }

func TestExportJSON_ImportRoundTrip(t *testing.T) {
	g, _, _ := newGateway(t)

	file, err := g.ExportJSON(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "data-mahasiswa-2024-09-02.json", file.Name)
	assert.Equal(t, "application/json", file.ContentType)
	assert.Contains(t, string(file.Content), "\n  \"exportedBy\": \""+DefaultExportedBy+"\"")

	imported, err := g.ImportJSON(file.Content)
	require.NoError(t, err)
	assert.ElementsMatch(t, sampleRecords(), imported.Records)
	assert.Equal(t, "2024-09-01T20:30:00.000Z", imported.ExportedAt)
	assert.Equal(t, DefaultExportedBy, imported.ExportedBy)
}

func TestExportCSV(t *testing.T) {
	g, _, _ := newGateway(t)
	records := sampleRecords()
	records[0].Nama = `Andi "AW" Wijaya`
	records[1].IPK = 3

	file, err := g.ExportCSV(records)
	require.NoError(t, err)

	lines := strings.Split(string(file.Content), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, CSVHeader, lines[0])
	assert.Equal(t, `"IF001","Andi ""AW"" Wijaya","andi@kampus.ac.id","Informatika","3","3.50","2023-08-21"`, lines[1])
	assert.Equal(t, `"SI002","Sari Dewi","sari@kampus.ac.id","Sistem Informasi","9","3.00","2020-08-17"`, lines[2])
	assert.Equal(t, "data-mahasiswa-2024-09-02.csv", file.Name)
}

func TestExportCSV_EmptyHasHeaderOnly(t *testing.T) {
	g, _, _ := newGateway(t)

	file, err := g.ExportCSV(nil)

	require.NoError(t, err)
	assert.Equal(t, CSVHeader, string(file.Content))
}

func TestImportJSON_IgnoresExtraKeys(t *testing.T) {
	res, err := ImportJSON([]byte(`{"source":"lama","data":[{"id":"x","nim":"if9","nama":"Zaki"}]}`))

	require.NoError(t, err)
	require.Equal(t, 1, res.Count())
	assert.Equal(t, "if9", res.Records[0].NIM, "import does not normalize")
}

func TestImportJSON_Errors(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`{"records":[]}`,
		`{"data":"many"}`,
		`{"data":[["nested"]]}`,
	}
	for _, in := range inputs {
		_, err := ImportJSON([]byte(in))
		require.Error(t, err, in)
		assert.ErrorIs(t, err, shared.ErrImportFormat, in)
	}
}

package pebble

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
)

func openMem(t *testing.T, fs vfs.FS, opts ...Option) *Store {
	t.Helper()
	s, err := Open("roster-db", append([]Option{WithFS(fs)}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := openMem(t, vfs.NewMem())
	defer s.Close()

	_, err := s.Get(ctx, "k")
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.True(t, shared.IsNotFound(err))
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	fs := vfs.NewMem()

	s := openMem(t, fs)
	require.NoError(t, s.Set(ctx, "mahasiswa_data", `{"data":[]}`))
	require.NoError(t, s.Close())

	reopened := openMem(t, fs)
	defer reopened.Close()
	v, err := reopened.Get(ctx, "mahasiswa_data")
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, v)
}

func TestStore_MaxValueBytes(t *testing.T) {
	s := openMem(t, vfs.NewMem(), WithMaxValueBytes(4))
	defer s.Close()

	err := s.Set(context.Background(), "k", strings.Repeat("x", 5))
	assert.True(t, shared.IsCapacity(err))
}

func TestStore_ClosedStoreFails(t *testing.T) {
	s := openMem(t, vfs.NewMem())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, shared.IsPersistence(err))
}

func TestStore_BacksSnapshotGateway(t *testing.T) {
	ctx := context.Background()
	s := openMem(t, vfs.NewMem(), WithPrefix("kampus/"))
	defer s.Close()
	g := snapshot.New(s)

	records := []student.Record{{ID: "1", NIM: "IF1", Nama: "Ani", Semester: 4, IPK: 3.3}}
	_, err := g.Save(ctx, records)
	require.NoError(t, err)

	loaded, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded.Records)
	assert.Equal(t, "pebble", s.Name())
}

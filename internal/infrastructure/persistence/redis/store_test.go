package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
	"github.com/alem-hub/student-roster/pkg/retry"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	opts = append([]Option{WithRetrier(retry.New(retry.WithMaxAttempts(2), retry.WithInitialDelay(time.Millisecond)))}, opts...)
	return NewStoreFromClient(client, opts...), mr
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, err := s.Get(ctx, "mahasiswa_data")
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, s.Set(ctx, "mahasiswa_data", `{"data":[]}`))
	assert.True(t, mr.Exists(DefaultPrefix+"mahasiswa_data"))

	v, err := s.Get(ctx, "mahasiswa_data")
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, v)

	require.NoError(t, s.Delete(ctx, "mahasiswa_data"))
	assert.False(t, mr.Exists(DefaultPrefix+"mahasiswa_data"))
	assert.Equal(t, "redis", s.Name())
}

func TestStore_Prefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t, WithPrefix("kampus-b:"))

	require.NoError(t, s.Set(ctx, "k", "v"))

	got, err := mr.Get("kampus-b:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestStore_MaxValueBytes(t *testing.T) {
	s, _ := newTestStore(t, WithMaxValueBytes(8))

	err := s.Set(context.Background(), "k", strings.Repeat("x", 9))

	assert.True(t, shared.IsCapacity(err))
}

func TestStore_OOMReplyIsCapacity(t *testing.T) {
	s, mr := newTestStore(t)
	mr.SetError("OOM command not allowed when used memory > 'maxmemory'.")

	err := s.Set(context.Background(), "k", "v")

	require.Error(t, err)
	assert.True(t, shared.IsCapacity(err))
}

func TestStore_OtherReplyIsPersistenceError(t *testing.T) {
	s, mr := newTestStore(t)
	mr.SetError("ERR something odd")

	err := s.Set(context.Background(), "k", "v")

	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.False(t, shared.IsRetryable(err))
}

func TestStore_ServerGoneIsUnavailable(t *testing.T) {
	s, mr := newTestStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "k")

	require.Error(t, err)
	assert.True(t, shared.IsRetryable(err))
}

func TestStore_BacksSnapshotGateway(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	g := snapshot.New(s)

	records := []student.Record{{ID: "1", NIM: "IF1", Nama: "Ani", Semester: 1, IPK: 3}}
	_, err := g.Save(ctx, records)
	require.NoError(t, err)
	require.NoError(t, g.Clear(ctx))

	restored, err := g.RestoreFromBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, restored.Records)
}

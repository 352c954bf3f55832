package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
)

func TestClassify(t *testing.T) {
	full := &pgconn.PgError{Code: "53100", Message: "could not extend file"}
	assert.True(t, shared.IsCapacity(classify("Set", full)))
	assert.True(t, shared.IsCapacity(classify("Set", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "54000"}))))

	syntax := &pgconn.PgError{Code: "42601"}
	err := classify("Set", syntax)
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.False(t, shared.IsRetryable(err))

	assert.True(t, shared.IsRetryable(classify("Get", errors.New("dial tcp: connection refused"))))
	assert.ErrorIs(t, classify("Get", context.Canceled), shared.ErrOperationCanceled)
	assert.False(t, shared.IsRetryable(classify("Get", ErrConnectionClosed)))
}

func TestGetMigrations(t *testing.T) {
	migs := GetMigrations()
	require.Len(t, migs, 1)
	assert.Contains(t, migs[0].UpSQL, "roster_snapshots")
	assert.Equal(t, 1, migs[0].Version)
}

// TestSnapshotStore_Integration runs against a real database when
// ROSTER_TEST_DATABASE_URL is set.
func TestSnapshotStore_Integration(t *testing.T) {
	url := os.Getenv("ROSTER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ROSTER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.URL = url
	conn, err := NewConnection(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, NewMigrator(conn).Migrate(ctx))
	// Applied migrations are skipped on the second run.
	require.NoError(t, NewMigrator(conn).Migrate(ctx))

	s := NewSnapshotStore(conn)
	key := "test_" + t.Name()
	t.Cleanup(func() { _ = s.Delete(context.Background(), key) })

	_, err = s.Get(ctx, key)
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, s.Set(ctx, key, "one"))
	require.NoError(t, s.Set(ctx, key, "two"))
	v, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "two", v)

	_, err = s.UpdatedAt(ctx, key)
	assert.NoError(t, err)

	g := snapshot.New(s, snapshot.WithKeyPrefix(key+":"))
	records := []student.Record{{ID: "1", NIM: "IF1", Nama: "Ani", Semester: 2, IPK: 3.1}}
	_, err = g.Save(ctx, records)
	require.NoError(t, err)
	loaded, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded.Records)
	require.NoError(t, g.Clear(ctx))
	current, backup := g.Keys()
	_ = s.Delete(ctx, current)
	_ = s.Delete(ctx, backup)
}

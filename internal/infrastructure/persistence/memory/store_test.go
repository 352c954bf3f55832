package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	_, err := s.Get(ctx, "k")
	assert.True(t, shared.IsNotFound(err))

	require.NoError(t, s.Set(ctx, "k", "value"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, 6, s.Used())

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	assert.Zero(t, s.Used())
	assert.Equal(t, DefaultQuotaBytes, s.Quota())
}

func TestStore_QuotaRejectsAndKeepsOldValue(t *testing.T) {
	ctx := context.Background()
	s := New(20)

	require.NoError(t, s.Set(ctx, "k", "0123456789"))

	err := s.Set(ctx, "k", strings.Repeat("x", 30))
	require.Error(t, err)
	assert.True(t, shared.IsCapacity(err))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", v)

	// replacing counts only the new value
	require.NoError(t, s.Set(ctx, "k", strings.Repeat("y", 19)))
	assert.Equal(t, 20, s.Used())
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, New(0).Set(ctx, "k", "v"), context.Canceled)
}

package guarded

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/student-roster/pkg/circuitbreaker"
	"github.com/alem-hub/student-roster/pkg/logger"
)

// flakyStore fails every call with err until healed.
type flakyStore struct {
	*memory.Store
	err   error
	calls int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return f.Store.Set(ctx, key, value)
}

func unavailable() error {
	return shared.NewDomainError("redis", "Get", shared.ErrStoreUnavailable, "connection refused")
}

func TestStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	s := Wrap(memory.New(0), logger.Nop())

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.True(t, shared.IsNotFound(err))
	assert.Equal(t, "memory", s.Name())
}

func TestStore_NotFoundDoesNotTrip(t *testing.T) {
	s := Wrap(memory.New(0), logger.Nop())
	for i := 0; i < 10; i++ {
		_, err := s.Get(context.Background(), "missing")
		assert.True(t, shared.IsNotFound(err))
	}
	assert.Equal(t, circuitbreaker.StateClosed, s.Breaker().State())
}

func TestStore_OpensAfterRepeatedOutages(t *testing.T) {
	ctx := context.Background()
	inner := &flakyStore{Store: memory.New(0), err: unavailable()}
	s := WrapWith(inner, circuitbreaker.New("test",
		circuitbreaker.WithFailureThreshold(2),
		circuitbreaker.WithTimeout(time.Hour),
		circuitbreaker.WithIsFailure(shared.IsRetryable),
	))

	for i := 0; i < 2; i++ {
		_, err := s.Get(ctx, "k")
		assert.True(t, shared.IsRetryable(err))
	}
	assert.Equal(t, circuitbreaker.StateOpen, s.Breaker().State())

	err := s.Set(ctx, "k", "v")
	assert.True(t, shared.IsRetryable(err))
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls, "open circuit short-circuits the store")
}

func TestStore_CapacityDoesNotTrip(t *testing.T) {
	s := WrapWith(memory.New(4), circuitbreaker.New("test",
		circuitbreaker.WithFailureThreshold(1),
		circuitbreaker.WithIsFailure(shared.IsRetryable),
	))

	err := s.Set(context.Background(), "key", "too long")
	assert.True(t, shared.IsCapacity(err))
	assert.Equal(t, circuitbreaker.StateClosed, s.Breaker().State())
}

// Package guarded wraps a snapshot store in a circuit breaker so that a
// store which keeps timing out fails fast instead of stalling every command.
package guarded

import (
	"context"
	"errors"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/pkg/circuitbreaker"
	"github.com/alem-hub/student-roster/pkg/logger"
)

// Store is a student.SnapshotStore that routes every call through a
// circuit breaker. Only retryable (unavailable) errors trip the breaker.
type Store struct {
	inner   student.SnapshotStore
	breaker *circuitbreaker.CircuitBreaker
}

// Wrap guards inner with the preset store breaker. State changes are logged
// at warn.
func Wrap(inner student.SnapshotStore, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	backend := student.BackendName(inner)
	cb := circuitbreaker.StoreBreaker(backend, shared.IsRetryable, func(name string, from, to circuitbreaker.State) {
		log.Warn("store circuit state changed",
			logger.Backend(backend),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	return WrapWith(inner, cb)
}

// WrapWith guards inner with a caller-supplied breaker.
func WrapWith(inner student.SnapshotStore, cb *circuitbreaker.CircuitBreaker) *Store {
	return &Store{inner: inner, breaker: cb}
}

// Name implements student.NamedStore.
func (s *Store) Name() string { return student.BackendName(s.inner) }

// Breaker exposes the breaker for status output.
func (s *Store) Breaker() *circuitbreaker.CircuitBreaker { return s.breaker }

// Get implements student.SnapshotStore.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		v, err := s.inner.Get(ctx, key)
		value = v
		return err
	})
	return value, translate("Get", err)
}

// Set implements student.SnapshotStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.inner.Set(ctx, key, value)
	})
	return translate("Set", err)
}

// Delete implements student.SnapshotStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.inner.Delete(ctx, key)
	})
	return translate("Delete", err)
}

// translate turns a rejected call into a store-unavailable error and passes
// everything else through untouched.
func translate(op string, err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return shared.WrapError("guarded", op, shared.ErrStoreUnavailable, "Penyimpanan sedang tidak tersedia", err)
	}
	return err
}

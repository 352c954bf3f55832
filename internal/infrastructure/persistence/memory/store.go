// Package memory implements an in-process snapshot store with a byte
// quota, the same constraint a browser tab's local storage imposes.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

// DefaultQuotaBytes is the default quota (5 MiB).
const DefaultQuotaBytes = 5 * 1024 * 1024

// Store is a map-backed student.SnapshotStore. Usage is the sum of key and
// value lengths; a Set that would push usage over the quota is rejected
// with shared.ErrCapacityExceeded and leaves the store unchanged.
type Store struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int
	quota int
}

// New creates a Store. A non-positive quota means DefaultQuotaBytes.
func New(quotaBytes int) *Store {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &Store{
		data:  make(map[string]string),
		quota: quotaBytes,
	}
}

// Name implements student.NamedStore.
func (s *Store) Name() string { return "memory" }

// Get implements student.SnapshotStore.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, found := s.data[key]
	if !found {
		return "", shared.NewDomainError("memory", "Get", shared.ErrNotFound, "key not found: "+key)
	}
	return v, nil
}

// Set implements student.SnapshotStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.used + len(key) + len(value)
	if old, found := s.data[key]; found {
		next -= len(key) + len(old)
	}
	if next > s.quota {
		return shared.NewDomainError("memory", "Set", shared.ErrCapacityExceeded,
			fmt.Sprintf("quota exceeded: %d of %d bytes", next, s.quota))
	}

	s.data[key] = value
	s.used = next
	return nil
}

// Delete implements student.SnapshotStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, found := s.data[key]; found {
		s.used -= len(key) + len(old)
		delete(s.data, key)
	}
	return nil
}

// Used returns the bytes currently in use.
func (s *Store) Used() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.used
}

// Quota returns the configured quota.
func (s *Store) Quota() int {
	return s.quota
}

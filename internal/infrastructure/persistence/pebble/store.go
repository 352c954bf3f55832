// Package pebble implements an embedded, on-disk snapshot store on top of
// CockroachDB's Pebble key-value engine. It gives the CLI durable storage
// without any server.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

// DefaultPrefix namespaces roster keys inside the database.
const DefaultPrefix = "roster/"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("pebble: store is closed")

// Store is a student.SnapshotStore backed by a Pebble database.
type Store struct {
	mu            sync.RWMutex
	db            *pebble.DB
	prefix        string
	maxValueBytes int
	closed        bool
}

type options struct {
	fs            vfs.FS
	prefix        string
	maxValueBytes int
}

// Option configures Open.
type Option func(*options)

// WithFS opens the database on fs instead of the OS filesystem.
// Tests use vfs.NewMem().
func WithFS(fs vfs.FS) Option {
	return func(o *options) { o.fs = fs }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithMaxValueBytes rejects values larger than n bytes with
// shared.ErrCapacityExceeded. Zero disables the check.
func WithMaxValueBytes(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxValueBytes = n
		}
	}
}

// Open opens (creating if necessary) the database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	pebbleOpts := &pebble.Options{}
	if o.fs != nil {
		pebbleOpts.FS = o.fs
	}

	db, err := pebble.Open(dir, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("pebble: failed to open %s: %w", dir, err)
	}

	return &Store{
		db:            db,
		prefix:        o.prefix,
		maxValueBytes: o.maxValueBytes,
	}, nil
}

// Name implements student.NamedStore.
func (s *Store) Name() string { return "pebble" }

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) key(k string) []byte {
	return []byte(s.prefix + k)
}

// Get implements student.SnapshotStore.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", shared.WrapError("pebble", "Get", shared.ErrPersistence, "store closed", ErrClosed)
	}

	data, closer, err := s.db.Get(s.key(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return "", shared.NewDomainError("pebble", "Get", shared.ErrNotFound, "key not found: "+key)
		}
		return "", shared.WrapError("pebble", "Get", shared.ErrPersistence, "read failed", err)
	}
	// data is only valid until closer.Close.
	value := string(data)
	if err := closer.Close(); err != nil {
		return "", shared.WrapError("pebble", "Get", shared.ErrPersistence, "read failed", err)
	}
	return value, nil
}

// Set implements student.SnapshotStore. Writes are synced to disk.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return shared.NewDomainError("pebble", "Set", shared.ErrCapacityExceeded,
			fmt.Sprintf("value of %d bytes exceeds limit of %d", len(value), s.maxValueBytes))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return shared.WrapError("pebble", "Set", shared.ErrPersistence, "store closed", ErrClosed)
	}

	if err := s.db.Set(s.key(key), []byte(value), pebble.Sync); err != nil {
		return shared.WrapError("pebble", "Set", shared.ErrPersistence, "write failed", err)
	}
	return nil
}

// Delete implements student.SnapshotStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return shared.WrapError("pebble", "Delete", shared.ErrPersistence, "store closed", ErrClosed)
	}

	if err := s.db.Delete(s.key(key), pebble.Sync); err != nil {
		return shared.WrapError("pebble", "Delete", shared.ErrPersistence, "delete failed", err)
	}
	return nil
}

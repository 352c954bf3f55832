package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/pkg/logger"
	"github.com/alem-hub/student-roster/pkg/retry"
)

// SnapshotStore is a student.SnapshotStore over the roster_snapshots table.
type SnapshotStore struct {
	conn          *Connection
	maxValueBytes int
	retrier       *retry.Retrier
	log           *logger.Logger
}

// StoreOption configures a SnapshotStore.
type StoreOption func(*SnapshotStore)

// WithMaxValueBytes rejects values larger than n bytes with
// shared.ErrCapacityExceeded. Zero disables the check.
func WithMaxValueBytes(n int) StoreOption {
	return func(s *SnapshotStore) {
		if n >= 0 {
			s.maxValueBytes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) StoreOption {
	return func(s *SnapshotStore) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSnapshotStore creates a store on conn. Run NewMigrator(conn).Migrate
// before first use.
func NewSnapshotStore(conn *Connection, opts ...StoreOption) *SnapshotStore {
	s := &SnapshotStore{
		conn: conn,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("postgres_store"))
	s.retrier = retry.StoreRetrier().With(
		retry.WithRetryIf(shared.IsRetryable),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			s.log.Warn("postgres operation failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)
	return s
}

// Name implements student.NamedStore.
func (s *SnapshotStore) Name() string { return "postgres" }

// Get implements student.SnapshotStore.
func (s *SnapshotStore) Get(ctx context.Context, key string) (string, error) {
	return retry.DoWithData(ctx, s.retrier, func(ctx context.Context) (string, error) {
		var value string
		err := s.conn.QueryRow(ctx, `SELECT value FROM roster_snapshots WHERE key = $1`, key).Scan(&value)
		if err != nil {
			if IsNoRows(err) {
				return "", shared.NewDomainError("postgres", "Get", shared.ErrNotFound, "key not found: "+key)
			}
			return "", classify("Get", err)
		}
		return value, nil
	})
}

// Set implements student.SnapshotStore as an upsert.
func (s *SnapshotStore) Set(ctx context.Context, key, value string) error {
	if s.maxValueBytes > 0 && len(value) > s.maxValueBytes {
		return shared.NewDomainError("postgres", "Set", shared.ErrCapacityExceeded,
			fmt.Sprintf("value of %d bytes exceeds limit of %d", len(value), s.maxValueBytes))
	}
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		_, err := s.conn.Exec(ctx, `
			INSERT INTO roster_snapshots (key, value, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		`, key, value)
		if err != nil {
			return classify("Set", err)
		}
		return nil
	})
}

// Delete implements student.SnapshotStore.
func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		if _, err := s.conn.Exec(ctx, `DELETE FROM roster_snapshots WHERE key = $1`, key); err != nil {
			return classify("Delete", err)
		}
		return nil
	})
}

// UpdatedAt returns when key was last written.
func (s *SnapshotStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var at time.Time
	err := s.conn.QueryRow(ctx, `SELECT updated_at FROM roster_snapshots WHERE key = $1`, key).Scan(&at)
	if err != nil {
		if IsNoRows(err) {
			return time.Time{}, shared.NewDomainError("postgres", "UpdatedAt", shared.ErrNotFound, "key not found: "+key)
		}
		return time.Time{}, classify("UpdatedAt", err)
	}
	return at, nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return shared.WrapError("postgres", op, shared.ErrOperationCanceled, "operation canceled", err)
	case errors.Is(err, ErrConnectionClosed):
		return shared.WrapError("postgres", op, shared.ErrPersistence, "connection closed", err)
	case IsCapacityError(err):
		return shared.WrapError("postgres", op, shared.ErrCapacityExceeded, "database refused write", err)
	case IsServerError(err):
		return shared.WrapError("postgres", op, shared.ErrPersistence, "database error", err)
	default:
		return shared.WrapError("postgres", op, shared.ErrStoreUnavailable, "database unavailable", err)
	}
}

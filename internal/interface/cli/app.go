package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/alem-hub/student-roster/config"
	"github.com/alem-hub/student-roster/internal/application/roster"
	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/messaging"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/guarded"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/memory"
	pebblestore "github.com/alem-hub/student-roster/internal/infrastructure/persistence/pebble"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/postgres"
	redisstore "github.com/alem-hub/student-roster/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
	"github.com/alem-hub/student-roster/pkg/logger"
	"github.com/alem-hub/student-roster/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// App bundles the components one CLI invocation works with.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Store   student.SnapshotStore
	Gateway *snapshot.Gateway
	Manager *roster.Manager
	Events  *messaging.InMemoryEventBus

	closers []func() error
}

// OpenApp opens the configured store and hydrates a Manager from it. When
// store is non-nil it is used instead of the configured backend.
func OpenApp(ctx context.Context, cfg *config.Config, log *logger.Logger, clock timeutil.Clock, store student.SnapshotStore) (*App, error) {
	app := &App{Config: cfg, Log: log}

	if store == nil {
		opened, closer, err := openStore(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		store = opened
		if closer != nil {
			app.closers = append(app.closers, closer)
		}
	}
	app.Store = store

	gwOpts := []snapshot.Option{
		snapshot.WithLogger(log),
		snapshot.WithExportedBy(cfg.App.ExportedBy),
	}
	if cfg.Storage.KeyPrefix != "" {
		gwOpts = append(gwOpts, snapshot.WithKeyPrefix(cfg.Storage.KeyPrefix))
	}
	if clock != nil {
		gwOpts = append(gwOpts, snapshot.WithClock(clock))
	}
	app.Gateway = snapshot.New(store, gwOpts...)

	app.Events = messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		WorkerPoolSize: 1,
		Logger:         log,
		EnableMetrics:  true,
	})
	app.closers = append(app.closers, app.Events.Close)
	if err := app.Events.SubscribeAll(auditHandler(log)); err != nil {
		_ = app.Close()
		return nil, err
	}

	mgrOpts := []roster.Option{
		roster.WithLogger(log),
		roster.WithFeatures(cfg.Features),
		roster.WithEventPublisher(app.Events),
		roster.WithIDGenerator(idGenerator(cfg.App.IDFormat)),
	}
	if clock != nil {
		mgrOpts = append(mgrOpts, roster.WithClock(clock))
	}
	app.Manager = roster.NewManager(app.Gateway, mgrOpts...)

	if _, err := app.Manager.Load(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func idGenerator(format config.IDFormat) roster.IDGenerator {
	if format == config.IDFormatKSUID {
		return func() string { return ksuid.New().String() }
	}
	return uuid.NewString
}

// auditHandler writes every roster change to the log.
func auditHandler(log *logger.Logger) shared.EventHandler {
	audit := log.With(logger.Component("audit"))
	return func(e shared.Event) error {
		fields := []logger.Field{
			logger.String("event_type", string(e.EventType())),
			logger.String("aggregate_id", e.AggregateID()),
			logger.Time("occurred_at", e.OccurredAt()),
		}
		for k, v := range e.Payload() {
			fields = append(fields, logger.Any(k, v))
		}
		if e.EventType() == shared.EventSaveFailed {
			audit.Warn("roster change not persisted", fields...)
			return nil
		}
		audit.Info("roster changed", fields...)
		return nil
	}
}

// Close releases the event bus and the store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// openStore builds the backend named by cfg.Storage.Backend. Network
// backends are wrapped in a circuit breaker.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (student.SnapshotStore, func() error, error) {
	storeLog := log.With(logger.Backend(string(cfg.Storage.Backend)))

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(cfg.Storage.QuotaBytes), nil, nil

	case config.BackendRedis:
		rc := cfg.Redis
		s, err := redisstore.NewStore(ctx, redisstore.Config{
			URL:          rc.URL,
			Host:         rc.Host,
			Port:         rc.Port,
			Password:     rc.Password,
			DB:           rc.DB,
			PoolSize:     rc.PoolSize,
			MinIdleConns: rc.MinIdleConns,
			DialTimeout:  rc.DialTimeout,
			ReadTimeout:  rc.ReadTimeout,
			WriteTimeout: rc.WriteTimeout,
		},
			redisstore.WithMaxValueBytes(cfg.Storage.QuotaBytes),
			redisstore.WithLogger(storeLog),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis store: %w", err)
		}
		return guarded.Wrap(s, storeLog), s.Close, nil

	case config.BackendPostgres:
		pc := postgres.DefaultConfig()
		pc.URL = cfg.Database.URL
		pc.MaxConns = int32(cfg.Database.MaxConns)
		pc.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pc.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		conn, err := postgres.NewConnection(ctx, pc)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
				conn.Close()
				return nil, nil, fmt.Errorf("migrate postgres store: %w", err)
			}
		}
		s := postgres.NewSnapshotStore(conn,
			postgres.WithMaxValueBytes(cfg.Storage.QuotaBytes),
			postgres.WithLogger(storeLog),
		)
		return guarded.Wrap(s, storeLog), func() error { conn.Close(); return nil }, nil

	case config.BackendPebble:
		if err := os.MkdirAll(cfg.Pebble.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create pebble dir: %w", err)
		}
		s, err := pebblestore.Open(cfg.Pebble.Dir, pebblestore.WithMaxValueBytes(cfg.Storage.QuotaBytes))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// Package roster owns the in-memory student collection and keeps it in sync
// with the durable snapshot.
package roster

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/student-roster/config"
	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/internal/infrastructure/persistence/snapshot"
	"github.com/alem-hub/student-roster/pkg/logger"
	"github.com/alem-hub/student-roster/pkg/timeutil"
)

const domain = "roster"

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// Gateway persists whole-roster snapshots. *snapshot.Gateway satisfies it.
type Gateway interface {
	Save(ctx context.Context, records []student.Record) (*snapshot.SaveResult, error)
	Load(ctx context.Context) (*snapshot.LoadResult, error)
	RestoreFromBackup(ctx context.Context) (*snapshot.LoadResult, error)
	Clear(ctx context.Context) error
}

// IDGenerator returns a fresh opaque record id.
type IDGenerator func() string

// MutationResult describes a completed mutation.
// The mutation is applied in memory even when Persisted is false.
type MutationResult struct {
	// Record is the added or updated record.
	Record *student.Record

	// Removed is the number of records deleted.
	Removed int

	Persisted bool
	SavedAt   time.Time

	// SaveErr is the persistence failure when Persisted is false.
	SaveErr error
}

// ══════════════════════════════════════════════════════════════════════════════
// MANAGER
// ══════════════════════════════════════════════════════════════════════════════

// Manager is the single writer of the roster. All methods are safe for
// concurrent use; mutations are serialized from validation through save.
type Manager struct {
	mu       sync.Mutex
	records  []student.Record
	gateway  Gateway
	clock    timeutil.Clock
	newID    IDGenerator
	features *config.FeatureFlags
	events   shared.EventPublisher
	log      *logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock sets the clock used for default admission dates.
func WithClock(c timeutil.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Manager) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// WithFeatures sets the feature flags.
func WithFeatures(ff *config.FeatureFlags) Option {
	return func(m *Manager) {
		if ff != nil {
			m.features = ff
		}
	}
}

// WithEventPublisher publishes a change event after every mutation.
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(m *Manager) { m.events = p }
}

// NewManager creates an empty manager. Call Load to hydrate it.
func NewManager(gateway Gateway, opts ...Option) *Manager {
	m := &Manager{
		gateway:  gateway,
		clock:    timeutil.SystemClock{},
		newID:    uuid.NewString,
		features: config.NewFeatureFlags(),
		log:      logger.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component(domain))
	return m
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Load replaces the in-memory collection with the stored snapshot.
// An empty store yields an empty collection.
func (m *Manager) Load(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.gateway.Load(ctx)
	if err != nil {
		m.log.Error("failed to load roster", logger.Err(err))
		return 0, err
	}
	m.records = student.Clone(res.Records)
	m.log.Debug("roster loaded", logger.Count(len(m.records)))
	return len(m.records), nil
}

// Restore replaces both the stored and in-memory collection with the backup.
func (m *Manager) Restore(ctx context.Context) (int, error) {
	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.gateway.RestoreFromBackup(ctx)
	if err != nil {
		return 0, err
	}
	m.records = student.Clone(res.Records)
	m.log.Info("roster restored from backup", logger.Count(len(m.records)))
	pending = append(pending, shared.NewRosterRestoredEvent(len(m.records), m.clock.Now()))
	return len(m.records), nil
}

// Clear backs up and removes the stored snapshot, then empties memory.
func (m *Manager) Clear(ctx context.Context) error {
	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gateway.Clear(ctx); err != nil {
		m.log.Error("failed to clear roster", logger.Err(err))
		return err
	}
	m.records = nil
	m.log.Info("roster cleared")
	pending = append(pending, shared.NewRosterClearedEvent(m.clock.Now()))
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Add validates in, checks NIM uniqueness and appends a new record.
func (m *Manager) Add(ctx context.Context, in student.Input) (*MutationResult, error) {
	const op = "Add"

	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkProgram(op, in.Program); err != nil {
		return nil, err
	}
	if d := strings.TrimSpace(in.TanggalMasuk); d != "" && !timeutil.IsCalendarDate(d) {
		return nil, shared.NewDomainError(domain, op, shared.ErrValidation, "Tanggal masuk harus berformat YYYY-MM-DD")
	}

	rec := in.ToRecord(m.newID(), timeutil.Today(m.clock))
	if err := student.ValidateAllFields(rec).Err(op); err != nil {
		return nil, err
	}
	if m.indexOfNIM(rec.NIM, "") >= 0 {
		return nil, duplicateNIM(op)
	}

	m.records = append(m.records, rec)
	m.log.Info("student added", logger.RecordID(rec.ID), logger.NIM(rec.NIM))

	pending = append(pending, shared.NewRecordAddedEvent(rec.ID, rec.NIM, m.clock.Now()))
	out := rec.Copy()
	result := &MutationResult{Record: &out}
	m.persist(ctx, op, result, &pending)
	return result, nil
}

// Update merges patch into the record with the given id. ID and
// TanggalMasuk never change.
func (m *Manager) Update(ctx context.Context, id string, patch student.Patch) (*MutationResult, error) {
	const op = "Update"

	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfID(id)
	if idx < 0 {
		return nil, notFound(op)
	}

	current := m.records[idx]
	merged := patch.Apply(current)

	if !patch.IsEmpty() {
		if err := m.checkProgram(op, patch.Program); err != nil {
			return nil, err
		}
		if err := student.ValidateAllFields(merged).Err(op); err != nil {
			return nil, err
		}
		if patch.ChangesNIM(current) && m.indexOfNIM(merged.NIM, id) >= 0 {
			return nil, duplicateNIM(op)
		}
	}

	m.records[idx] = merged
	m.log.Info("student updated",
		logger.RecordID(id),
		logger.NIM(merged.NIM),
		logger.Any("fields", patch.ChangedFields()),
	)

	pending = append(pending, shared.NewRecordUpdatedEvent(id, merged.NIM, patch.ChangedFields(), m.clock.Now()))
	out := merged.Copy()
	result := &MutationResult{Record: &out}
	m.persist(ctx, op, result, &pending)
	return result, nil
}

// Delete removes the record with the given id.
func (m *Manager) Delete(ctx context.Context, id string) (*MutationResult, error) {
	const op = "Delete"

	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfID(id)
	if idx < 0 {
		return nil, notFound(op)
	}

	removed := m.records[idx]
	m.records = append(m.records[:idx:idx], m.records[idx+1:]...)
	m.log.Info("student deleted", logger.RecordID(id), logger.NIM(removed.NIM))

	pending = append(pending, shared.NewRecordsDeletedEvent([]string{id}, m.clock.Now()))
	result := &MutationResult{Removed: 1}
	m.persist(ctx, op, result, &pending)
	return result, nil
}

// DeleteMultiple removes every record whose id is listed. Unknown ids are
// ignored. The snapshot is saved once even when nothing matched.
func (m *Manager) DeleteMultiple(ctx context.Context, ids []string) (*MutationResult, error) {
	const op = "DeleteMultiple"

	var pending []shared.Event
	defer m.publish(&pending)
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := make([]student.Record, 0, len(m.records))
	var removedIDs []string
	for _, r := range m.records {
		if _, ok := drop[r.ID]; ok {
			removedIDs = append(removedIDs, r.ID)
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	m.log.Info("students deleted", logger.Count(len(removedIDs)))

	pending = append(pending, shared.NewRecordsDeletedEvent(removedIDs, m.clock.Now()))
	result := &MutationResult{Removed: len(removedIDs)}
	m.persist(ctx, op, result, &pending)
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// Records returns a copy of the collection in insertion order.
func (m *Manager) Records() []student.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return student.Clone(m.records)
}

// Get returns the record with the given id.
func (m *Manager) Get(id string) (student.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOfID(id)
	if idx < 0 {
		return student.Record{}, notFound("Get")
	}
	return m.records[idx].Copy(), nil
}

// Len returns the number of records.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// persist saves the collection. Failures are logged and reported on result
// but never undo the in-memory change. Callers hold m.mu.
func (m *Manager) persist(ctx context.Context, op string, result *MutationResult, pending *[]shared.Event) {
	saved, err := m.gateway.Save(ctx, m.records)
	if err != nil {
		result.SaveErr = err
		*pending = append(*pending, shared.NewSaveFailedEvent(op, err, m.clock.Now()))
		m.log.Error("failed to persist roster",
			logger.Operation(op),
			logger.Count(len(m.records)),
			logger.Err(err),
		)
		return
	}
	result.Persisted = true
	result.SavedAt = saved.Timestamp
}

// publish delivers pending events. It is deferred before m.mu is taken so
// handlers run after the lock is released and may read the manager.
func (m *Manager) publish(pending *[]shared.Event) {
	if m.events == nil {
		return
	}
	for _, e := range *pending {
		if err := m.events.Publish(e); err != nil {
			m.log.Warn("failed to publish event",
				logger.String("event_type", string(e.EventType())),
				logger.Err(err),
			)
		}
	}
}

// checkProgram rejects the graduate variant when its feature is off.
func (m *Manager) checkProgram(op string, p *student.Program) error {
	if p == nil || p.Kind != student.KindGraduate {
		return nil
	}
	if !m.features.IsEnabled(config.FeatureGraduateRecords) {
		return shared.NewDomainError(domain, op, shared.ErrValidation, "Data mahasiswa pascasarjana tidak diaktifkan")
	}
	return nil
}

func (m *Manager) indexOfID(id string) int {
	for i := range m.records {
		if m.records[i].ID == id {
			return i
		}
	}
	return -1
}

// indexOfNIM finds a record with the same NIM (case-insensitive), skipping
// the record whose id is exceptID.
func (m *Manager) indexOfNIM(nim, exceptID string) int {
	for i := range m.records {
		if m.records[i].ID != exceptID && student.SameNIM(m.records[i].NIM, nim) {
			return i
		}
	}
	return -1
}

func notFound(op string) error {
	return shared.WrapError(domain, op, shared.ErrNotFound, shared.ErrStudentNotFound.Message, shared.ErrStudentNotFound)
}

func duplicateNIM(op string) error {
	return shared.WrapError(domain, op, shared.ErrAlreadyExists, shared.ErrDuplicateNIM.Message, shared.ErrDuplicateNIM)
}

// Package snapshot implements the persistence gateway of the roster: it
// serializes the whole collection into a versioned snapshot, keeps a
// one-generation backup of the previous snapshot, and produces and reads
// export files.
//
// The gateway is storage-agnostic; any student.SnapshotStore can hold the
// two slots (memory, Redis, PostgreSQL, Pebble).
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
	"github.com/alem-hub/student-roster/pkg/logger"
	"github.com/alem-hub/student-roster/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// FormatVersion is written into every snapshot.
	FormatVersion = "1.0"

	// DefaultCurrentKey holds the current snapshot.
	DefaultCurrentKey = "mahasiswa_data"

	// DefaultBackupKey holds the previous snapshot.
	DefaultBackupKey = "mahasiswa_data_backup"

	// DefaultExportedBy labels export files.
	DefaultExportedBy = "Sistem Manajemen Data Mahasiswa"

	domain = "snapshot"
)

// Envelope is the stored shape of the current and backup slots.
type Envelope struct {
	Version   string           `json:"version"`
	Timestamp string           `json:"timestamp"`
	Count     int              `json:"count"`
	Data      []student.Record `json:"data"`
}

// SaveResult is returned by a successful Save.
type SaveResult struct {
	Timestamp time.Time
	Count     int
	Bytes     int

	// BackedUp is true when a previous snapshot was copied to the backup slot.
	BackedUp bool
}

// LoadResult is returned by Load and RestoreFromBackup.
type LoadResult struct {
	Records []student.Record

	// Version and Timestamp are empty when nothing was stored.
	Version   string
	Timestamp string
}

// Count returns the number of loaded records.
func (r *LoadResult) Count() int {
	return len(r.Records)
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// Gateway reads and writes roster snapshots.
type Gateway struct {
	store      student.SnapshotStore
	currentKey string
	backupKey  string
	exportedBy string
	clock      timeutil.Clock
	log        *logger.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithKeyPrefix namespaces both slots, e.g. "kampus-a:" + "mahasiswa_data".
func WithKeyPrefix(prefix string) Option {
	return func(g *Gateway) {
		g.currentKey = prefix + DefaultCurrentKey
		g.backupKey = prefix + DefaultBackupKey
	}
}

// WithClock sets the clock used for timestamps and export file names.
func WithClock(c timeutil.Clock) Option {
	return func(g *Gateway) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// WithExportedBy sets the source label written into JSON exports.
func WithExportedBy(label string) Option {
	return func(g *Gateway) {
		if label != "" {
			g.exportedBy = label
		}
	}
}

// New creates a Gateway over store.
func New(store student.SnapshotStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:      store,
		currentKey: DefaultCurrentKey,
		backupKey:  DefaultBackupKey,
		exportedBy: DefaultExportedBy,
		clock:      timeutil.SystemClock{},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("snapshot"), logger.Backend(student.BackendName(store)))
	return g
}

// Keys returns the current and backup slot keys.
func (g *Gateway) Keys() (current, backup string) {
	return g.currentKey, g.backupKey
}

// Save writes records as the current snapshot. Whatever was stored before
// is copied to the backup slot first.
func (g *Gateway) Save(ctx context.Context, records []student.Record) (*SaveResult, error) {
	now := g.clock.Now()
	if records == nil {
		records = []student.Record{}
	}

	payload, err := json.Marshal(Envelope{
		Version:   FormatVersion,
		Timestamp: timeutil.FormatISO(now),
		Count:     len(records),
		Data:      records,
	})
	if err != nil {
		return nil, shared.WrapError(domain, "Save", shared.ErrPersistence, "gagal menyimpan data", err)
	}

	backedUp, err := g.backupCurrent(ctx, "Save")
	if err != nil {
		return nil, err
	}

	if err := g.store.Set(ctx, g.currentKey, string(payload)); err != nil {
		return nil, writeError("Save", err)
	}

	g.log.Debug("snapshot saved",
		logger.Key(g.currentKey),
		logger.Count(len(records)),
		logger.Int("bytes", len(payload)),
	)

	return &SaveResult{
		Timestamp: now,
		Count:     len(records),
		Bytes:     len(payload),
		BackedUp:  backedUp,
	}, nil
}

// Load reads the current snapshot. A missing snapshot yields an empty
// collection, not an error.
func (g *Gateway) Load(ctx context.Context) (*LoadResult, error) {
	raw, err := g.store.Get(ctx, g.currentKey)
	if err != nil {
		if shared.IsNotFound(err) {
			return &LoadResult{Records: []student.Record{}}, nil
		}
		return nil, readError("Load", err)
	}

	env, err := decodeEnvelope([]byte(raw), "Load", shared.ErrSyntax, shared.ErrInvalidFormat)
	if err != nil {
		return nil, err
	}

	g.log.Debug("snapshot loaded", logger.Key(g.currentKey), logger.Count(len(env.Data)))

	return &LoadResult{
		Records:   env.Data,
		Version:   env.Version,
		Timestamp: env.Timestamp,
	}, nil
}

// RestoreFromBackup replaces the current snapshot with the backup and
// returns the restored collection.
//
// The backup is decoded before anything is written, so a corrupt backup
// leaves the current slot untouched.
func (g *Gateway) RestoreFromBackup(ctx context.Context) (*LoadResult, error) {
	raw, err := g.store.Get(ctx, g.backupKey)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.WrapError(domain, "RestoreFromBackup", shared.ErrNotFound,
				shared.ErrBackupNotFound.Message, shared.ErrBackupNotFound)
		}
		return nil, readError("RestoreFromBackup", err)
	}

	env, err := decodeEnvelope([]byte(raw), "RestoreFromBackup", shared.ErrSyntax, shared.ErrInvalidFormat)
	if err != nil {
		return nil, err
	}

	if err := g.store.Set(ctx, g.currentKey, raw); err != nil {
		return nil, writeError("RestoreFromBackup", err)
	}

	g.log.Info("snapshot restored from backup", logger.Count(len(env.Data)))

	return &LoadResult{
		Records:   env.Data,
		Version:   env.Version,
		Timestamp: env.Timestamp,
	}, nil
}

// Clear removes the current snapshot after backing it up, so a clear can
// always be undone with RestoreFromBackup.
func (g *Gateway) Clear(ctx context.Context) error {
	if _, err := g.backupCurrent(ctx, "Clear"); err != nil {
		return err
	}
	if err := g.store.Delete(ctx, g.currentKey); err != nil {
		return writeError("Clear", err)
	}
	g.log.Info("snapshot cleared", logger.Key(g.currentKey))
	return nil
}

// HasBackup reports whether the backup slot is populated.
func (g *Gateway) HasBackup(ctx context.Context) (bool, error) {
	_, err := g.store.Get(ctx, g.backupKey)
	switch {
	case err == nil:
		return true, nil
	case shared.IsNotFound(err):
		return false, nil
	default:
		return false, readError("HasBackup", err)
	}
}

// backupCurrent copies the raw current slot into the backup slot.
func (g *Gateway) backupCurrent(ctx context.Context, op string) (bool, error) {
	raw, err := g.store.Get(ctx, g.currentKey)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, readError(op, err)
	}
	if err := g.store.Set(ctx, g.backupKey, raw); err != nil {
		return false, writeError(op, err)
	}
	return true, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DECODING
// ══════════════════════════════════════════════════════════════════════════════

// decodeEnvelope parses stored or imported text. Unparseable text maps to
// syntaxKind; a missing or non-array data field, or elements that are not
// record-shaped objects, map to formatKind.
func decodeEnvelope(raw []byte, op string, syntaxKind, formatKind error) (*Envelope, error) {
	if !json.Valid(raw) {
		return nil, shared.NewDomainError(domain, op, syntaxKind, "Data tidak dapat dibaca: JSON tidak valid")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, shared.WrapError(domain, op, formatKind, "Format data tidak valid: harus berupa objek JSON", err)
	}

	data, found := top["data"]
	if !found {
		return nil, shared.NewDomainError(domain, op, formatKind, "Format data tidak valid: field data tidak ditemukan")
	}

	var items []json.RawMessage
	if !isArray(data) {
		return nil, shared.NewDomainError(domain, op, formatKind, "Format data tidak valid: field data harus berupa array")
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, shared.WrapError(domain, op, formatKind, "Format data tidak valid", err)
	}

	records := make([]student.Record, 0, len(items))
	for i, item := range items {
		var rec student.Record
		if !isObject(item) {
			return nil, shared.NewDomainError(domain, op, formatKind,
				"Format data tidak valid: elemen ke-"+strconv.Itoa(i+1)+" bukan objek")
		}
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, shared.WrapError(domain, op, formatKind,
				"Format data tidak valid: elemen ke-"+strconv.Itoa(i+1)+" tidak sesuai", err)
		}
		records = append(records, rec)
	}

	env := &Envelope{Data: records}
	if v, found := top["version"]; found {
		_ = json.Unmarshal(v, &env.Version)
	}
	if ts, found := top["timestamp"]; found {
		_ = json.Unmarshal(ts, &env.Timestamp)
	}
	env.Count = len(records)
	return env, nil
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

func writeError(op string, err error) error {
	if shared.IsCapacity(err) {
		return shared.WrapError(domain, op, shared.ErrCapacityExceeded,
			"Penyimpanan penuh. Hapus beberapa data atau export data terlebih dahulu", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return shared.WrapError(domain, op, shared.ErrOperationCanceled, "operasi penyimpanan dibatalkan", err)
	}
	return shared.WrapError(domain, op, shared.ErrPersistence, "Gagal menyimpan data", err)
}

func readError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return shared.WrapError(domain, op, shared.ErrOperationCanceled, "operasi penyimpanan dibatalkan", err)
	}
	return shared.WrapError(domain, op, shared.ErrPersistence, "Gagal membaca data tersimpan", err)
}

package messaging

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
)

var at = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()

	var added, all []shared.Event
	require.NoError(t, bus.Subscribe(shared.EventRecordAdded, func(e shared.Event) error {
		added = append(added, e)
		return nil
	}))
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		all = append(all, e)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewRecordAddedEvent("id-1", "IF1", at)))
	require.NoError(t, bus.Publish(shared.NewRosterClearedEvent(at)))

	require.Len(t, added, 1)
	assert.Equal(t, "id-1", added[0].AggregateID())
	assert.Equal(t, map[string]any{"record_id": "id-1", "nim": "IF1"}, added[0].Payload())
	assert.Len(t, all, 2)
	assert.Equal(t, shared.EventRosterCleared, all[1].EventType())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultInMemoryEventBusConfig())
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return errors.New("boom") }))
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { panic("oops") }))

	err := bus.Publish(shared.NewRecordsDeletedEvent([]string{"a", "b"}, at))
	require.NoError(t, err)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalHandlerExecs)
	assert.Equal(t, int64(2), snap.HandlerFailures)
}

func TestInMemoryEventBus_AsyncCloseWaits(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = true
	bus := NewInMemoryEventBus(cfg)

	var handled atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		handled.Add(1)
		return nil
	}))
	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewRosterRestoredEvent(i, at)))
	}
	require.NoError(t, bus.Close())

	assert.Equal(t, int32(10), handled.Load())
	assert.ErrorIs(t, bus.Publish(shared.NewRosterClearedEvent(at)), ErrEventBusClosed)
	assert.ErrorIs(t, bus.SubscribeAll(func(shared.Event) error { return nil }), ErrEventBusClosed)
}

func TestInMemoryEventBus_CloseDrainsQueuedHandlers(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = true
	cfg.WorkerPoolSize = 1
	bus := NewInMemoryEventBus(cfg)

	release := make(chan struct{})
	var handled atomic.Int32
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		<-release
		handled.Add(1)
		return nil
	}))
	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewRosterRestoredEvent(i, at)))
	}

	closed := make(chan struct{})
	go func() {
		_ = bus.Close()
		close(closed)
	}()
	// Four handlers are still waiting for the single worker slot.
	time.Sleep(10 * time.Millisecond)
	close(release)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	assert.Equal(t, int32(5), handled.Load())
}

package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-roster/internal/domain/shared"
	"github.com/alem-hub/student-roster/internal/domain/student"
)

// recordingPublisher keeps published events and the collection size each
// handler observed.
type recordingPublisher struct {
	m      *Manager
	events []shared.Event
	sizes  []int
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	// Reading the manager here deadlocks if publish runs under m.mu.
	p.sizes = append(p.sizes, p.m.Len())
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func TestManager_PublishesMutationEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, _ := newManager(t, WithEventPublisher(pub))
	pub.m = m

	a, err := m.Add(ctx, budi())
	require.NoError(t, err)
	b, err := m.Add(ctx, siti())
	require.NoError(t, err)

	nama := "Budi Setiawan"
	_, err = m.Update(ctx, a.Record.ID, student.Patch{Nama: &nama})
	require.NoError(t, err)
	_, err = m.DeleteMultiple(ctx, []string{b.Record.ID, "missing"})
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx))
	_, err = m.Restore(ctx)
	require.NoError(t, err)

	assert.Equal(t, []shared.EventType{
		shared.EventRecordAdded,
		shared.EventRecordAdded,
		shared.EventRecordUpdated,
		shared.EventRecordsDeleted,
		shared.EventRosterCleared,
		shared.EventRosterRestored,
	}, pub.types())
	assert.Equal(t, []int{1, 2, 2, 1, 0, 1}, pub.sizes)

	added := pub.events[0].(shared.RecordAddedEvent)
	assert.Equal(t, "id-1", added.AggregateID())
	assert.Equal(t, "IF123456", added.NIM)
	assert.Equal(t, m.clock.Now(), added.OccurredAt())

	updated := pub.events[2].(shared.RecordUpdatedEvent)
	assert.Equal(t, []string{"nama"}, updated.Fields)

	deleted := pub.events[3].(shared.RecordsDeletedEvent)
	assert.Equal(t, []string{b.Record.ID}, deleted.IDs)
}

func TestManager_RejectedMutationPublishesNothing(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, _ := newManager(t, WithEventPublisher(pub))
	pub.m = m

	_, err := m.Update(ctx, "missing", student.Patch{})
	require.Error(t, err)
	in := budi()
	in.Semester = 0
	_, err = m.Add(ctx, in)
	require.Error(t, err)

	assert.Empty(t, pub.events)
}

func TestManager_SaveFailurePublishesEvent(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, gw := newManager(t, WithEventPublisher(pub))
	pub.m = m
	gw.saveErr = shared.NewDomainError("snapshot", "Save", shared.ErrCapacityExceeded, "Penyimpanan penuh")

	_, err := m.Add(ctx, budi())
	require.NoError(t, err)

	require.Equal(t, []shared.EventType{shared.EventRecordAdded, shared.EventSaveFailed}, pub.types())
	failed := pub.events[1].(shared.SaveFailedEvent)
	assert.Equal(t, "Add", failed.Operation)
	assert.Equal(t, "Penyimpanan penuh", failed.Message)
}

func TestManager_ImportPublishesCounts(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, _ := newManager(t, WithEventPublisher(pub))
	pub.m = m

	recs := []student.Record{
		budi().ToRecord("x1", "2024-01-01"),
		siti().ToRecord("x2", "2024-01-01"),
	}
	_, err := m.ImportReplace(ctx, recs)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(shared.RosterReplacedEvent)
	assert.Equal(t, shared.EventRosterImported, ev.EventType())
	assert.Equal(t, 2, ev.Count)
	assert.Equal(t, 0, ev.Rejected)
}

type failingPublisher struct{}

func (failingPublisher) Publish(shared.Event) error { return errors.New("bus closed") }

func TestManager_PublishFailureDoesNotFailMutation(t *testing.T) {
	m, _ := newManager(t, WithEventPublisher(failingPublisher{}))

	res, err := m.Add(context.Background(), budi())
	require.NoError(t, err)
	assert.True(t, res.Persisted)
}

package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Roster event types. Each one describes a change to the collection that
// has already been applied in memory.
const (
	EventRecordAdded    EventType = "roster.record_added"
	EventRecordUpdated  EventType = "roster.record_updated"
	EventRecordsDeleted EventType = "roster.records_deleted"
	EventRosterImported EventType = "roster.imported"
	EventRosterRestored EventType = "roster.restored"
	EventRosterCleared  EventType = "roster.cleared"

	// EventSaveFailed is emitted when a mutation could not be persisted.
	EventSaveFailed EventType = "snapshot.save_failed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the record the event is about, or
	// RosterAggregate for collection-wide events.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]any
}

// RosterAggregate is the aggregate id of collection-wide events.
const RosterAggregate = "roster"

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event stamped with at.
func NewBaseEvent(eventType EventType, aggregateID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   at,
		AggregateId: aggregateID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Record Events
// ═══════════════════════════════════════════════════════════════════════════

// RecordAddedEvent is emitted when a student is added.
type RecordAddedEvent struct {
	BaseEvent
	NIM string `json:"nim"`
}

// Payload implements Event interface.
func (e RecordAddedEvent) Payload() map[string]any {
	return map[string]any{"record_id": e.AggregateId, "nim": e.NIM}
}

// NewRecordAddedEvent creates a RecordAddedEvent.
func NewRecordAddedEvent(id, nim string, at time.Time) RecordAddedEvent {
	return RecordAddedEvent{BaseEvent: NewBaseEvent(EventRecordAdded, id, at), NIM: nim}
}

// RecordUpdatedEvent is emitted when a student is edited.
type RecordUpdatedEvent struct {
	BaseEvent
	NIM    string   `json:"nim"`
	Fields []string `json:"fields"`
}

// Payload implements Event interface.
func (e RecordUpdatedEvent) Payload() map[string]any {
	return map[string]any{"record_id": e.AggregateId, "nim": e.NIM, "fields": e.Fields}
}

// NewRecordUpdatedEvent creates a RecordUpdatedEvent.
func NewRecordUpdatedEvent(id, nim string, fields []string, at time.Time) RecordUpdatedEvent {
	return RecordUpdatedEvent{BaseEvent: NewBaseEvent(EventRecordUpdated, id, at), NIM: nim, Fields: fields}
}

// RecordsDeletedEvent is emitted by single and bulk deletes.
type RecordsDeletedEvent struct {
	BaseEvent
	IDs []string `json:"ids"`
}

// Payload implements Event interface.
func (e RecordsDeletedEvent) Payload() map[string]any {
	return map[string]any{"ids": e.IDs, "removed": len(e.IDs)}
}

// NewRecordsDeletedEvent creates a RecordsDeletedEvent.
func NewRecordsDeletedEvent(ids []string, at time.Time) RecordsDeletedEvent {
	return RecordsDeletedEvent{BaseEvent: NewBaseEvent(EventRecordsDeleted, RosterAggregate, at), IDs: ids}
}

// ═══════════════════════════════════════════════════════════════════════════
// Roster Events
// ═══════════════════════════════════════════════════════════════════════════

// RosterReplacedEvent is emitted when the whole collection is swapped by an
// import or a restore.
type RosterReplacedEvent struct {
	BaseEvent
	Count    int `json:"count"`
	Rejected int `json:"rejected"`
}

// Payload implements Event interface.
func (e RosterReplacedEvent) Payload() map[string]any {
	return map[string]any{"count": e.Count, "rejected": e.Rejected}
}

// NewRosterImportedEvent creates the event of a completed import.
func NewRosterImportedEvent(count, rejected int, at time.Time) RosterReplacedEvent {
	return RosterReplacedEvent{BaseEvent: NewBaseEvent(EventRosterImported, RosterAggregate, at), Count: count, Rejected: rejected}
}

// NewRosterRestoredEvent creates the event of a restore from backup.
func NewRosterRestoredEvent(count int, at time.Time) RosterReplacedEvent {
	return RosterReplacedEvent{BaseEvent: NewBaseEvent(EventRosterRestored, RosterAggregate, at), Count: count}
}

// RosterClearedEvent is emitted when all data is cleared.
type RosterClearedEvent struct {
	BaseEvent
}

// Payload implements Event interface.
func (e RosterClearedEvent) Payload() map[string]any {
	return map[string]any{}
}

// NewRosterClearedEvent creates a RosterClearedEvent.
func NewRosterClearedEvent(at time.Time) RosterClearedEvent {
	return RosterClearedEvent{BaseEvent: NewBaseEvent(EventRosterCleared, RosterAggregate, at)}
}

// SaveFailedEvent reports a mutation that stayed in memory only.
type SaveFailedEvent struct {
	BaseEvent
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// Payload implements Event interface.
func (e SaveFailedEvent) Payload() map[string]any {
	return map[string]any{"operation": e.Operation, "message": e.Message}
}

// NewSaveFailedEvent creates a SaveFailedEvent from the save error.
func NewSaveFailedEvent(op string, err error, at time.Time) SaveFailedEvent {
	return SaveFailedEvent{
		BaseEvent: NewBaseEvent(EventSaveFailed, RosterAggregate, at),
		Operation: op,
		Message:   MessageOf(err),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// Package shared contains common domain types, errors, and events
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the domain; the read-side cache invalidator subscribes to them.
const (
	// Progress events
	EventProgressSaved   EventType = "progress.saved"
	EventProgressDeleted EventType = "progress.deleted"

	// Activity events
	EventActivityDayRecorded EventType = "activity.day_recorded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
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

// NewBaseEvent creates a new base event. The aggregate is the user whose
// state changed, so subscribers can invalidate per-user projections.
func NewBaseEvent(id string, eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          id,
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
	}
}

// ProgressSavedEvent is emitted after a completion event has been persisted.
type ProgressSavedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	LessonID  string `json:"lesson_id"`
	Score     int    `json:"score"`
	Total     int    `json:"total_questions"`
	Completed bool   `json:"completed"`
}

// Payload implements Event interface.
func (e ProgressSavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":         e.UserID,
		"lesson_id":       e.LessonID,
		"score":           e.Score,
		"total_questions": e.Total,
		"completed":       e.Completed,
	}
}

// NewProgressSavedEvent creates a new ProgressSavedEvent.
func NewProgressSavedEvent(eventID, userID, lessonID string, score, total int) ProgressSavedEvent {
	return ProgressSavedEvent{
		BaseEvent: NewBaseEvent(eventID, EventProgressSaved, userID),
		UserID:    userID,
		LessonID:  lessonID,
		Score:     score,
		Total:     total,
		Completed: score == total,
	}
}

// ProgressDeletedEvent is emitted after a progress record has been reset.
type ProgressDeletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	LessonID string `json:"lesson_id"`
}

// Payload implements Event interface.
func (e ProgressDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"lesson_id": e.LessonID,
	}
}

// NewProgressDeletedEvent creates a new ProgressDeletedEvent.
func NewProgressDeletedEvent(eventID, userID, lessonID string) ProgressDeletedEvent {
	return ProgressDeletedEvent{
		BaseEvent: NewBaseEvent(eventID, EventProgressDeleted, userID),
		UserID:    userID,
		LessonID:  lessonID,
	}
}

// ActivityDayRecordedEvent is emitted after a daily activity entry has been
// created or incremented.
type ActivityDayRecordedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Day    string `json:"day"` // YYYY-MM-DD
}

// Payload implements Event interface.
func (e ActivityDayRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"day":     e.Day,
	}
}

// NewActivityDayRecordedEvent creates a new ActivityDayRecordedEvent.
func NewActivityDayRecordedEvent(eventID, userID, day string) ActivityDayRecordedEvent {
	return ActivityDayRecordedEvent{
		BaseEvent: NewBaseEvent(eventID, EventActivityDayRecorded, userID),
		UserID:    userID,
		Day:       day,
	}
}

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

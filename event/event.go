// Package event is the in-process domain event bus.
// Synchronous listeners run inside Dispatch; async listeners run on an ants pool.
package event

import "time"

// Event is identified by name, e.g. "message.created"
type Event interface {
	Name() string
}

// BaseEvent is embedded into concrete events
type BaseEvent struct {
	name       string
	occurredAt time.Time
}

func NewEvent(name string) BaseEvent {
	return BaseEvent{
		name:       name,
		occurredAt: time.Now(),
	}
}

func (e BaseEvent) Name() string {
	return e.name
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.occurredAt
}

package message

import (
	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/event"
)

const (
	EventCreated = "message.created"
	EventRead    = "message.read"
	EventDeleted = "message.deleted"
)

// Event carries the message a write touched; the kind is derived from its name
type Event struct {
	event.BaseEvent
	Message *DirectMessage
}

func newEvent(name string, m *DirectMessage) *Event {
	return &Event{BaseEvent: event.NewEvent(name), Message: m}
}

func (e *Event) CacheMutation() cache.Mutation {
	kind := cache.MessageCreated
	switch e.Name() {
	case EventRead:
		kind = cache.MessageRead
	case EventDeleted:
		kind = cache.MessageDeleted
	}
	return cache.Mutation{
		Kind:         kind,
		MessageID:    e.Message.ID,
		SenderID:     e.Message.SenderID,
		RecipientID:  e.Message.RecipientID,
		OwnRefreshed: true,
	}
}

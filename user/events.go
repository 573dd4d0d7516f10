package user

import (
	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/event"
)

const (
	EventCreated  = "user.created"
	EventUpdated  = "user.updated"
	EventPresence = "user.presence"
	EventLoggedIn = "user.logged_in"
)

// CreatedEvent makes the new account visible to cached searches
type CreatedEvent struct {
	event.BaseEvent
	User *User
}

func (e *CreatedEvent) CacheMutation() cache.Mutation {
	return cache.Mutation{Kind: cache.UserMutated, UserID: e.User.ID, OwnRefreshed: true}
}

// UpdatedEvent carries the lookup keys of a replaced username or email
type UpdatedEvent struct {
	event.BaseEvent
	User      *User
	StaleKeys []string
}

func (e *UpdatedEvent) CacheMutation() cache.Mutation {
	return cache.Mutation{Kind: cache.UserMutated, UserID: e.User.ID, OwnRefreshed: true, Keys: e.StaleKeys}
}

type PresenceEvent struct {
	event.BaseEvent
	UserID int64
	Online bool
}

func (e *PresenceEvent) CacheMutation() cache.Mutation {
	return cache.Mutation{Kind: cache.PresenceChanged, UserID: e.UserID, OwnRefreshed: true}
}

// LoggedInEvent touches no cache entry of its own; presence is handled separately
type LoggedInEvent struct {
	event.BaseEvent
	UserID   int64
	Username string
}

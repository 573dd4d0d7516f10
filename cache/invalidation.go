package cache

import (
	"context"

	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
)

// MutationKind names the write that makes cached views stale
type MutationKind string

const (
	UserMutated     MutationKind = "user_mutated"
	MessageCreated  MutationKind = "message_created"
	MessageRead     MutationKind = "message_read"
	MessageDeleted  MutationKind = "message_deleted"
	PresenceChanged MutationKind = "presence_changed"
)

// Mutation describes a committed write
type Mutation struct {
	Kind        MutationKind
	UserID      int64
	MessageID   int64
	SenderID    int64
	RecipientID int64

	// Keys are extra exact keys to drop, e.g. the lookup keys of a replaced username
	Keys []string

	// OwnRefreshed means the writer already re-cached the entity's own entry
	// (profile:{id}, message:{id} or online:{id}); the policy leaves it alone
	OwnRefreshed bool
}

// Invalidator is implemented by domain events that stale cached views
type Invalidator interface {
	CacheMutation() Mutation
}

// Policy maps mutations to the keys and patterns that must be purged.
// Purging is synchronous: when a method returns, the derived views are gone.
type Policy struct {
	cache *Service
	log   *logger.CtxZapLogger
}

func NewPolicy(cache *Service, log *logger.CtxZapLogger) *Policy {
	if log == nil {
		log = logger.Nop()
	}
	return &Policy{cache: cache, log: log}
}

// Targets lists what a mutation purges; entries containing * or ? are patterns
func (p *Policy) Targets(m Mutation) []string {
	var targets []string
	switch m.Kind {
	case UserMutated:
		id := m.UserID
		if !m.OwnRefreshed {
			targets = append(targets, ProfileKey(id))
		}
		targets = append(targets,
			UserMessagesPattern(id),
			PartnersPattern(),
			UnreadKey(id),
			OnlineKey(id),
			OnlineUsersKey(),
			ConversationsOfPattern(id),
			SegmentPattern(id),
			UserSearchPattern(),
		)

	case MessageCreated, MessageDeleted:
		s, r := m.SenderID, m.RecipientID
		if !m.OwnRefreshed {
			targets = append(targets, MessageKey(m.MessageID))
		}
		targets = append(targets,
			ConversationPattern(s, r),
			ConversationPattern(r, s),
			UserMessagesPattern(s),
			UserMessagesPattern(r),
			PartnersKey(s),
			PartnersKey(r),
			UnreadKey(r),
			RecentPattern(r),
			MessageSearchPattern(s),
			MessageSearchPattern(r),
		)

	case MessageRead:
		s, r := m.SenderID, m.RecipientID
		if !m.OwnRefreshed {
			targets = append(targets, MessageKey(m.MessageID))
		}
		targets = append(targets,
			ConversationPattern(s, r),
			ConversationPattern(r, s),
			UserMessagesPattern(s),
			UserMessagesPattern(r),
			PartnersKey(s),
			PartnersKey(r),
			UnreadKey(r),
			RecentPattern(r),
		)

	case PresenceChanged:
		if !m.OwnRefreshed {
			targets = append(targets, OnlineKey(m.UserID))
		}
		targets = append(targets, OnlineUsersKey())
	}
	return append(targets, m.Keys...)
}

// Apply purges every target of m and returns the number of deleted keys.
// Store failures are logged and counted as zero.
func (p *Policy) Apply(ctx context.Context, m Mutation) int64 {
	// purging outlives the caller's cancellation but not PurgeTimeout
	ctx = context.WithoutCancel(ctx)
	if timeout := p.cache.Config().PurgeTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var deleted int64
	for _, target := range p.Targets(m) {
		if ctx.Err() != nil {
			p.log.WarnCtx(ctx, "cache invalidation cut short",
				zap.String("kind", string(m.Kind)), zap.String("next_target", target))
			break
		}
		if IsPattern(target) {
			deleted += p.cache.DeleteMatching(ctx, target)
			continue
		}
		if p.cache.Delete(ctx, target) {
			deleted++
		}
	}
	p.cache.recorderOrNop().ObserveInvalidation(string(m.Kind), deleted)
	p.log.DebugCtx(ctx, "cache invalidated",
		zap.String("kind", string(m.Kind)),
		zap.Int64("user_id", m.UserID),
		zap.Int64("message_id", m.MessageID),
		zap.Int64("deleted", deleted))
	return deleted
}

// InvalidateUser drops every view derived from the user
func (p *Policy) InvalidateUser(ctx context.Context, userID int64) int64 {
	return p.Apply(ctx, Mutation{Kind: UserMutated, UserID: userID})
}

// InvalidateMessage drops the message and every view listing it
func (p *Policy) InvalidateMessage(ctx context.Context, messageID, senderID, recipientID int64) int64 {
	return p.Apply(ctx, Mutation{Kind: MessageCreated, MessageID: messageID, SenderID: senderID, RecipientID: recipientID})
}

// InvalidateRead drops views that show read state or unread counts
func (p *Policy) InvalidateRead(ctx context.Context, messageID, senderID, recipientID int64) int64 {
	return p.Apply(ctx, Mutation{Kind: MessageRead, MessageID: messageID, SenderID: senderID, RecipientID: recipientID})
}

// InvalidatePresence drops the user's online flag and the online list
func (p *Policy) InvalidatePresence(ctx context.Context, userID int64) int64 {
	return p.Apply(ctx, Mutation{Kind: PresenceChanged, UserID: userID})
}

// Listener purges on any event implementing Invalidator; other events pass through
func (p *Policy) Listener() event.Listener {
	return event.ListenerFunc(func(ctx context.Context, ev event.Event) error {
		if inv, ok := ev.(Invalidator); ok {
			p.Apply(ctx, inv.CacheMutation())
		}
		return nil
	})
}

// Subscribe registers the policy as a synchronous, first-priority listener,
// so purging completes before Dispatch returns to the writer
func (p *Policy) Subscribe(d event.Dispatcher, eventNames ...string) {
	for _, name := range eventNames {
		d.Subscribe(name, p.Listener(), event.WithPriority(-100))
	}
}

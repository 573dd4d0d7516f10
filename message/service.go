package message

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/user"
	"go.uber.org/zap"
)

// UserLookup resolves recipients; *user.Service satisfies it
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

type Service struct {
	repo   *Repository
	cache  *cache.Service
	events event.Dispatcher
	users  UserLookup
	log    *logger.CtxZapLogger
	now    func() time.Time
}

func NewService(repo *Repository, c *cache.Service, events event.Dispatcher, users UserLookup, log *logger.CtxZapLogger) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		events: events,
		users:  users,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) messageTTL() time.Duration { return s.cache.Config().MessageTTL }

// Send persists the message, caches it, then announces it so derived views are purged
func (s *Service) Send(ctx context.Context, senderID, recipientID int64, content string) (*DirectMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong.WithData("max_length", MaxContentLength)
	}
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	msg := &DirectMessage{
		Content:     content,
		SenderID:    senderID,
		RecipientID: recipientID,
		MessageType: "text",
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, ErrDatabase.Wrap(err)
	}

	s.cache.Set(ctx, cache.MessageKey(msg.ID), msg, s.messageTTL())
	s.dispatch(ctx, newEvent(EventCreated, msg))
	s.log.InfoCtx(ctx, "message sent",
		zap.Int64("message_id", msg.ID),
		zap.Int64("sender_id", senderID),
		zap.Int64("recipient_id", recipientID))
	return msg, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DirectMessage, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.MessageKey(id), s.messageTTL(), func(ctx context.Context) (*DirectMessage, error) {
		msg, err := s.repo.FindByID(ctx, id)
		if database.IsNotFound(err) {
			return nil, ErrMessageNotFound
		}
		if err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		return msg, nil
	})
}

// GetFor hides messages userID is not a participant of
func (s *Service) GetFor(ctx context.Context, id, userID int64) (*DirectMessage, error) {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !msg.Involves(userID) {
		return nil, ErrMessageNotFound
	}
	return msg, nil
}

// Conversation is cached under the canonical pair key, newest first
func (s *Service) Conversation(ctx context.Context, a, b int64, limit, offset int) ([]DirectMessage, error) {
	limit, offset = clampLimit(limit, DefaultPageLimit), clampOffset(offset)
	key := cache.ConversationKey(a, b, limit, offset)
	return cache.GetOrCompute(ctx, s.cache, key, s.cache.Config().ConversationTTL, func(ctx context.Context) ([]DirectMessage, error) {
		return s.list(s.repo.Conversation(ctx, a, b, limit, offset))
	})
}

// UserMessages lists everything the user sent or received
func (s *Service) UserMessages(ctx context.Context, userID int64, limit, offset int) ([]DirectMessage, error) {
	limit, offset = clampLimit(limit, DefaultPageLimit), clampOffset(offset)
	key := cache.UserMessagesKey(userID, limit, offset)
	return cache.GetOrCompute(ctx, s.cache, key, s.messageTTL(), func(ctx context.Context) ([]DirectMessage, error) {
		return s.list(s.repo.ForUser(ctx, userID, limit, offset))
	})
}

func (s *Service) Search(ctx context.Context, userID int64, query string, limit int) ([]DirectMessage, error) {
	limit = clampLimit(limit, DefaultSearchLimit)
	query = strings.TrimSpace(query)
	key := cache.MessageSearchKey(userID, query, limit)
	return cache.GetOrCompute(ctx, s.cache, key, s.cache.Config().SearchTTL, func(ctx context.Context) ([]DirectMessage, error) {
		return s.list(s.repo.Search(ctx, userID, query, limit))
	})
}

// Recent lists the newest messages the user received
func (s *Service) Recent(ctx context.Context, userID int64, limit int) ([]DirectMessage, error) {
	limit = clampLimit(limit, DefaultRecentLimit)
	return cache.GetOrCompute(ctx, s.cache, cache.RecentKey(userID, limit), s.cache.Config().RecentTTL, func(ctx context.Context) ([]DirectMessage, error) {
		return s.list(s.repo.Received(ctx, userID, limit))
	})
}

func (s *Service) list(msgs []DirectMessage, err error) ([]DirectMessage, error) {
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	return msgs, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.UnreadKey(userID), s.cache.Config().UnreadTTL, func(ctx context.Context) (int64, error) {
		n, err := s.repo.UnreadCount(ctx, userID)
		if err != nil {
			return 0, ErrDatabase.Wrap(err)
		}
		return n, nil
	})
}

// Partners sorts by unread count descending, then by name
func (s *Service) Partners(ctx context.Context, userID int64) ([]Partner, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.PartnersKey(userID), s.cache.Config().ConversationTTL, func(ctx context.Context) ([]Partner, error) {
		rows, err := s.repo.Partners(ctx, userID)
		if err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		unread, err := s.repo.UnreadBySender(ctx, userID)
		if err != nil {
			return nil, ErrDatabase.Wrap(err)
		}

		partners := make([]Partner, 0, len(rows))
		for _, row := range rows {
			name := row.Username
			if row.DisplayName != nil && *row.DisplayName != "" {
				name = *row.DisplayName
			}
			partners = append(partners, Partner{UserID: row.ID, Name: name, UnreadCount: unread[row.ID]})
		}
		sort.SliceStable(partners, func(i, j int) bool {
			if partners[i].UnreadCount != partners[j].UnreadCount {
				return partners[i].UnreadCount > partners[j].UnreadCount
			}
			return partners[i].Name < partners[j].Name
		})
		return partners, nil
	})
}

// MarkRead is allowed for the recipient only; reading twice is a no-op
func (s *Service) MarkRead(ctx context.Context, id, userID int64) (*DirectMessage, error) {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != userID {
		return nil, ErrMessageNotFound
	}
	if msg.IsRead {
		return msg, nil
	}

	at := s.now()
	changed, err := s.repo.MarkRead(ctx, id, at)
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	if changed {
		msg.IsRead, msg.ReadAt = true, &at
	} else if msg, err = s.reload(ctx, id); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.MessageKey(id), msg, s.messageTTL())
	s.dispatch(ctx, newEvent(EventRead, msg))
	return msg, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*DirectMessage, error) {
	msg, err := s.repo.FindByID(ctx, id)
	if database.IsNotFound(err) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	return msg, nil
}

// Delete is allowed for the sender only
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	msg, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if msg.SenderID != userID {
		return ErrMessageNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if database.IsNotFound(err) {
			s.cache.Delete(ctx, cache.MessageKey(id))
			return ErrMessageNotFound
		}
		return ErrDatabase.Wrap(err)
	}

	s.cache.Delete(ctx, cache.MessageKey(id))
	s.dispatch(ctx, newEvent(EventDeleted, msg))
	s.log.InfoCtx(ctx, "message deleted", zap.Int64("message_id", id), zap.Int64("user_id", userID))
	return nil
}

func (s *Service) dispatch(ctx context.Context, ev event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, ev); err != nil {
		s.log.WarnCtx(ctx, "event dispatch failed", zap.String("event", ev.Name()), zap.Error(err))
	}
}

package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/KOMKZ/go-yogan-chat/auth"
	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
)

// OnlineWindow is how recent last_seen must be for a user to count as online
const OnlineWindow = 5 * time.Minute

// PasswordHasher is satisfied by *auth.PasswordService
type PasswordHasher interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
}

// Service reads users through the cache and keeps it consistent on writes
type Service struct {
	repo      *Repository
	cache     *cache.Service
	events    event.Dispatcher
	passwords PasswordHasher
	log       *logger.CtxZapLogger
	now       func() time.Time
}

func NewService(repo *Repository, c *cache.Service, events event.Dispatcher, passwords PasswordHasher, log *logger.CtxZapLogger) *Service {
	return &Service{
		repo:      repo,
		cache:     c,
		events:    events,
		passwords: passwords,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ttl() time.Duration { return s.cache.Config().UserTTL }

// GetByID returns ErrUserNotFound for unknown ids; misses are not cached
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.ProfileKey(id), s.ttl(), func(ctx context.Context) (*User, error) {
		return s.load(s.repo.FindByID(ctx, id))
	})
}

// GetByUsername also seeds profile:{id} on a source-of-truth hit
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.UsernameKey(username), s.ttl(), func(ctx context.Context) (*User, error) {
		u, err := s.load(s.repo.FindByUsername(ctx, username))
		if err == nil {
			s.cache.Set(ctx, cache.ProfileKey(u.ID), u, s.ttl())
		}
		return u, err
	})
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.EmailKey(email), s.ttl(), func(ctx context.Context) (*User, error) {
		u, err := s.load(s.repo.FindByEmail(ctx, email))
		if err == nil {
			s.cache.Set(ctx, cache.ProfileKey(u.ID), u, s.ttl())
		}
		return u, err
	})
}

func (s *Service) load(u *User, err error) (*User, error) {
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, ErrDatabase.Wrap(err)
	}
	return u, nil
}

// Exists reports whether the username or the email is taken
func (s *Service) Exists(ctx context.Context, username, email string) (bool, error) {
	for _, lookup := range []func() (*User, error){
		func() (*User, error) { return s.GetByUsername(ctx, username) },
		func() (*User, error) { return s.GetByEmail(ctx, email) },
	} {
		_, err := lookup()
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return false, err
		}
	}
	return false, nil
}

// Register validates the password, checks uniqueness and creates the account
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	if err := s.passwords.ValidatePassword(password); err != nil {
		return nil, err
	}
	taken, err := s.Exists(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUserExists
	}
	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, &User{Username: username, Email: email, HashedPassword: hash, IsActive: true, Timezone: "UTC"})
}

// Create persists u, caches it under every lookup key, then announces it
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrUserExists
		}
		return nil, ErrDatabase.Wrap(err)
	}
	s.refresh(ctx, u)
	s.dispatch(ctx, &CreatedEvent{BaseEvent: event.NewEvent(EventCreated), User: u})
	s.log.InfoCtx(ctx, "user created", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// Update applies the non-nil fields. Old username/email keys travel with the
// event so the invalidation policy drops them.
func (s *Service) Update(ctx context.Context, id int64, fields UpdateFields) (*User, error) {
	cols := fields.columns()
	if len(cols) == 0 {
		return nil, ErrNothingToSave
	}
	before, err := s.load(s.repo.FindByID(ctx, id))
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateColumns(ctx, id, cols); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrUserExists
		}
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, ErrDatabase.Wrap(err)
	}
	after, err := s.load(s.repo.FindByID(ctx, id))
	if err != nil {
		return nil, err
	}

	s.refresh(ctx, after)
	var stale []string
	if before.Username != after.Username {
		stale = append(stale, cache.UsernameKey(before.Username))
	}
	if before.Email != after.Email {
		stale = append(stale, cache.EmailKey(before.Email))
	}
	s.dispatch(ctx, &UpdatedEvent{BaseEvent: event.NewEvent(EventUpdated), User: after, StaleKeys: stale})
	return after, nil
}

// Search matches username or display name, case-insensitively
func (s *Service) Search(ctx context.Context, query string, limit int) ([]User, error) {
	query = strings.TrimSpace(query)
	return cache.GetOrCompute(ctx, s.cache, cache.UserSearchKey(query, limit), s.cache.Config().SearchTTL, func(ctx context.Context) ([]User, error) {
		users, err := s.repo.Search(ctx, query, limit)
		if err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		return users, nil
	})
}

// Online lists active users seen within OnlineWindow
func (s *Service) Online(ctx context.Context) ([]User, error) {
	return cache.GetOrCompute(ctx, s.cache, cache.OnlineUsersKey(), s.cache.Config().OnlineListTTL, func(ctx context.Context) ([]User, error) {
		users, err := s.repo.SeenSince(ctx, s.now().Add(-OnlineWindow))
		if err != nil {
			return nil, ErrDatabase.Wrap(err)
		}
		return users, nil
	})
}

// TouchPresence records activity (online) or an explicit sign-out (offline)
func (s *Service) TouchPresence(ctx context.Context, id int64, online bool) error {
	if online {
		if err := s.repo.TouchLastSeen(ctx, id, s.now()); err != nil {
			if database.IsNotFound(err) {
				return ErrUserNotFound
			}
			return ErrDatabase.Wrap(err)
		}
		u, err := s.load(s.repo.FindByID(ctx, id))
		if err != nil {
			return err
		}
		s.refresh(ctx, u)
	}
	s.cache.Set(ctx, cache.OnlineKey(id), online, s.cache.Config().PresenceTTL)
	s.dispatch(ctx, &PresenceEvent{BaseEvent: event.NewEvent(EventPresence), UserID: id, Online: online})
	return nil
}

// RecordLogin marks the user online and announces the login
func (s *Service) RecordLogin(ctx context.Context, id int64, username string) error {
	if err := s.TouchPresence(ctx, id, true); err != nil {
		return err
	}
	s.dispatch(ctx, &LoggedInEvent{BaseEvent: event.NewEvent(EventLoggedIn), UserID: id, Username: username})
	return nil
}

// IsOnline prefers the cached presence flag and falls back to last_seen
func (s *Service) IsOnline(ctx context.Context, id int64) bool {
	var online bool
	if s.cache.Get(ctx, cache.OnlineKey(id), &online) {
		return online
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return u.IsActive && u.SeenWithin(OnlineWindow, s.now())
}

// AccountByUsername serves the login path from the username cache
func (s *Service) AccountByUsername(ctx context.Context, username string) (*auth.Account, error) {
	u, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &auth.Account{ID: u.ID, Username: u.Username, PasswordHash: u.HashedPassword, Active: u.IsActive}, nil
}

func (s *Service) refresh(ctx context.Context, u *User) {
	ttl := s.ttl()
	s.cache.Set(ctx, cache.ProfileKey(u.ID), u, ttl)
	s.cache.Set(ctx, cache.UsernameKey(u.Username), u, ttl)
	s.cache.Set(ctx, cache.EmailKey(u.Email), u, ttl)
}

// dispatch never fails the write that triggered it
func (s *Service) dispatch(ctx context.Context, ev event.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, ev); err != nil {
		s.log.WarnCtx(ctx, "event dispatch failed", zap.String("event", ev.Name()), zap.Error(err))
	}
}

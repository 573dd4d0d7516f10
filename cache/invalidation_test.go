package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seed(t *testing.T, svc *Service, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.True(t, svc.Set(context.Background(), k, 1, time.Hour), k)
	}
}

func TestPolicy_MessageCreatedPurgesBothParticipants(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	stale := []string{
		MessageKey(100),
		ConversationKey(3, 7, 50, 0),
		ConversationKey(7, 3, 20, 40),
		UserMessagesKey(3, 50, 0),
		UserMessagesKey(7, 50, 0),
		PartnersKey(3),
		PartnersKey(7),
		UnreadKey(7),
		RecentKey(7, 10),
		MessageSearchKey(3, "hi", 20),
		MessageSearchKey(7, "hi", 20),
	}
	untouched := []string{
		UnreadKey(3),
		ConversationKey(3, 8, 50, 0),
		ProfileKey(3),
		RecentKey(3, 10),
	}
	seed(t, svc, stale...)
	seed(t, svc, untouched...)

	deleted := policy.InvalidateMessage(ctx, 100, 3, 7)
	assert.Equal(t, int64(len(stale)), deleted)

	for _, k := range stale {
		assert.False(t, svc.Exists(ctx, k), k)
	}
	for _, k := range untouched {
		assert.True(t, svc.Exists(ctx, k), k)
	}
}

func TestPolicy_ConversationPurgeIsDirectionless(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	// sender has the higher id, so the canonical key starts with the recipient
	seed(t, svc, ConversationKey(9, 2, 50, 0))
	policy.InvalidateMessage(ctx, 1, 9, 2)
	assert.False(t, svc.Exists(ctx, ConversationKey(2, 9, 50, 0)))
}

func TestPolicy_MessageRead(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	seed(t, svc, UnreadKey(7), PartnersKey(3), RecentKey(7, 10), ConversationKey(3, 7, 50, 0), MessageSearchKey(7, "x", 20))
	policy.InvalidateRead(ctx, 100, 3, 7)

	assert.False(t, svc.Exists(ctx, UnreadKey(7)))
	assert.False(t, svc.Exists(ctx, PartnersKey(3)))
	assert.False(t, svc.Exists(ctx, RecentKey(7, 10)))
	assert.False(t, svc.Exists(ctx, ConversationKey(3, 7, 50, 0)))
	assert.True(t, svc.Exists(ctx, MessageSearchKey(7, "x", 20)), "content did not change")
}

func TestPolicy_UserMutated(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	seed(t, svc,
		ProfileKey(5), UserMessagesKey(5, 50, 0), PartnersKey(5), PartnersKey(9), UnreadKey(5),
		OnlineKey(5), OnlineUsersKey(), ConversationKey(5, 9, 50, 0), ConversationKey(1, 5, 50, 0),
		UserSearchKey("al", 10), MessageSearchKey(5, "x", 20))
	seed(t, svc, ProfileKey(6), UnreadKey(6))

	policy.InvalidateUser(ctx, 5)

	for _, k := range []string{ProfileKey(5), UserMessagesKey(5, 50, 0), OnlineUsersKey(), ConversationKey(1, 5, 50, 0), UserSearchKey("al", 10), MessageSearchKey(5, "x", 20),
		PartnersKey(5), PartnersKey(9)} {
		assert.False(t, svc.Exists(ctx, k), k)
	}
	assert.True(t, svc.Exists(ctx, ProfileKey(6)))
	assert.True(t, svc.Exists(ctx, UnreadKey(6)))
}

func TestPolicy_OwnRefreshedKeepsFreshEntry(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	seed(t, svc, ProfileKey(5), UsernameKey("old"), PartnersKey(5))
	policy.Apply(ctx, Mutation{Kind: UserMutated, UserID: 5, OwnRefreshed: true, Keys: []string{UsernameKey("old")}})

	assert.True(t, svc.Exists(ctx, ProfileKey(5)))
	assert.False(t, svc.Exists(ctx, UsernameKey("old")))
	assert.False(t, svc.Exists(ctx, PartnersKey(5)))
}

func TestPolicy_Presence(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	seed(t, svc, OnlineKey(4), OnlineUsersKey(), ProfileKey(4))
	assert.Equal(t, int64(2), policy.InvalidatePresence(ctx, 4))
	assert.True(t, svc.Exists(ctx, ProfileKey(4)))
}

func TestPolicy_StoreFailureReturnsZero(t *testing.T) {
	log := logger.NewTestLogger("cache")
	svc := NewService(&brokenStore{}, DefaultConfig(), log.CtxZapLogger)
	policy := NewPolicy(svc, log.CtxZapLogger)

	assert.Zero(t, policy.InvalidateMessage(context.Background(), 1, 2, 3))
	assert.True(t, log.Has(zap.WarnLevel, "cache delete_pattern failed"))
}

type messageSent struct {
	event.BaseEvent
	id, sender, recipient int64
}

func (e messageSent) CacheMutation() Mutation {
	return Mutation{Kind: MessageCreated, MessageID: e.id, SenderID: e.sender, RecipientID: e.recipient}
}

func TestPolicy_SubscribePurgesBeforeDispatchReturns(t *testing.T) {
	rec := &fakeRecorder{}
	svc, _, _ := newTestService(t, WithRecorder(rec))
	policy := NewPolicy(svc, nil)
	bus := event.NewDispatcher()
	defer bus.Shutdown()
	policy.Subscribe(bus, "message.created")

	ctx := context.Background()
	seed(t, svc, UnreadKey(2), PartnersKey(1))

	err := bus.Dispatch(ctx, messageSent{BaseEvent: event.NewEvent("message.created"), id: 10, sender: 1, recipient: 2})
	require.NoError(t, err)

	assert.False(t, svc.Exists(ctx, UnreadKey(2)))
	assert.False(t, svc.Exists(ctx, PartnersKey(1)))
	assert.Equal(t, int64(2), rec.invalid[string(MessageCreated)])

	// events without a mutation are ignored
	require.NoError(t, bus.Dispatch(ctx, event.NewEvent("message.created")))
}

func TestPolicy_UserPurgeStaysInsideCacheNamespace(t *testing.T) {
	f, mr := newRedisFixture(t)
	svc := NewService(f.store, DefaultConfig(), nil)
	policy := NewPolicy(svc, nil)
	ctx := context.Background()

	// an IPv6 client carries ":5:" like a cache segment would
	bucket := "chat:ratelimit:post /send:ip:fe80::5:1"
	require.NoError(t, mr.Set(bucket, "x"))
	seed(t, svc, ConversationKey(5, 9, 50, 0))

	policy.InvalidateUser(ctx, 5)

	assert.False(t, svc.Exists(ctx, ConversationKey(5, 9, 50, 0)))
	assert.True(t, mr.Exists(bucket))
}

// stallingStore never answers deletes; it returns only when the caller's context ends
type stallingStore struct {
	*MemoryStore
	deletes atomic.Int32
}

func (s *stallingStore) Delete(ctx context.Context, key string) (bool, error) {
	s.deletes.Add(1)
	<-ctx.Done()
	return false, ErrStoreDelete.Wrap(ctx.Err())
}

func (s *stallingStore) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	s.deletes.Add(1)
	<-ctx.Done()
	return 0, ErrStoreDelete.Wrap(ctx.Err())
}

func TestPolicy_PurgeTimeoutBoundsTheFanOut(t *testing.T) {
	m := NewMemoryStore(100, 0)
	t.Cleanup(func() { _ = m.Close() })
	store := &stallingStore{MemoryStore: m}
	log := logger.NewTestLogger("cache")
	cfg := DefaultConfig()
	cfg.PurgeTimeout = 30 * time.Millisecond
	policy := NewPolicy(NewService(store, cfg, log.CtxZapLogger), log.CtxZapLogger)

	start := time.Now()
	assert.Zero(t, policy.InvalidateUser(context.Background(), 5))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), store.deletes.Load(), "later targets are skipped once the deadline passed")
	assert.True(t, log.Has(zap.WarnLevel, "cache invalidation cut short"))
}

func TestPolicy_CallerCancellationDoesNotSkipPurge(t *testing.T) {
	svc, _, _ := newTestService(t)
	policy := NewPolicy(svc, nil)
	seed(t, svc, ProfileKey(5), PartnersKey(9))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy.InvalidateUser(ctx, 5)

	assert.False(t, svc.Exists(context.Background(), ProfileKey(5)))
	assert.False(t, svc.Exists(context.Background(), PartnersKey(9)))
}

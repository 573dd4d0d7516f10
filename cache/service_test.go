package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// brokenStore fails every call
type brokenStore struct{ calls int }

func (b *brokenStore) Name() string { return "broken" }
func (b *brokenStore) Get(context.Context, string) ([]byte, error) {
	b.calls++
	return nil, ErrStoreGet.Wrap(errors.New("connection refused"))
}
func (b *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	b.calls++
	return ErrStoreSet.Wrap(errors.New("connection refused"))
}
func (b *brokenStore) Delete(context.Context, string) (bool, error) {
	b.calls++
	return false, ErrStoreDelete.Wrap(errors.New("connection refused"))
}
func (b *brokenStore) DeleteMatching(context.Context, string) (int64, error) {
	b.calls++
	return 0, ErrStoreDelete.Wrap(errors.New("connection refused"))
}
func (b *brokenStore) Exists(context.Context, string) (bool, error) {
	return false, ErrStoreGet.Wrap(errors.New("connection refused"))
}
func (b *brokenStore) Ping(context.Context) error {
	return ErrStoreUnavailable.Wrap(errors.New("connection refused"))
}
func (b *brokenStore) Close() error { return nil }

type recorded struct {
	op, outcome string
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recorded
	invalid  map[string]int64
}

func (r *fakeRecorder) ObserveCacheRequest(op, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recorded{op, outcome})
}

func (r *fakeRecorder) ObserveInvalidation(kind string, deleted int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.invalid == nil {
		r.invalid = map[string]int64{}
	}
	r.invalid[kind] += deleted
}

func newTestService(t *testing.T, opts ...Option) (*Service, storeFixture, *logger.TestLogger) {
	t.Helper()
	f, _ := newRedisFixture(t)
	log := logger.NewTestLogger("cache")
	cfg := DefaultConfig()
	return NewService(f.store, cfg, log.CtxZapLogger, opts...), f, log
}

func TestService_SetGet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var got profile
	assert.False(t, svc.Get(ctx, "profile:1", &got))

	assert.True(t, svc.Set(ctx, "profile:1", profile{ID: 1, Username: "alice"}, time.Minute))
	require.True(t, svc.Get(ctx, "profile:1", &got))
	assert.Equal(t, profile{ID: 1, Username: "alice"}, got)
	assert.True(t, svc.Exists(ctx, "profile:1"))

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestService_DefaultTTL(t *testing.T) {
	svc, f, _ := newTestService(t)
	ctx := context.Background()

	svc.Set(ctx, "k", 1, 0)
	f.advance(svc.Config().DefaultTTL - time.Second)
	assert.True(t, svc.Exists(ctx, "k"))
	f.advance(2 * time.Second)
	assert.False(t, svc.Exists(ctx, "k"))
}

func TestService_WholeValueOverwrite(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.Set(ctx, "profile:1", profile{ID: 1, Username: "alice"}, time.Minute)
	svc.Set(ctx, "profile:1", profile{ID: 1, Username: "alicia"}, time.Minute)

	var got profile
	require.True(t, svc.Get(ctx, "profile:1", &got))
	assert.Equal(t, "alicia", got.Username)
}

func TestService_MsgpackFallback(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.True(t, svc.SetWith(ctx, "profile:2", profile{ID: 2, Username: "bob"}, time.Minute, EncodingMsgpack))

	raw, ok := svc.GetRaw(ctx, "profile:2")
	require.True(t, ok)
	assert.NotEqual(t, byte('{'), raw[0])

	var got profile
	require.True(t, svc.Get(ctx, "profile:2", &got))
	assert.Equal(t, profile{ID: 2, Username: "bob"}, got)
}

func TestService_UndecodableIsMiss(t *testing.T) {
	svc, f, log := newTestService(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, "profile:3", []byte{0xc1}, time.Minute))

	var got profile
	assert.False(t, svc.Get(ctx, "profile:3", &got))
	assert.True(t, log.Has(zap.WarnLevel, "cache value undecodable, treated as miss"))
}

func TestService_StoredNullIsMiss(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.Set(ctx, "profile:4", (*profile)(nil), time.Minute)

	var got *profile
	assert.False(t, svc.Get(ctx, "profile:4", &got))
}

func TestService_DeleteAndPattern(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.Set(ctx, "recent:1:10", []int{1}, time.Minute)
	svc.Set(ctx, "recent:1:20", []int{1}, time.Minute)
	svc.Set(ctx, "unread:1", 2, time.Minute)

	assert.True(t, svc.Delete(ctx, "unread:1"))
	assert.False(t, svc.Delete(ctx, "unread:1"))
	assert.Equal(t, int64(2), svc.DeleteMatching(ctx, "recent:1:*"))
	assert.Equal(t, int64(3), svc.Stats().Invalidated)
}

func TestService_StoreFailureDegrades(t *testing.T) {
	store := &brokenStore{}
	log := logger.NewTestLogger("cache")
	rec := &fakeRecorder{}
	svc := NewService(store, DefaultConfig(), log.CtxZapLogger, WithRecorder(rec))
	ctx := context.Background()

	var got profile
	assert.False(t, svc.Get(ctx, "profile:1", &got))
	assert.False(t, svc.Set(ctx, "profile:1", profile{ID: 1}, time.Minute))
	assert.False(t, svc.Delete(ctx, "profile:1"))
	assert.Zero(t, svc.DeleteMatching(ctx, "profile:*"))
	assert.False(t, svc.Exists(ctx, "profile:1"))
	assert.False(t, svc.IsAvailable(ctx))

	assert.True(t, log.Has(zap.WarnLevel, "cache get failed"))
	assert.True(t, log.Has(zap.WarnLevel, "cache set failed"))
	assert.True(t, log.HasField("cache get failed", "store", "broken"))
	assert.Equal(t, int64(5), svc.Stats().Errors)
	assert.Contains(t, rec.requests, recorded{"get", OutcomeError})
}

func TestService_Disabled(t *testing.T) {
	f, _ := newRedisFixture(t)
	cfg := DefaultConfig()
	cfg.Enabled = false
	svc := NewService(f.store, cfg, nil)
	ctx := context.Background()

	assert.False(t, svc.Set(ctx, "k", 1, time.Minute))
	assert.False(t, svc.Exists(ctx, "k"))
	assert.False(t, svc.IsAvailable(ctx))
	assert.Equal(t, "none", svc.StoreName())

	var nilSvc *Service
	var v int
	assert.False(t, nilSvc.Get(ctx, "k", &v))
	assert.Zero(t, nilSvc.DeleteMatching(ctx, "*"))
	assert.NoError(t, nilSvc.Shutdown())
}

func TestService_Recorder(t *testing.T) {
	rec := &fakeRecorder{}
	svc, _, _ := newTestService(t, WithRecorder(rec))
	ctx := context.Background()

	var v int
	svc.Get(ctx, "k", &v)
	svc.Set(ctx, "k", 1, time.Minute)
	svc.Get(ctx, "k", &v)

	assert.Equal(t, []recorded{
		{"get", OutcomeMiss},
		{"set", OutcomeOK},
		{"get", OutcomeHit},
	}, rec.requests)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, time.Hour, cfg.UserTTL)
	assert.Equal(t, 30*time.Minute, cfg.MessageTTL)
	assert.Equal(t, 15*time.Minute, cfg.ConversationTTL)
	assert.Equal(t, time.Minute, cfg.UnreadTTL)

	cfg.Store = "memcached"
	assert.ErrorIs(t, cfg.Validate(), ErrConfigInvalid)
}

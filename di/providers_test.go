package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-yogan-chat/auth"
	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/health"
	"github.com/KOMKZ/go-yogan-chat/jwt"
	"github.com/KOMKZ/go-yogan-chat/limiter"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/user"
	"github.com/alicebob/miniredis/v2"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults(t *testing.T) map[string]any {
	return map[string]any{
		"logger":   map[string]any{"enable_console": false, "enable_file": false},
		"database": map[string]any{"driver": "sqlite", "dsn": filepath.Join(t.TempDir(), "chat.db"), "auto_migrate": true},
		"jwt":      map[string]any{"secret": "test-secret"},
		"auth":     map[string]any{"bcrypt_cost": 4},
		"event":    map[string]any{"set_all_sync": true},
	}
}

func newInjector(t *testing.T, defaults map[string]any) *do.RootScope {
	t.Helper()
	injector := do.New()
	RegisterCoreProviders(injector, ConfigOptions{Defaults: defaults, Env: "test", EnvPrefix: "CHATDI"})
	t.Cleanup(func() { injector.Shutdown() })
	return injector
}

func TestProviders_MemoryStoreWithoutRedis(t *testing.T) {
	injector := newInjector(t, testDefaults(t))

	svc := do.MustInvoke[*cache.Service](injector)
	assert.Equal(t, "memory", svc.StoreName())

	agg := do.MustInvoke[*health.Aggregator](injector)
	resp := agg.Check(context.Background())
	assert.Contains(t, resp.Checks, "database")
	assert.NotContains(t, resp.Checks, "redis")
	assert.Equal(t, "memory", resp.Metadata["cache_store"])
}

func TestProviders_RedisBackedStores(t *testing.T) {
	mr := miniredis.RunT(t)
	defaults := testDefaults(t)
	defaults["redis"] = map[string]any{"enabled": true, "addr": mr.Addr()}
	injector := newInjector(t, defaults)

	require.NoError(t, StartCoreComponents(context.Background(), injector, logger.Nop()))

	svc := do.MustInvoke[*cache.Service](injector)
	assert.Equal(t, "redis", svc.StoreName())
	ctx := context.Background()
	require.True(t, svc.Set(ctx, "k", "v", 0))
	assert.True(t, mr.Exists("chat:cache:k"), "keys carry the configured prefix")

	tokens := do.MustInvoke[*jwt.TokenManager](injector)
	raw, err := tokens.Issue(ctx, 7)
	require.NoError(t, err)
	claims, err := tokens.Verify(ctx, raw)
	require.NoError(t, err)
	require.NoError(t, tokens.Revoke(ctx, claims))
	_, err = tokens.Verify(ctx, raw)
	assert.ErrorIs(t, err, jwt.ErrTokenRevoked)
	assert.NotEmpty(t, mr.Keys())

	resp := do.MustInvoke[*health.Aggregator](injector).Check(ctx)
	assert.True(t, resp.IsHealthy())
	assert.Contains(t, resp.Checks, "redis")
}

func TestProviders_RateLimiterStore(t *testing.T) {
	t.Run("memory without redis", func(t *testing.T) {
		injector := newInjector(t, testDefaults(t))
		l := do.MustInvoke[*limiter.Limiter](injector)
		assert.Equal(t, "memory", l.StoreName())
		assert.False(t, l.Enabled())
	})
	t.Run("redis shares buckets", func(t *testing.T) {
		mr := miniredis.RunT(t)
		defaults := testDefaults(t)
		defaults["redis"] = map[string]any{"enabled": true, "addr": mr.Addr()}
		defaults["limiter"] = map[string]any{"enabled": true}
		injector := newInjector(t, defaults)
		require.NoError(t, StartCoreComponents(context.Background(), injector, logger.Nop()))

		l := do.MustInvoke[*limiter.Limiter](injector)
		assert.Equal(t, "redis", l.StoreName())
		res, err := l.Allow(context.Background(), "POST /send", "ip:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.True(t, mr.Exists("chat:ratelimit:post /send:ip:10.0.0.1"))
	})
}

func TestProviders_EventBusDrivesInvalidation(t *testing.T) {
	injector := newInjector(t, testDefaults(t))
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, injector))

	svc := do.MustInvoke[*cache.Service](injector)
	users := do.MustInvoke[*user.Service](injector)
	require.True(t, svc.Set(ctx, cache.UserSearchKey("dave", 10), []int{}, 0))

	_, err := users.Register(ctx, "dave", "dave@example.com", "secret123")
	require.NoError(t, err)
	assert.False(t, svc.Exists(ctx, cache.UserSearchKey("dave", 10)), "user.created purges search results")

	bus := do.MustInvoke[*event.Bus](injector)
	assert.Positive(t, bus.ListenerCount(user.EventCreated))
}

func TestProviders_AuthenticatorUsesUserService(t *testing.T) {
	injector := newInjector(t, testDefaults(t))
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, injector))

	users := do.MustInvoke[*user.Service](injector)
	_, err := users.Register(ctx, "erin", "erin@example.com", "secret123")
	require.NoError(t, err)

	authenticator := do.MustInvoke[*auth.Authenticator](injector)
	acct, err := authenticator.Login(ctx, "erin", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "erin", acct.Username)

	_, err = authenticator.Login(ctx, "erin", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestProviders_ConfigErrors(t *testing.T) {
	t.Run("jwt secret required", func(t *testing.T) {
		defaults := testDefaults(t)
		delete(defaults, "jwt")
		injector := newInjector(t, defaults)
		_, err := do.Invoke[*jwt.TokenManager](injector)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "secret is empty")
	})
	t.Run("unknown database driver", func(t *testing.T) {
		defaults := testDefaults(t)
		defaults["database"] = map[string]any{"driver": "oracle", "dsn": "x"}
		injector := newInjector(t, defaults)
		_, err := do.Invoke[*database.Manager](injector)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported driver")
	})
	t.Run("unknown cache store", func(t *testing.T) {
		defaults := testDefaults(t)
		defaults["cache"] = map[string]any{"store": "etcd"}
		injector := newInjector(t, defaults)
		_, err := do.Invoke[*cache.Service](injector)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown cache store")
	})
}

func TestStartCoreComponents_MigratesWhenConfigured(t *testing.T) {
	injector := newInjector(t, testDefaults(t))
	require.NoError(t, StartCoreComponents(context.Background(), injector, logger.Nop()))

	db := do.MustInvoke[*database.Manager](injector).DB()
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("direct_messages"))
}

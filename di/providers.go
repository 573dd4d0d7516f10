package di

import (
	"github.com/KOMKZ/go-yogan-chat/api"
	"github.com/KOMKZ/go-yogan-chat/auth"
	"github.com/KOMKZ/go-yogan-chat/breaker"
	"github.com/KOMKZ/go-yogan-chat/cache"
	"github.com/KOMKZ/go-yogan-chat/config"
	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/event"
	"github.com/KOMKZ/go-yogan-chat/health"
	"github.com/KOMKZ/go-yogan-chat/jwt"
	"github.com/KOMKZ/go-yogan-chat/limiter"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/message"
	"github.com/KOMKZ/go-yogan-chat/redis"
	"github.com/KOMKZ/go-yogan-chat/telemetry"
	"github.com/KOMKZ/go-yogan-chat/user"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// ProvideConfigLoader builds the layered loader: defaults < config.yaml < {env}.yaml < env < flags
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return func(do.Injector) (*config.Loader, error) {
		if opts.EnvPrefix == "" {
			opts.EnvPrefix = DefaultEnvPrefix
		}
		return config.NewLoaderBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnv(opts.Env).
			WithEnvPrefix(opts.EnvPrefix).
			WithDefaults(opts.Defaults).
			WithFlags(opts.Flags, opts.FlagMapping).
			Build()
	}
}

func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	cfg, err := section(i, "logger", logger.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return logger.NewManager(cfg)
}

// moduleLogger falls back to a no-op logger so a broken logger section never blocks startup
func moduleLogger(i do.Injector, module string) *logger.CtxZapLogger {
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return logger.Nop()
	}
	return mgr.Logger(module)
}

func ProvideTelemetryConfig(i do.Injector) (telemetry.Config, error) {
	cfg, err := section(i, "telemetry", telemetry.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

func ProvideMetrics(i do.Injector) (*telemetry.Metrics, error) {
	cfg, err := do.Invoke[telemetry.Config](i)
	if err != nil {
		return nil, err
	}
	loader := do.MustInvoke[*config.Loader](i)
	info := telemetry.AppInfo{
		Name:    loader.GetString("app.name"),
		Version: loader.GetString("app.version"),
		Env:     do.MustInvoke[ConfigOptions](i).Env,
	}
	if info.Env == "" {
		info.Env = config.GetEnv()
	}
	return telemetry.NewMetrics(cfg.Metrics, info), nil
}

func ProvideTracing(i do.Injector) (*telemetry.Manager, error) {
	cfg, err := do.Invoke[telemetry.Config](i)
	if err != nil {
		return nil, err
	}
	return telemetry.NewManager(cfg.Tracing, moduleLogger(i, "telemetry")), nil
}

func ProvideDatabaseManager(i do.Injector) (*database.Manager, error) {
	cfg, err := section(i, "database", database.DefaultConfig())
	if err != nil {
		return nil, err
	}
	metrics, err := do.Invoke[*telemetry.Metrics](i)
	if err != nil {
		return nil, err
	}

	gormCfg := logger.DefaultGormLoggerConfig()
	gormCfg.SlowThreshold = cfg.SlowThreshold
	gormCfg.EnableAudit = cfg.EnableAudit
	if cfg.EnableAudit {
		gormCfg.LogLevel = gormlogger.Info
	}

	mgr, err := database.NewManager(cfg, logger.NewGormLogger(moduleLogger(i, "gorm"), gormCfg), moduleLogger(i, "database"))
	if err != nil {
		return nil, err
	}
	if err := mgr.Use(database.NewMetricsPlugin(metrics)); err != nil {
		_ = mgr.Shutdown()
		return nil, err
	}
	return mgr, nil
}

// ProvideRedisManager never dials; di.StartCoreComponents probes the connection
func ProvideRedisManager(i do.Injector) (*redis.Manager, error) {
	cfg, err := section(i, "redis", redis.Config{})
	if err != nil {
		return nil, err
	}
	metrics, err := do.Invoke[*telemetry.Metrics](i)
	if err != nil {
		return nil, err
	}
	mgr, err := redis.NewManager(cfg, moduleLogger(i, "redis"))
	if err != nil {
		return nil, err
	}
	mgr.AddHook(redis.NewMetricsHook(metrics))
	return mgr, nil
}

// ProvideCacheService picks the store. An unreachable Redis still gets the
// Redis store behind a circuit breaker: every failure degrades to a miss and recovers on its own.
func ProvideCacheService(i do.Injector) (*cache.Service, error) {
	cfg, err := section(i, "cache", cache.DefaultConfig())
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	redisMgr, err := do.Invoke[*redis.Manager](i)
	if err != nil {
		return nil, err
	}
	metrics, err := do.Invoke[*telemetry.Metrics](i)
	if err != nil {
		return nil, err
	}
	log := moduleLogger(i, "cache")

	var store cache.Store
	switch {
	case cfg.Store == "redis" && redisMgr.Enabled():
		store = cache.NewRedisStore(redisMgr.Client(), cfg.KeyPrefix)
		if cfg.Breaker.Enabled {
			store = cache.NewGuardedStore(store, cfg.Breaker, breaker.OnStateChange(
				func(resource string, from, to breaker.State) {
					metrics.ObserveBreakerState("cache_"+resource, int(to))
					log.Warn("cache circuit changed",
						zap.String("store", resource), zap.String("from", from.String()), zap.String("to", to.String()))
				}))
		}
	default:
		if cfg.Store == "redis" {
			log.Warn("redis disabled, falling back to the in-process cache store")
		}
		store = cache.NewMemoryStore(cfg.MemoryMaxEntries, cfg.MemoryCleanInterval)
	}

	log.Info("cache ready", zap.Bool("enabled", cfg.Enabled), zap.String("store", store.Name()))
	return cache.NewService(store, cfg, log, cache.WithRecorder(metrics.CacheRecorder(store.Name()))), nil
}

// ProvideEventBus wires the invalidation policy and the activity log onto the bus
func ProvideEventBus(i do.Injector) (*event.Bus, error) {
	cfg, err := section(i, "event", event.DefaultConfig())
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	cacheSvc, err := do.Invoke[*cache.Service](i)
	if err != nil {
		return nil, err
	}
	metrics, err := do.Invoke[*telemetry.Metrics](i)
	if err != nil {
		return nil, err
	}

	bus := event.NewDispatcher(
		event.WithPoolSize(cfg.PoolSize),
		event.WithSetAllSync(cfg.SetAllSync),
		event.WithLogger(moduleLogger(i, "event")),
	)
	bus.Use(event.RecoverInterceptor())

	cache.NewPolicy(cacheSvc, moduleLogger(i, "cache")).Subscribe(bus,
		user.EventCreated, user.EventUpdated, user.EventPresence,
		message.EventCreated, message.EventRead, message.EventDeleted,
	)
	telemetry.SubscribeActivity(bus, metrics, moduleLogger(i, "activity"))
	return bus, nil
}

func ProvideAuthConfig(i do.Injector) (auth.Config, error) {
	cfg, err := section(i, "auth", auth.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func ProvidePasswordService(i do.Injector) (*auth.PasswordService, error) {
	cfg, err := do.Invoke[auth.Config](i)
	if err != nil {
		return nil, err
	}
	return auth.NewPasswordService(cfg.Policy, cfg.BcryptCost), nil
}

// ProvideTokenManager keeps revoked token ids in Redis when it is configured
func ProvideTokenManager(i do.Injector) (*jwt.TokenManager, error) {
	cfg, err := section(i, "jwt", jwt.Config{Revocation: jwt.RevocationConfig{Enabled: true}})
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	redisMgr, err := do.Invoke[*redis.Manager](i)
	if err != nil {
		return nil, err
	}

	var store jwt.RevocationStore
	if cfg.Revocation.Enabled {
		if redisMgr.Enabled() {
			store = jwt.NewRedisRevocationStore(redisMgr.Client(), cfg.Revocation.KeyPrefix)
		} else {
			store = jwt.NewMemoryRevocationStore()
		}
	}
	return jwt.NewTokenManager(cfg, store, moduleLogger(i, "jwt"))
}

func ProvideUserService(i do.Injector) (*user.Service, error) {
	db, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	cacheSvc, err := do.Invoke[*cache.Service](i)
	if err != nil {
		return nil, err
	}
	bus, err := do.Invoke[*event.Bus](i)
	if err != nil {
		return nil, err
	}
	passwords, err := do.Invoke[*auth.PasswordService](i)
	if err != nil {
		return nil, err
	}
	return user.NewService(user.NewRepository(db.DB()), cacheSvc, bus, passwords, moduleLogger(i, "user")), nil
}

func ProvideMessageService(i do.Injector) (*message.Service, error) {
	db, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	cacheSvc, err := do.Invoke[*cache.Service](i)
	if err != nil {
		return nil, err
	}
	bus, err := do.Invoke[*event.Bus](i)
	if err != nil {
		return nil, err
	}
	users, err := do.Invoke[*user.Service](i)
	if err != nil {
		return nil, err
	}
	return message.NewService(message.NewRepository(db.DB()), cacheSvc, bus, users, moduleLogger(i, "message")), nil
}

func ProvideAuthenticator(i do.Injector) (*auth.Authenticator, error) {
	cfg, err := do.Invoke[auth.Config](i)
	if err != nil {
		return nil, err
	}
	passwords, err := do.Invoke[*auth.PasswordService](i)
	if err != nil {
		return nil, err
	}
	users, err := do.Invoke[*user.Service](i)
	if err != nil {
		return nil, err
	}
	redisMgr, err := do.Invoke[*redis.Manager](i)
	if err != nil {
		return nil, err
	}

	var attempts auth.LoginAttemptStore
	if redisMgr.Enabled() {
		attempts = auth.NewRedisLoginAttemptStore(redisMgr.Client(), cfg.LoginAttempt.KeyPrefix)
	} else {
		attempts = auth.NewMemoryLoginAttemptStore()
	}
	return auth.NewAuthenticator(passwords, users, attempts, cfg.LoginAttempt, moduleLogger(i, "auth")), nil
}

// ProvideRateLimiter shares buckets through Redis when it is enabled
func ProvideRateLimiter(i do.Injector) (*limiter.Limiter, error) {
	cfg, err := section(i, "limiter", limiter.DefaultConfig())
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	redisMgr, err := do.Invoke[*redis.Manager](i)
	if err != nil {
		return nil, err
	}
	log := moduleLogger(i, "limiter")

	var store limiter.Store
	if cfg.Store == "redis" && redisMgr.Enabled() {
		store = limiter.NewRedisStore(redisMgr.Client())
	} else {
		store = limiter.NewMemoryStore()
	}
	log.Debug("rate limiter ready", zap.Bool("enabled", cfg.Enabled), zap.String("store", store.Name()))
	return limiter.New(cfg, store, log), nil
}

// ProvideHealthAggregator: the database is critical, Redis only degrades unless health.redis_critical
func ProvideHealthAggregator(i do.Injector) (*health.Aggregator, error) {
	cfg, err := section(i, "health", health.DefaultConfig())
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	db, err := do.Invoke[*database.Manager](i)
	if err != nil {
		return nil, err
	}
	redisMgr, err := do.Invoke[*redis.Manager](i)
	if err != nil {
		return nil, err
	}
	cacheSvc, err := do.Invoke[*cache.Service](i)
	if err != nil {
		return nil, err
	}

	agg := health.NewAggregator(cfg.Timeout)
	agg.Register(database.NewHealthChecker(db))
	if redisMgr.Enabled() {
		agg.Register(health.WithCritical(redis.NewHealthChecker(redisMgr), cfg.RedisCritical))
	}
	agg.SetMetadata("cache_store", cacheSvc.StoreName())
	return agg, nil
}

func ProvideAPIHandler(i do.Injector) (*api.Handler, error) {
	users, err := do.Invoke[*user.Service](i)
	if err != nil {
		return nil, err
	}
	messages, err := do.Invoke[*message.Service](i)
	if err != nil {
		return nil, err
	}
	authenticator, err := do.Invoke[*auth.Authenticator](i)
	if err != nil {
		return nil, err
	}
	tokens, err := do.Invoke[*jwt.TokenManager](i)
	if err != nil {
		return nil, err
	}
	metrics, err := do.Invoke[*telemetry.Metrics](i)
	if err != nil {
		return nil, err
	}
	return api.NewHandler(users, messages, authenticator, tokens, metrics.OnlineUsers, moduleLogger(i, "api")), nil
}

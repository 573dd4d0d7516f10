package di

import (
	"github.com/samber/do/v2"
)

// RegisterCoreProviders registers every component lazily; nothing is built until invoked
func RegisterCoreProviders(injector do.Injector, opts ConfigOptions) {
	do.ProvideValue(injector, opts)
	do.Provide(injector, ProvideConfigLoader(opts))
	do.Provide(injector, ProvideLoggerManager)

	do.Provide(injector, ProvideTelemetryConfig)
	do.Provide(injector, ProvideMetrics)
	do.Provide(injector, ProvideTracing)

	do.Provide(injector, ProvideDatabaseManager)
	do.Provide(injector, ProvideRedisManager)
	do.Provide(injector, ProvideCacheService)
	do.Provide(injector, ProvideEventBus)

	do.Provide(injector, ProvideAuthConfig)
	do.Provide(injector, ProvidePasswordService)
	do.Provide(injector, ProvideTokenManager)

	do.Provide(injector, ProvideUserService)
	do.Provide(injector, ProvideMessageService)
	do.Provide(injector, ProvideAuthenticator)

	do.Provide(injector, ProvideRateLimiter)
	do.Provide(injector, ProvideHealthAggregator)
	do.Provide(injector, ProvideAPIHandler)
}

package application

import (
	"github.com/KOMKZ/go-yogan-chat/api"
	"github.com/KOMKZ/go-yogan-chat/health"
	"github.com/KOMKZ/go-yogan-chat/httpx"
	"github.com/KOMKZ/go-yogan-chat/limiter"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/middleware"
	"github.com/KOMKZ/go-yogan-chat/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// NewEngine assembles the middleware chain and mounts every route.
// Order: CORS, otelgin, TraceID, RequestLog, Metrics, ErrorLogging, Recovery, RateLimit.
func NewEngine(cfg AppConfig, i do.Injector) (*gin.Engine, error) {
	logMgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}
	telemetryCfg, err := do.Invoke[telemetry.Config](i)
	if err != nil {
		return nil, err
	}
	metrics, err := do.Invoke[*telemetry.Metrics](i)
	if err != nil {
		return nil, err
	}
	tracing, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		return nil, err
	}
	agg, err := do.Invoke[*health.Aggregator](i)
	if err != nil {
		return nil, err
	}
	handler, err := do.Invoke[*api.Handler](i)
	if err != nil {
		return nil, err
	}
	rateLimiter, err := do.Invoke[*limiter.Limiter](i)
	if err != nil {
		return nil, err
	}

	gin.DefaultWriter = logger.NewGinLogWriter(logMgr.Logger("gin"))
	gin.DefaultErrorWriter = logger.NewGinLogWriter(logMgr.Logger("gin"))
	gin.SetMode(cfg.HTTP.Mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	mw := cfg.HTTP.Middleware
	httpLog := logMgr.Logger("http")

	if mw.CORS.Enable {
		engine.Use(middleware.CORS(mw.CORS.CORSConfig))
	}

	// otelgin opens the span that TraceID then reads
	if tracing.Enabled() {
		engine.Use(otelgin.Middleware(telemetryCfg.Tracing.ServiceName))
		httpLog.Debug("otelgin middleware registered", zap.String("service_name", telemetryCfg.Tracing.ServiceName))
	}

	if mw.TraceID.Enable {
		traceCfg := middleware.DefaultTraceConfig()
		traceCfg.TraceIDKey = mw.TraceID.TraceIDKey
		traceCfg.TraceIDHeader = mw.TraceID.TraceIDHeader
		traceCfg.EnableResponseHeader = mw.TraceID.EnableResponseHeader
		engine.Use(middleware.TraceID(traceCfg))
	}

	if mw.RequestLog.Enable {
		engine.Use(middleware.RequestLog(middleware.RequestLogConfig{SkipPaths: mw.RequestLog.SkipPaths}, httpLog))
	}

	if mw.Metrics.Enable {
		engine.Use(middleware.Metrics(metrics, mw.Metrics.SkipPaths...))
	}

	if cfg.Httpx.Enable {
		engine.Use(httpx.ErrorLoggingMiddleware(cfg.Httpx, logMgr.Logger("http-error")))
	}

	engine.Use(middleware.Recovery(logMgr.Logger("recovery")))

	if mw.RateLimit.Enable {
		engine.Use(middleware.RateLimit(rateLimiter, middleware.RateLimitConfig{SkipPaths: mw.RateLimit.SkipPaths}, httpLog))
	}

	engine.NoRoute(httpx.NoRouteHandler())
	engine.NoMethod(httpx.NoMethodHandler())

	middleware.RegisterHealthRoutes(engine, agg)
	if telemetryCfg.Metrics.Enabled {
		engine.GET(telemetryCfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}
	handler.Register(engine)

	return engine, nil
}

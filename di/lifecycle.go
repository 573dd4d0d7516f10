package di

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-chat/api"
	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/KOMKZ/go-yogan-chat/message"
	"github.com/KOMKZ/go-yogan-chat/redis"
	"github.com/KOMKZ/go-yogan-chat/retry"
	"github.com/KOMKZ/go-yogan-chat/telemetry"
	"github.com/KOMKZ/go-yogan-chat/user"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// Models lists every table the chat service owns
func Models() []any {
	return []any{&user.User{}, &message.DirectMessage{}}
}

// Migrate creates or updates the schema
func Migrate(ctx context.Context, injector do.Injector) error {
	db, err := do.Invoke[*database.Manager](injector)
	if err != nil {
		return err
	}
	return db.Migrate(ctx, Models()...)
}

// StartCoreComponents starts tracing, waits for the database, probes Redis, migrates when configured and
// builds the whole graph so a bad section fails here rather than on the first request.
// A Redis outage is logged and tolerated.
func StartCoreComponents(ctx context.Context, injector do.Injector, log *logger.CtxZapLogger) error {
	tracing, err := do.Invoke[*telemetry.Manager](injector)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := tracing.Start(ctx); err != nil {
		return fmt.Errorf("start tracing: %w", err)
	}

	db, err := do.Invoke[*database.Manager](injector)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	dbCfg := db.Config()
	err = retry.Do(ctx, db.Ping,
		retry.MaxAttempts(dbCfg.ConnectAttempts),
		retry.Backoff(retry.ExponentialBackoff(dbCfg.ConnectBackoff, retry.WithMaxDelay(10*time.Second))),
		retry.OnRetry(func(attempt int, err error) {
			log.WarnCtx(ctx, "database not reachable, retrying",
				zap.Int("attempt", attempt), zap.Int("max_attempts", dbCfg.ConnectAttempts), zap.Error(err))
		}))
	if err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if dbCfg.AutoMigrate {
		if err := db.Migrate(ctx, Models()...); err != nil {
			return err
		}
	}

	redisMgr, err := do.Invoke[*redis.Manager](injector)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	connected := redisMgr.Connect(ctx)

	if _, err := do.Invoke[*api.Handler](injector); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	log.InfoCtx(ctx, "core components ready",
		zap.String("driver", db.Config().Driver),
		zap.Bool("redis_connected", connected),
		zap.Bool("tracing", tracing.Enabled()))
	return nil
}

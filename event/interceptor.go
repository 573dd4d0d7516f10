package event

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
)

// Next continues with the next interceptor or the listeners
type Next func(ctx context.Context, event Event) error

// Interceptor wraps every dispatch
type Interceptor func(ctx context.Context, event Event, next Next) error

// LoggingInterceptor logs each dispatch at debug and failures at error
func LoggingInterceptor(log *logger.CtxZapLogger) Interceptor {
	return func(ctx context.Context, event Event, next Next) error {
		start := time.Now()
		err := next(ctx, event)
		if err != nil {
			log.ErrorCtx(ctx, "event handling failed",
				zap.String("event", event.Name()), zap.Duration("duration", time.Since(start)), zap.Error(err))
			return err
		}
		log.DebugCtx(ctx, "event dispatched",
			zap.String("event", event.Name()), zap.Duration("duration", time.Since(start)))
		return nil
	}
}

// RecoverInterceptor turns a listener panic into an error
func RecoverInterceptor() Interceptor {
	return func(ctx context.Context, event Event, next Next) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("event %s: listener panic: %v", event.Name(), r)
			}
		}()
		return next(ctx, event)
	}
}

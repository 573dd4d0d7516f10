package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// CommandObserver receives one observation per executed command
type CommandObserver interface {
	ObserveRedisCommand(cmd string, elapsed time.Duration, err error)
}

// MetricsHook implements redis.Hook; redis.Nil is reported as success
type MetricsHook struct {
	observer CommandObserver
}

func NewMetricsHook(observer CommandObserver) *MetricsHook {
	return &MetricsHook{observer: observer}
}

func (h *MetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *MetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observer.ObserveRedisCommand(cmd.Name(), time.Since(start), commandErr(err))
		return err
	}
}

func (h *MetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		if len(cmds) == 0 {
			return err
		}
		per := time.Since(start) / time.Duration(len(cmds))
		for _, cmd := range cmds {
			h.observer.ObserveRedisCommand(cmd.Name(), per, commandErr(cmd.Err()))
		}
		return err
	}
}

func commandErr(err error) error {
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Package retry re-runs an operation with backoff until it succeeds, the
// attempts run out, or the context ends.
package retry

import (
	"context"
	"errors"
	"time"
)

// Do runs operation until it returns nil.
// The returned error is a *MultiError unless ctx ended first.
func Do(ctx context.Context, operation func(ctx context.Context) error, opts ...Option) error {
	_, err := DoWithData(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, operation(ctx)
	}, opts...)
	return err
}

// DoWithData is Do for operations that produce a value
func DoWithData[T any](ctx context.Context, operation func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		result T
		errs   []error
	)
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var err error
		if cfg.timeout > 0 {
			opCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
			result, err = operation(opCtx)
			cancel()
		} else {
			result, err = operation(ctx)
		}
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if attempt == cfg.maxAttempts || !cfg.condition(err) {
			return result, &MultiError{Errors: errs, Attempts: attempt}
		}

		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		wait := cfg.backoff.Next(attempt)
		// no point sleeping past the deadline
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			return result, &MultiError{Errors: append(errs, context.DeadlineExceeded), Attempts: attempt}
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		}
	}
	return result, &MultiError{Errors: errs, Attempts: cfg.maxAttempts}
}

// Attempts reports how many times the operation ran before err was returned
func Attempts(err error) int {
	var multiErr *MultiError
	if errors.As(err, &multiErr) {
		return multiErr.Attempts
	}
	return 0
}

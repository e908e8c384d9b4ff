package lazypool

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Factory produces a new pooled object. Each invocation is independent;
// the pool never holds its internal lock while a factory runs, so a
// factory may block for as long as it needs. Construction failures
// surface to the acquiring caller and are not retried by the pool.
type Factory[T any] func(ctx context.Context) (T, error)

// SyncFactory adapts a plain constructor into a Factory for objects that
// are cheap to build and cannot fail.
func SyncFactory[T any](fn func() T) Factory[T] {
	return func(context.Context) (T, error) {
		return fn(), nil
	}
}

// RetryFactory wraps a factory with exponential backoff for callers that
// want transient construction failures retried before they reach the
// pool. The sleep between attempts starts at initialInterval and grows up
// to maxInterval. maxTries bounds the total number of attempts;
// non-positive means unlimited, in which case only context cancellation
// stops the retries.
func RetryFactory[T any](fn Factory[T], initialInterval, maxInterval time.Duration, maxTries int) Factory[T] {
	return func(ctx context.Context) (T, error) {
		backoffCfg := backoff.NewExponentialBackOff()
		backoffCfg.InitialInterval = initialInterval
		backoffCfg.MaxInterval = maxInterval

		var zero T
		tries := 0
		for {
			obj, err := fn(ctx)
			if err == nil {
				return obj, nil
			}
			tries++
			if maxTries > 0 && tries >= maxTries {
				return zero, err
			}
			sleep := backoffCfg.NextBackOff()
			if sleep == backoff.Stop {
				return zero, err
			}
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}
}
